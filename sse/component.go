package sse

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/logger"
)

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component runs a Hub for the lifetime of the application.
type Component struct {
	hub     *Hub
	path    string
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewComponent creates a component whose hub is served at path.
func NewComponent(path string, log *logger.Logger) *Component {
	return &Component{hub: NewHub(log), path: path}
}

// Hub returns the hub for publishing and serving.
func (c *Component) Hub() *Hub { return c.hub }

// Name returns the component name.
func (c *Component) Name() string { return "events" }

// Start runs the hub on a goroutine.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("events: already started")
	}
	c.running = true
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.hub.Run()
	}()
	return nil
}

// Stop closes every stream and waits for the hub to exit.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hub.Stop()
	c.wg.Wait()
	c.running = false
	return nil
}

// Health reports the number of subscribers.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()
	if !running {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{
		Name:    c.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d subscribers", c.hub.ClientCount()),
	}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Event stream",
		Type:    "sse",
		Details: c.path,
	}
}
