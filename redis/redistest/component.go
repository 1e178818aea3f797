// Package redistest provides a miniredis-backed Redis for tests.
//
//	mini := redistest.NewComponent()
//	testutil.T(t).Setup(mini)
//	comp, _ := redis.NewComponent(mini.Config(), logger.NewNop())
package redistest

import (
	"context"
	"fmt"
	"sync"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/redis"
	"github.com/kbukum/cognitokit/testutil"
)

// Component runs an in-memory Redis server.
type Component struct {
	mini    *miniredis.Miniredis
	started bool
	mu      sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// NewComponent creates a stopped in-memory Redis.
func NewComponent() *Component {
	return &Component{}
}

// Name returns the component name.
func (c *Component) Name() string { return "redis-test" }

// Config returns a redis.Config pointing at the running server.
func (c *Component) Config() redis.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg := redis.Config{Enabled: true, KeyPrefix: "test"}
	if c.mini != nil {
		cfg.Addr = c.mini.Addr()
	}
	return cfg
}

// Server exposes miniredis for assertions and fast-forwarding TTLs.
func (c *Component) Server() *miniredis.Miniredis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mini
}

// Start launches the server.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}
	mini, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start miniredis: %w", err)
	}
	c.mini = mini
	c.started = true
	return nil
}

// Stop shuts the server down.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	c.mini.Close()
	c.started = false
	return nil
}

// Health reports whether the server is running.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset flushes all keys.
func (c *Component) Reset(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.mini.FlushAll()
	return nil
}

// Snapshot returns key -> value for all string keys.
func (c *Component) Snapshot(_ context.Context) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return nil, fmt.Errorf("component not started")
	}
	snap := make(map[string]string)
	for _, key := range c.mini.Keys() {
		if val, err := c.mini.Get(key); err == nil {
			snap[key] = val
		}
	}
	return snap, nil
}

// Restore replaces the server contents with snap.
func (c *Component) Restore(_ context.Context, snap any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("component not started")
	}
	values, ok := snap.(map[string]string)
	if !ok {
		return fmt.Errorf("invalid snapshot type %T", snap)
	}
	c.mini.FlushAll()
	for key, val := range values {
		if err := c.mini.Set(key, val); err != nil {
			return fmt.Errorf("restore key %q: %w", key, err)
		}
	}
	return nil
}
