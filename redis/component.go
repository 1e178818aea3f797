package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/logger"
)

// Component wraps Client for the component registry.
type Component struct {
	client *Client
	cfg    Config
	log    *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent builds the client eagerly so stores can be wired before Start.
func NewComponent(cfg Config, log *logger.Logger) (*Component, error) {
	log = log.WithComponent("redis")
	client, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Component{client: client, cfg: client.cfg, log: log}, nil
}

// Client returns the underlying client.
func (c *Component) Client() *Client {
	return c.client
}

// Name returns the component name.
func (c *Component) Name() string { return "redis" }

// Start verifies connectivity.
func (c *Component) Start(ctx context.Context) error {
	if err := c.client.Ping(ctx); err != nil {
		return fmt.Errorf("redis start: %w", err)
	}
	c.log.Info("Redis token store ready", logger.Fields("addr", c.cfg.Addr))
	return nil
}

// Stop closes the connection.
func (c *Component) Stop(_ context.Context) error {
	return c.client.Close()
}

// Health pings Redis.
func (c *Component) Health(ctx context.Context) component.Health {
	if err := c.client.Ping(ctx); err != nil {
		return component.Health{
			Name:    c.Name(),
			Status:  component.StatusUnhealthy,
			Message: err.Error(),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis token store",
		Type:    "token-store",
		Details: fmt.Sprintf("%s db=%d prefix=%s", c.cfg.Addr, c.cfg.DB, c.cfg.KeyPrefix),
	}
}
