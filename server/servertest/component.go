package servertest

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/server"
	"github.com/kbukum/cognitokit/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Component is a test server component backed by httptest.Server.
type Component struct {
	srv     *server.Server
	ts      *httptest.Server
	started bool
	mu      sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// NewComponent creates a test server with the standard middleware applied.
// opts adjust the configuration before defaults are filled in.
func NewComponent(opts ...func(*server.Config)) *Component {
	cfg := &server.Config{Enabled: true}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.ApplyDefaults()

	srv := server.New(cfg, logger.NewNop())
	srv.ApplyMiddleware(nil)
	return &Component{srv: srv}
}

// Server returns the underlying server for route registration.
func (c *Component) Server() *server.Server {
	return c.srv
}

// BaseURL returns the test server's base URL, or "" before Start.
func (c *Component) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ts == nil {
		return ""
	}
	return c.ts.URL
}

// Name returns the component name.
func (c *Component) Name() string { return "server-test" }

// Start serves the server's handler on a random local port.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("component already started")
	}
	c.ts = httptest.NewServer(c.srv.Handler())
	c.started = true
	return nil
}

// Stop closes the test server.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	c.ts.Close()
	c.ts = nil
	c.started = false
	return nil
}

// Health reports whether the test server is running.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset restarts the listener. Routes are kept.
func (c *Component) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return fmt.Errorf("component not started")
	}
	c.ts.Close()
	c.ts = httptest.NewServer(c.srv.Handler())
	return nil
}

// Snapshot is a no-op; the server holds no state of its own.
func (c *Component) Snapshot(_ context.Context) (any, error) {
	return nil, nil
}

// Restore is a no-op.
func (c *Component) Restore(_ context.Context, _ any) error {
	return nil
}
