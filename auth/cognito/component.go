package cognito

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/observability"
	"github.com/kbukum/cognitokit/provider"
)

// Component wires the user pool, the identity pool client and the Adapter
// into the component registry. The AWS clients are created on Start unless
// supplied with WithAPIs.
type Component struct {
	cfg     *Config
	store   provider.ContextStore[userpool.Record]
	log     *logger.Logger
	metrics *observability.Metrics
	events  Publisher

	userAPI     userpool.API
	identityAPI IdentityAPI

	mu      sync.RWMutex
	pool    *userpool.Pool
	adapter *Adapter
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// ComponentOption configures a Component.
type ComponentOption func(*Component)

// WithAPIs supplies the Cognito clients instead of building them from config.
func WithAPIs(users userpool.API, identity IdentityAPI) ComponentOption {
	return func(c *Component) {
		c.userAPI = users
		c.identityAPI = identity
	}
}

// WithComponentMetrics records metrics for every Cognito call.
func WithComponentMetrics(m *observability.Metrics) ComponentOption {
	return func(c *Component) { c.metrics = m }
}

// WithComponentPublisher sends adapter events to p.
func WithComponentPublisher(p Publisher) ComponentOption {
	return func(c *Component) { c.events = p }
}

// NewComponent creates the component. store holds the user pool tokens.
func NewComponent(cfg *Config, store provider.ContextStore[userpool.Record], log *logger.Logger, opts ...ComponentOption) *Component {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	c := &Component{cfg: cfg, store: store, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the component name.
func (c *Component) Name() string { return "cognito" }

// Start builds the Cognito clients, the user pool and the adapter.
func (c *Component) Start(ctx context.Context) error {
	userAPI, identityAPI := c.userAPI, c.identityAPI
	if userAPI == nil {
		api, err := userpool.NewAPI(ctx, c.cfg.UserPool())
		if err != nil {
			return fmt.Errorf("cognito start: user pool client: %w", err)
		}
		userAPI = api
	}
	if identityAPI == nil {
		api, err := NewIdentityAPI(ctx, c.cfg)
		if err != nil {
			return fmt.Errorf("cognito start: identity pool client: %w", err)
		}
		identityAPI = api
	}

	pool := userpool.NewPool(c.cfg.UserPool(), userAPI, c.store, c.log, userpool.WithMetrics(c.metrics))
	adapter := NewAdapter(c.cfg, pool, identityAPI, c.log, WithMetrics(c.metrics), WithPublisher(c.events))

	c.mu.Lock()
	c.pool = pool
	c.adapter = adapter
	c.mu.Unlock()

	c.log.WithComponent("cognito").Info("Cognito adapter ready", logger.Fields(
		logger.FieldUserPoolID, c.cfg.UserPoolID,
		"identity_pool_id", c.cfg.IdentityPoolID,
	))
	return nil
}

// Stop waits for in-flight token callbacks, bounded by ctx.
func (c *Component) Stop(ctx context.Context) error {
	adapter := c.Adapter()
	if adapter == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		adapter.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cognito stop: %w", ctx.Err())
	}
}

// Health reports whether the adapter is running and holds credentials.
func (c *Component) Health(_ context.Context) component.Health {
	adapter := c.Adapter()
	if adapter == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	if adapter.CognitoCreds() == nil {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "no credentials built"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "credentials built"}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Cognito adapter",
		Type:    "adapter",
		Details: fmt.Sprintf("%s pool=%s identity=%s", c.cfg.Region, c.cfg.UserPoolID, c.cfg.IdentityPoolID),
	}
}

// Adapter returns the adapter, or nil before Start.
func (c *Component) Adapter() *Adapter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adapter
}

// Pool returns the user pool, or nil before Start.
func (c *Component) Pool() *userpool.Pool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool
}
