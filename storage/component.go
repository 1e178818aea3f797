package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/logger"
)

// IdentitySource supplies the signed-in identity and its AWS credentials.
// *cognito.Adapter implements it.
type IdentitySource interface {
	Credentials(ctx context.Context) (aws.Credentials, error)
	CognitoIdentity() (string, error)
}

// Component wraps a Storage backend for the component registry and hands
// out per-identity views of it.
type Component struct {
	cfg    Config
	source IdentitySource
	log    *logger.Logger

	mu      sync.RWMutex
	backend Storage
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a storage component. source signs backend requests
// and names the folder of ForIdentity.
func NewComponent(cfg Config, source IdentitySource, log *logger.Logger) *Component {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	cfg.ApplyDefaults()
	return &Component{
		cfg:    cfg,
		source: source,
		log:    log.WithComponent("storage"),
	}
}

// Storage returns the unscoped backend, or nil if not started.
func (c *Component) Storage() Storage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.backend
}

// ForIdentity returns the signed-in identity's folder. Credentials are
// retrieved first so the identity id is resolved.
func (c *Component) ForIdentity(ctx context.Context) (*Scoped, error) {
	backend := c.Storage()
	if backend == nil {
		return nil, fmt.Errorf("storage: component not started")
	}
	if c.source == nil {
		return nil, fmt.Errorf("storage: no identity source")
	}
	if _, err := c.source.Credentials(ctx); err != nil {
		return nil, fmt.Errorf("storage: identity credentials: %w", err)
	}
	id, err := c.source.CognitoIdentity()
	if err != nil {
		return nil, fmt.Errorf("storage: identity: %w", err)
	}
	return Scope(backend, c.cfg.Prefix, id)
}

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start creates the backend.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("storage component is disabled")
		return nil
	}

	var creds aws.CredentialsProvider
	if c.source != nil {
		creds = aws.CredentialsProviderFunc(c.source.Credentials)
	}
	s, err := New(ctx, &c.cfg, creds, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}

	c.mu.Lock()
	c.backend = s
	c.mu.Unlock()
	return nil
}

// Stop releases the backend.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	c.backend = nil
	c.mu.Unlock()
	return nil
}

// Health reports whether the backend is available.
func (c *Component) Health(_ context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	if c.Storage() == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns the startup summary line.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s prefix=%s", c.cfg.Provider, c.cfg.Prefix)
	switch c.cfg.Provider {
	case ProviderS3:
		details += " bucket=" + c.cfg.Bucket
	case ProviderLocal:
		details += " path=" + c.cfg.BasePath
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}
