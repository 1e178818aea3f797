package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/kbukum/cognitokit/auth/cognito"
	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/encryption"
	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/keyringstore"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/observability"
	"github.com/kbukum/cognitokit/provider"
	"github.com/kbukum/cognitokit/redis"
	"github.com/kbukum/cognitokit/server"
	"github.com/kbukum/cognitokit/sse"
	"github.com/kbukum/cognitokit/storage"
	_ "github.com/kbukum/cognitokit/storage/local"
	_ "github.com/kbukum/cognitokit/storage/s3"
)

// Module builds one infrastructure component. Build returns a nil component
// when the module is disabled by configuration.
type Module struct {
	Name  string
	Build func(d *Deps) (component.Component, error)
}

// Modules is the fixed list of infrastructure modules, in start order.
// Later modules read what earlier ones left in Deps.
var Modules = []Module{
	{Name: "redis", Build: buildRedis},
	{Name: "events", Build: buildEvents},
	{Name: "cognito", Build: buildCognito},
	{Name: "storage", Build: buildStorage},
	{Name: "http-server", Build: buildServer},
}

// Deps is the input of module construction and collects the components the
// modules built.
type Deps struct {
	Cfg      *Config
	Log      *logger.Logger
	Metrics  *observability.Metrics
	Registry *component.Registry

	// UserAPI, IdentityAPI and Tokens replace the configured Cognito
	// clients and token store when set.
	UserAPI     userpool.API
	IdentityAPI cognito.IdentityAPI
	Tokens      provider.ContextStore[userpool.Record]

	Redis   *redis.Component
	Events  *sse.Component
	Cognito *cognito.Component
	Storage *storage.Component
	Server  *server.Component
}

// Register builds every module in order and registers the enabled ones.
func Register(reg *component.Registry, d *Deps) error {
	d.Registry = reg
	if d.Log == nil {
		d.Log = logger.GetGlobalLogger()
	}
	for _, m := range Modules {
		c, err := m.Build(d)
		if err != nil {
			return fmt.Errorf("module %s: %w", m.Name, err)
		}
		if c == nil {
			d.Log.Debug("Module disabled", logger.Fields(logger.FieldComponent, m.Name))
			continue
		}
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("module %s: %w", m.Name, err)
		}
	}
	return nil
}

func buildRedis(d *Deps) (component.Component, error) {
	if !d.Cfg.Redis.Enabled {
		return nil, nil
	}
	c, err := redis.NewComponent(d.Cfg.Redis, d.Log)
	if err != nil {
		return nil, err
	}
	d.Redis = c
	return c, nil
}

// eventsPath is where the server mounts the event stream.
const eventsPath = "/v1/events"

func buildEvents(d *Deps) (component.Component, error) {
	if !d.Cfg.Server.Enabled || !d.Cfg.Server.Events {
		return nil, nil
	}
	d.Events = sse.NewComponent(eventsPath, d.Log)
	return d.Events, nil
}

func buildCognito(d *Deps) (component.Component, error) {
	tokens, err := d.tokenStore()
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}
	opts := []cognito.ComponentOption{cognito.WithComponentMetrics(d.Metrics)}
	if d.UserAPI != nil || d.IdentityAPI != nil {
		opts = append(opts, cognito.WithAPIs(d.UserAPI, d.IdentityAPI))
	}
	if d.Events != nil {
		opts = append(opts, cognito.WithComponentPublisher(d.Events.Hub()))
	}
	d.Cognito = cognito.NewComponent(&d.Cfg.Cognito, tokens, d.Log, opts...)
	return d.Cognito, nil
}

func buildStorage(d *Deps) (component.Component, error) {
	if !d.Cfg.Storage.Enabled {
		return nil, nil
	}
	d.Storage = storage.NewComponent(d.Cfg.Storage, adapterIdentity{d.Cognito}, d.Log)
	return d.Storage, nil
}

func buildServer(d *Deps) (component.Component, error) {
	if !d.Cfg.Server.Enabled {
		return nil, nil
	}
	srv := server.New(&d.Cfg.Server, d.Log)
	srv.ApplyMiddleware(d.Metrics)
	srv.RegisterDefaultEndpoints(d.Cfg.Name, d.Registry.HealthAll)
	srv.RegisterAPI(adapterSource(d.Cognito))
	if d.Events != nil {
		srv.RegisterEvents(d.Events.Hub())
	}
	d.Server = server.NewComponent(srv)
	return d.Server, nil
}

// tokenStore returns the user pool session store selected by TokenStore,
// sealed when encryption is enabled.
func (d *Deps) tokenStore() (provider.ContextStore[userpool.Record], error) {
	if d.Tokens != nil {
		return d.Tokens, nil
	}

	var sealer provider.Sealer
	s, err := encryption.New(d.Cfg.Encryption, encryption.WithAssociatedData(d.Cfg.Cognito.ClientID))
	if err != nil {
		return nil, fmt.Errorf("encryption: %w", err)
	}
	if s != nil {
		sealer = s
	}

	switch d.Cfg.TokenStore {
	case TokenStoreMemory:
		return provider.NewMemoryStore[userpool.Record](), nil
	case TokenStoreRedis:
		if d.Redis == nil {
			return nil, fmt.Errorf("redis token store requires the redis module")
		}
		return redis.NewTypedStore[userpool.Record](d.Redis.Client(), d.Cfg.Redis.KeyPrefix, sealer), nil
	default:
		ring, err := keyringstore.Open(d.Cfg.Keyring)
		if err != nil {
			return nil, err
		}
		return keyringstore.New[userpool.Record](ring, sealer), nil
	}
}

// adapterSource hands the server the adapter once the cognito component has
// started.
func adapterSource(c *cognito.Component) server.AdapterSource {
	return func() server.Adapter {
		if a := c.Adapter(); a != nil {
			return a
		}
		return nil
	}
}

var errAdapterNotStarted = apperrors.ServiceUnavailable("credential adapter")

// adapterIdentity resolves the adapter on every call, since it only exists
// after the cognito component started.
type adapterIdentity struct {
	c *cognito.Component
}

var _ storage.IdentitySource = adapterIdentity{}

func (a adapterIdentity) Credentials(ctx context.Context) (aws.Credentials, error) {
	adapter := a.c.Adapter()
	if adapter == nil {
		return aws.Credentials{}, errAdapterNotStarted
	}
	return adapter.Credentials(ctx)
}

func (a adapterIdentity) CognitoIdentity() (string, error) {
	adapter := a.c.Adapter()
	if adapter == nil {
		return "", errAdapterNotStarted
	}
	return adapter.CognitoIdentity()
}
