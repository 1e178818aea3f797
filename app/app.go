package app

import (
	"context"
	"fmt"

	"github.com/kbukum/cognitokit/auth/cognito"
	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/bootstrap"
	"github.com/kbukum/cognitokit/observability"
	"github.com/kbukum/cognitokit/provider"
	"github.com/kbukum/cognitokit/redis"
	"github.com/kbukum/cognitokit/server"
	"github.com/kbukum/cognitokit/sse"
	"github.com/kbukum/cognitokit/state"
	"github.com/kbukum/cognitokit/storage"
)

// Kit is a wired cognitokit application: the lifecycle of bootstrap.App plus
// direct handles on the components built from Modules. Disabled modules
// leave their field nil.
type Kit struct {
	*bootstrap.App[*Config]

	Cognito *cognito.Component
	Redis   *redis.Component
	Storage *storage.Component
	Server  *server.Component
	Events  *sse.Component
	Metrics *observability.Metrics
	State   *state.Store[*state.State]
}

// Option configures New.
type Option func(*options)

type options struct {
	bootstrap   []bootstrap.Option
	userAPI     userpool.API
	identityAPI cognito.IdentityAPI
	tokens      provider.ContextStore[userpool.Record]
}

// WithBootstrapOptions passes options through to bootstrap.NewApp.
func WithBootstrapOptions(opts ...bootstrap.Option) Option {
	return func(o *options) { o.bootstrap = append(o.bootstrap, opts...) }
}

// WithCognitoAPIs replaces the AWS user pool and identity pool clients.
func WithCognitoAPIs(users userpool.API, identity cognito.IdentityAPI) Option {
	return func(o *options) {
		o.userAPI = users
		o.identityAPI = identity
	}
}

// WithTokenStore replaces the token store selected by configuration.
func WithTokenStore(s provider.ContextStore[userpool.Record]) Option {
	return func(o *options) { o.tokens = s }
}

// New validates cfg, builds every module and registers it. Nothing is
// started until Run or RunTask.
func New(cfg *Config, opts ...Option) (*Kit, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a, err := bootstrap.NewApp(cfg, o.bootstrap...)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.DefaultMetrics()
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	d := &Deps{
		Cfg:         a.Cfg,
		Log:         a.Logger,
		Metrics:     metrics,
		UserAPI:     o.userAPI,
		IdentityAPI: o.identityAPI,
		Tokens:      o.tokens,
	}
	if err := Register(a.Components, d); err != nil {
		return nil, err
	}

	k := &Kit{
		App:     a,
		Cognito: d.Cognito,
		Redis:   d.Redis,
		Storage: d.Storage,
		Server:  d.Server,
		Events:  d.Events,
		Metrics: metrics,
		State:   NewStore(cfg.Environment),
	}
	a.OnStart(k.startTelemetry)
	return k, nil
}

// Adapter returns the credential adapter, or nil before the kit started.
func (k *Kit) Adapter() *cognito.Adapter {
	return k.Cognito.Adapter()
}

// Pool returns the user pool, or nil before the kit started.
func (k *Kit) Pool() *userpool.Pool {
	return k.Cognito.Pool()
}

func (k *Kit) startTelemetry(ctx context.Context) error {
	shutdown, err := observability.Setup(ctx, k.Cfg.Observability, k.Name, k.Version, k.Cfg.Environment)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	k.OnStop(shutdown)
	return nil
}
