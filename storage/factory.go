package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/kbukum/cognitokit/logger"
)

// Factory creates a backend. creds signs requests for backends that need
// AWS credentials; others ignore it.
type Factory func(ctx context.Context, cfg *Config, creds aws.CredentialsProvider, log *logger.Logger) (Storage, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a backend for a provider name. Backend packages
// call it from init, so import them for their side effect:
//
//	import _ "github.com/kbukum/cognitokit/storage/s3"
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// New creates the backend selected by cfg.Provider.
func New(ctx context.Context, cfg *Config, creds aws.CredentialsProvider, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unsupported provider %q (not registered)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Info("initializing storage", logger.Fields("provider", cfg.Provider))
	return f(ctx, cfg, creds, l)
}
