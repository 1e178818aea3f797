package app

import (
	"fmt"

	"github.com/kbukum/cognitokit/auth/cognito"
	"github.com/kbukum/cognitokit/config"
	"github.com/kbukum/cognitokit/encryption"
	"github.com/kbukum/cognitokit/keyringstore"
	"github.com/kbukum/cognitokit/observability"
	"github.com/kbukum/cognitokit/redis"
	"github.com/kbukum/cognitokit/server"
	"github.com/kbukum/cognitokit/storage"
)

// Token store backends accepted by Config.TokenStore.
const (
	TokenStoreMemory  = "memory"
	TokenStoreKeyring = "keyring"
	TokenStoreRedis   = "redis"
)

// Config is the full configuration of a cognitokit binary.
//
//	name: cognitoctl
//	cognito:
//	  user_pool_id: eu-west-1_AbCdEf123
//	  client_id: 4example
//	  identity_pool_id: eu-west-1:0d1d4c1e-1111-4222-8333-944455556666
//	token_store: keyring
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Cognito cognito.Config `yaml:"cognito" mapstructure:"cognito"`

	// TokenStore selects where user pool sessions are kept: memory,
	// keyring or redis. Defaults to redis when Redis is enabled and to
	// keyring otherwise.
	TokenStore string `yaml:"token_store" mapstructure:"token_store"`

	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Keyring       keyringstore.Config  `yaml:"keyring" mapstructure:"keyring"`
	Encryption    encryption.Config    `yaml:"encryption" mapstructure:"encryption"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
}

// ApplyDefaults fills every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Cognito.ApplyDefaults()

	if c.TokenStore == "" {
		if c.Redis.Enabled {
			c.TokenStore = TokenStoreRedis
		} else {
			c.TokenStore = TokenStoreKeyring
		}
	}
	if c.Keyring.ServiceName == "" && c.Name != "" {
		c.Keyring.ServiceName = c.Name
	}

	c.Redis.ApplyDefaults()
	c.Keyring.ApplyDefaults()
	c.Encryption.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Server.ApplyDefaults()

	if c.Storage.Region == "" {
		c.Storage.Region = c.Cognito.Region
	}
	c.Storage.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Cognito.Validate(); err != nil {
		return fmt.Errorf("cognito: %w", err)
	}

	switch c.TokenStore {
	case TokenStoreMemory, TokenStoreKeyring:
	case TokenStoreRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("token_store redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("token_store must be one of %s, %s, %s (got: %s)",
			TokenStoreMemory, TokenStoreKeyring, TokenStoreRedis, c.TokenStore)
	}

	sections := []struct {
		name string
		v    interface{ Validate() error }
	}{
		{"redis", &c.Redis},
		{"keyring", &c.Keyring},
		{"encryption", &c.Encryption},
		{"observability", &c.Observability},
		{"server", &c.Server},
		{"storage", &c.Storage},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
