package server

import (
	"github.com/kbukum/cognitokit/security"
	"github.com/kbukum/cognitokit/server/middleware"
	"github.com/kbukum/cognitokit/validation"
)

// Config holds HTTP credential server configuration.
type Config struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Host         string `yaml:"host" mapstructure:"host"`
	Port         int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`   // seconds
	MaxBodySize  string `yaml:"max_body_size" mapstructure:"max_body_size"`                  // e.g. "64KB"
	// AuthToken, when set, must be sent in the Authorization header of every
	// /v1 request. It matches AWS_CONTAINER_AUTHORIZATION_TOKEN.
	AuthToken string                     `yaml:"auth_token" mapstructure:"auth_token"`
	RateLimit middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	CORS      middleware.CORSConfig      `yaml:"cors" mapstructure:"cors"`
	// Events serves the adapter event stream at /v1/events.
	Events bool `yaml:"events" mapstructure:"events"`
	// TLS serves HTTPS when a certificate is configured.
	TLS security.ServerTLS `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "64KB"
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	}
}

// Validate checks the configuration. A disabled server is not checked.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}
