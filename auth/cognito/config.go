package cognito

import (
	"fmt"
	"strings"

	"github.com/kbukum/cognitokit/auth/userpool"
	"github.com/kbukum/cognitokit/validation"
)

// Config is the login-pool configuration read from the "cognito" section.
type Config struct {
	userpool.Config `yaml:",inline" mapstructure:",squash"`

	// IdentityPoolID is "<region>:<uuid>".
	IdentityPoolID string `yaml:"identity_pool_id" mapstructure:"identity_pool_id" validate:"required,identitypoolid"`
	// IdentityEndpoint overrides the identity pool endpoint.
	IdentityEndpoint string `yaml:"identity_endpoint" mapstructure:"identity_endpoint" validate:"omitempty,url"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	c.Config.ApplyDefaults()
	c.IdentityEndpoint = strings.TrimRight(c.IdentityEndpoint, "/")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// UserPool returns the user pool part of the configuration.
func (c *Config) UserPool() *userpool.Config {
	return &c.Config
}

// LoginKey is the provider name identity pools expect in a logins map:
// the user pool issuer without scheme, or the IdP endpoint override
// followed by the pool id.
func (c *Config) LoginKey() string {
	if c.Endpoint != "" {
		return c.Endpoint + "/" + c.UserPoolID
	}
	return fmt.Sprintf("cognito-idp.%s.amazonaws.com/%s", strings.ToLower(c.Region), c.UserPoolID)
}
