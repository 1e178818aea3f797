package userpool

import (
	"strings"

	"github.com/kbukum/cognitokit/validation"
)

// Config identifies a user pool app client.
type Config struct {
	// Region of the user pool. Derived from UserPoolID when empty.
	Region string `yaml:"region" mapstructure:"region" validate:"required,awsregion"`
	// UserPoolID is "<region>_<id>".
	UserPoolID string `yaml:"user_pool_id" mapstructure:"user_pool_id" validate:"required,userpoolid"`
	// ClientID is the app client id.
	ClientID string `yaml:"client_id" mapstructure:"client_id" validate:"required"`
	// ClientSecret is set for confidential app clients; every auth call then
	// carries a SECRET_HASH.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	// Endpoint overrides the user pool endpoint (e.g. cognito-local). It also
	// replaces the issuer host in identity pool login keys.
	Endpoint string `yaml:"idp_endpoint" mapstructure:"idp_endpoint" validate:"omitempty,url"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		if region, _, ok := strings.Cut(c.UserPoolID, "_"); ok {
			c.Region = region
		}
	}
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// HasSecret reports whether the app client is confidential.
func (c *Config) HasSecret() bool {
	return c.ClientSecret != ""
}
