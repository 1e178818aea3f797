package storage

import (
	"strings"

	"github.com/kbukum/cognitokit/validation"
)

// Provider constants for supported storage backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultProvider = ProviderS3
	DefaultBasePath = "/tmp/cognitokit-storage"
	DefaultPrefix   = "private/"
)

// Config holds storage configuration.
type Config struct {
	// Enabled controls whether the storage component is active.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Provider selects the backend: "s3" or "local".
	Provider string `yaml:"provider" mapstructure:"provider" validate:"oneof=s3 local"`

	// Bucket is the S3 bucket name.
	Bucket string `yaml:"bucket" mapstructure:"bucket" validate:"required_if=Provider s3"`

	// Region is the S3 region. Empty uses the Cognito region.
	Region string `yaml:"region" mapstructure:"region" validate:"omitempty,awsregion"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`

	// ForcePathStyle forces path-style URLs. Implied by Endpoint.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style"`

	// AccessKey and SecretKey pin static credentials, for local S3
	// emulators. Identity pool credentials are used when empty.
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`

	// BasePath is the root directory for the local provider.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`

	// Prefix is prepended to the identity id to form each user's folder.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if !strings.HasSuffix(c.Prefix, "/") {
		c.Prefix += "/"
	}
}

// Validate checks the configuration of an enabled component.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.Validate(c)
}
