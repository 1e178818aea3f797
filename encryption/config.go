package encryption

import "fmt"

// Algorithm represents supported AEAD algorithms.
type Algorithm string

const (
	// AlgorithmChaCha20 is ChaCha20-Poly1305.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
	// AlgorithmAESGCM is AES-256-GCM.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
)

// Config controls at-rest encryption of stored tokens.
type Config struct {
	// Enabled turns sealing on. Stores write plain JSON otherwise.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Key is a passphrase; it is hashed to the cipher key size.
	Key string `yaml:"key" mapstructure:"key"`
	// Algorithm selects the AEAD. Defaults to chacha20-poly1305.
	Algorithm Algorithm `yaml:"algorithm" mapstructure:"algorithm"`
}

// ApplyDefaults fills in the algorithm.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmChaCha20
	}
}

// Validate checks the key and algorithm when encryption is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Key == "" {
		return fmt.Errorf("encryption.key is required when encryption is enabled")
	}
	switch c.Algorithm {
	case AlgorithmChaCha20, AlgorithmAESGCM:
		return nil
	default:
		return fmt.Errorf("encryption.algorithm must be %s or %s (got: %s)", AlgorithmChaCha20, AlgorithmAESGCM, c.Algorithm)
	}
}
