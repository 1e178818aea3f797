package keyringstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/99designs/keyring"

	"github.com/kbukum/cognitokit/provider"
)

// Backend names accepted by Config.Backend.
const (
	BackendAuto   = "auto"
	BackendFile   = "file"
	BackendSystem = "system"
)

// Config selects and configures the keyring backend.
type Config struct {
	// ServiceName labels the keychain entries.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// Backend is auto, file or system.
	Backend string `yaml:"backend" mapstructure:"backend"`
	// FileDir is where the file backend keeps its entries.
	FileDir string `yaml:"file_dir" mapstructure:"file_dir"`
	// PasswordEnv names the env var holding the file backend password.
	// Without it the password is prompted on the terminal.
	PasswordEnv string `yaml:"password_env" mapstructure:"password_env"`
}

// ApplyDefaults fills in defaults.
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "cognitokit"
	}
	if c.Backend == "" {
		c.Backend = BackendAuto
	}
	if c.FileDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.FileDir = filepath.Join(dir, c.ServiceName, "keyring")
		}
	}
	if c.PasswordEnv == "" {
		c.PasswordEnv = "COGNITOKIT_KEYRING_PASSWORD"
	}
}

// Validate checks the backend name.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendSystem:
		return nil
	case BackendFile:
		if c.FileDir == "" {
			return fmt.Errorf("keyring.file_dir is required for the file backend")
		}
		return nil
	default:
		return fmt.Errorf("keyring.backend must be one of auto, file, system (got: %s)", c.Backend)
	}
}

// Open opens the configured keyring.
func Open(cfg Config) (keyring.Keyring, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kc := keyring.Config{
		ServiceName:                    cfg.ServiceName,
		FileDir:                        cfg.FileDir,
		FilePasswordFunc:               passwordPrompt(cfg.PasswordEnv),
		KeychainName:                   cfg.ServiceName,
		KeychainTrustApplication:       true,
		KeychainAccessibleWhenUnlocked: true,
	}
	switch cfg.Backend {
	case BackendFile:
		kc.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	case BackendSystem:
		kc.AllowedBackends = systemBackends()
	}
	if cfg.Backend != BackendSystem {
		if err := os.MkdirAll(cfg.FileDir, 0o700); err != nil {
			return nil, fmt.Errorf("keyring dir: %w", err)
		}
	}

	ring, err := keyring.Open(kc)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

func systemBackends() []keyring.BackendType {
	var out []keyring.BackendType
	for _, b := range keyring.AvailableBackends() {
		if b != keyring.FileBackend {
			out = append(out, b)
		}
	}
	return out
}

func passwordPrompt(env string) keyring.PromptFunc {
	return func(prompt string) (string, error) {
		if pw := os.Getenv(env); pw != "" {
			return pw, nil
		}
		return keyring.TerminalPrompt(prompt)
	}
}

// envelope carries the expiry next to the encoded value; keyrings have no TTL.
type envelope struct {
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	Data      []byte    `json:"data"`
}

// Store is a provider.ContextStore over a keyring.
type Store[C any] struct {
	ring   keyring.Keyring
	sealer provider.Sealer
	now    func() time.Time
}

// New wraps ring. sealer may be nil.
func New[C any](ring keyring.Keyring, sealer provider.Sealer) *Store[C] {
	return &Store[C]{ring: ring, sealer: sealer, now: time.Now}
}

var _ provider.ContextStore[any] = (*Store[any])(nil)

// Load returns (nil, nil) for missing or expired keys.
func (s *Store[C]) Load(ctx context.Context, key string) (*C, error) {
	item, err := s.ring.Get(key)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keyring load %q: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(item.Data, &env); err != nil {
		return nil, fmt.Errorf("keyring load %q: %w", key, err)
	}
	if !env.ExpiresAt.IsZero() && s.now().After(env.ExpiresAt) {
		_ = s.Delete(ctx, key)
		return nil, nil
	}
	val, err := provider.Decode[C](env.Data, s.sealer)
	if err != nil {
		return nil, fmt.Errorf("keyring decode %q: %w", key, err)
	}
	return val, nil
}

// Save stores val. A nil val deletes the key.
func (s *Store[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	if val == nil {
		return s.Delete(ctx, key)
	}
	data, err := provider.Encode(val, s.sealer)
	if err != nil {
		return fmt.Errorf("keyring encode %q: %w", key, err)
	}
	env := envelope{Data: data}
	if ttl > 0 {
		env.ExpiresAt = s.now().Add(ttl)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("keyring encode %q: %w", key, err)
	}
	if err := s.ring.Set(keyring.Item{Key: key, Data: raw, Label: key}); err != nil {
		return fmt.Errorf("keyring save %q: %w", key, err)
	}
	return nil
}

// Delete removes key; a missing key is not an error.
func (s *Store[C]) Delete(_ context.Context, key string) error {
	if err := s.ring.Remove(key); err != nil && !isNotFound(err) {
		return fmt.Errorf("keyring delete %q: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}
