package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/kbukum/cognitokit/provider"
)

// Sealer encrypts and decrypts byte payloads with an AEAD cipher.
// The nonce is prepended to the ciphertext.
type Sealer struct {
	aead           cipher.AEAD
	associatedData []byte
}

var _ provider.Sealer = (*Sealer)(nil)

// Option configures a Sealer.
type Option func(*Sealer)

// WithAssociatedData binds ciphertexts to a label. Opening with a different
// label fails.
func WithAssociatedData(label string) Option {
	return func(s *Sealer) { s.associatedData = []byte(label) }
}

// New builds a Sealer from cfg. It returns (nil, nil) when cfg is disabled,
// which the stores treat as "no sealing".
func New(cfg Config, opts ...Option) (*Sealer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Algorithm {
	case AlgorithmAESGCM:
		return NewAESGCM(cfg.Key, opts...)
	default:
		return NewChaCha20(cfg.Key, opts...)
	}
}

// NewChaCha20 creates a ChaCha20-Poly1305 sealer keyed by SHA-256(key).
func NewChaCha20(key string, opts ...Option) (*Sealer, error) {
	aead, err := chacha20poly1305.New(deriveKey(key))
	if err != nil {
		return nil, fmt.Errorf("create chacha20: %w", err)
	}
	return newSealer(aead, opts), nil
}

// NewAESGCM creates an AES-256-GCM sealer keyed by SHA-256(key).
func NewAESGCM(key string, opts ...Option) (*Sealer, error) {
	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return newSealer(gcm, opts), nil
}

func newSealer(aead cipher.AEAD, opts []Option) *Sealer {
	s := &Sealer{aead: aead}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func deriveKey(key string) []byte {
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

// Seal encrypts plaintext with a fresh random nonce. A nil Sealer returns
// plaintext unchanged.
func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	if s == nil {
		return plaintext, nil
	}
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, s.associatedData), nil
}

// Open decrypts a payload produced by Seal. A nil Sealer is a pass-through.
func (s *Sealer) Open(ciphertext []byte) ([]byte, error) {
	if s == nil {
		return ciphertext, nil
	}
	nonceSize := s.aead.NonceSize()
	if len(ciphertext) < nonceSize+s.aead.Overhead() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, body, s.associatedData)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// EncryptString seals plaintext and returns it base64-encoded.
func (s *Sealer) EncryptString(plaintext string) (string, error) {
	sealed, err := s.Seal([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString.
func (s *Sealer) DecryptString(ciphertext string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	plaintext, err := s.Open(data)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
