package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ContextStore provides typed state persistence.
// TTL of 0 means no expiration.
type ContextStore[C any] interface {
	// Load retrieves state. Returns (nil, nil) if key doesn't exist.
	Load(ctx context.Context, key string) (*C, error)
	// Save persists state with optional TTL. TTL of 0 means no expiration.
	Save(ctx context.Context, key string, val *C, ttl time.Duration) error
	// Delete removes state. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Sealer encrypts values before they reach a persistent backend.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

// Encode marshals val to JSON and seals it when sealer is non-nil.
func Encode[C any](val *C, sealer Sealer) ([]byte, error) {
	data, err := json.Marshal(val)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if sealer == nil {
		return data, nil
	}
	sealed, err := sealer.Seal(data)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	return sealed, nil
}

// Decode reverses Encode.
func Decode[C any](data []byte, sealer Sealer) (*C, error) {
	if sealer != nil {
		opened, err := sealer.Open(data)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		data = opened
	}
	var val C
	if err := json.Unmarshal(data, &val); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &val, nil
}
