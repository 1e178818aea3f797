package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/cognitokit/provider"
)

// TypedStore is a provider.ContextStore backed by Redis. Values are JSON,
// optionally sealed.
type TypedStore[C any] struct {
	client    *Client
	keyPrefix string
	sealer    provider.Sealer
}

// NewTypedStore creates a TypedStore. Keys are stored as "<keyPrefix>:<key>".
// sealer may be nil.
func NewTypedStore[C any](client *Client, keyPrefix string, sealer provider.Sealer) *TypedStore[C] {
	return &TypedStore[C]{
		client:    client,
		keyPrefix: keyPrefix,
		sealer:    sealer,
	}
}

func (s *TypedStore[C]) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load returns (nil, nil) when the key doesn't exist.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	raw, found, err := s.client.GetBytes(ctx, s.fullKey(key))
	if err != nil {
		return nil, fmt.Errorf("redis store load %q: %w", key, err)
	}
	if !found {
		return nil, nil
	}
	val, err := provider.Decode[C](raw, s.sealer)
	if err != nil {
		return nil, fmt.Errorf("redis store decode %q: %w", key, err)
	}
	return val, nil
}

// Save stores val with ttl. A nil val deletes the key.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	if val == nil {
		return s.Delete(ctx, key)
	}
	data, err := provider.Encode(val, s.sealer)
	if err != nil {
		return fmt.Errorf("redis store encode %q: %w", key, err)
	}
	if err := s.client.Set(ctx, s.fullKey(key), data, ttl); err != nil {
		return fmt.Errorf("redis store save %q: %w", key, err)
	}
	return nil
}

// Delete removes the key.
func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("redis store delete %q: %w", key, err)
	}
	return nil
}

var _ provider.ContextStore[any] = (*TypedStore[any])(nil)
