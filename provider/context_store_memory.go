package provider

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory ContextStore. Values are copied on Save and
// Load, so callers never share a record with the store.
type MemoryStore[C any] struct {
	mu    sync.RWMutex
	items map[string]memEntry[C]
	now   func() time.Time
}

type memEntry[C any] struct {
	val       C
	expiresAt time.Time // zero means no expiration
}

// NewMemoryStore creates a new in-memory ContextStore.
func NewMemoryStore[C any]() *MemoryStore[C] {
	return &MemoryStore[C]{
		items: make(map[string]memEntry[C]),
		now:   time.Now,
	}
}

// Load retrieves state. Returns (nil, nil) if key doesn't exist or has expired.
func (s *MemoryStore[C]) Load(_ context.Context, key string) (*C, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, nil
	}
	val := entry.val
	return &val, nil
}

// Save persists state with optional TTL. A nil val deletes the key.
func (s *MemoryStore[C]) Save(_ context.Context, key string, val *C, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if val == nil {
		delete(s.items, key)
		return nil
	}
	entry := memEntry[C]{val: *val}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = entry
	return nil
}

// Delete removes state.
func (s *MemoryStore[C]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (s *MemoryStore[C]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ ContextStore[any] = (*MemoryStore[any])(nil)
