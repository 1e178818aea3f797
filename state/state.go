package state

import (
	"maps"
	"slices"
	"sync"

	apperrors "github.com/kbukum/cognitokit/errors"
)

// ErrFrozen is the panic value raised when a frozen State is modified.
var ErrFrozen = apperrors.FailedPrecondition("state is frozen; mutate it only inside a reducer")

// Freezer is implemented by values that can be made read-only.
type Freezer interface {
	Freeze()
}

// State is the keyed container of feature states. Keys are feature names.
type State struct {
	mu       sync.RWMutex
	frozen   bool
	features map[string]any
}

var _ Freezer = (*State)(nil)

// New returns an empty, unfrozen State.
func New() *State {
	return &State{features: make(map[string]any)}
}

// Get returns the state of a feature.
func (s *State) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.features[key]
	return v, ok
}

// Set stores the state of a feature. It panics with ErrFrozen when s is frozen.
func (s *State) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		panic(ErrFrozen)
	}
	s.features[key] = v
}

// Delete removes a feature. It panics with ErrFrozen when s is frozen.
func (s *State) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		panic(ErrFrozen)
	}
	delete(s.features, key)
}

// Keys returns the feature names in sorted order.
func (s *State) Keys() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.features))
}

// Len returns the number of features.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.features)
}

// Clone returns an unfrozen shallow copy.
func (s *State) Clone() *State {
	if s == nil {
		return New()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &State{features: maps.Clone(s.features)}
}

// Freeze makes s read-only, along with every feature value that is a Freezer.
func (s *State) Freeze() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.frozen {
		s.mu.Unlock()
		return
	}
	s.frozen = true
	values := slices.Collect(maps.Values(s.features))
	s.mu.Unlock()

	for _, v := range values {
		freeze(v)
	}
}

// Frozen reports whether s is read-only.
func (s *State) Frozen() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

func freeze(v any) {
	if f, ok := v.(Freezer); ok {
		f.Freeze()
	}
}
