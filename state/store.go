package state

import (
	"sync"
)

// Store holds the current state and applies dispatched actions to it.
// Dispatches are serialized; subscribers run after each transition on the
// dispatching goroutine.
type Store[S any] struct {
	mu      sync.RWMutex
	reducer Reducer[S]
	state   S

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(S)
}

// NewStore creates a store around reducer wrapped by metas, starting from
// initial, and dispatches InitAction.
func NewStore[S any](reducer Reducer[S], initial S, metas ...MetaReducer[S]) *Store[S] {
	s := &Store[S]{
		reducer: Compose(reducer, metas...),
		state:   initial,
		subs:    make(map[int]func(S)),
	}
	s.Dispatch(Action{Type: InitAction})
	return s
}

// Dispatch applies action and notifies subscribers with the new state.
func (s *Store[S]) Dispatch(action Action) {
	s.mu.Lock()
	s.state = s.reducer(s.state, action)
	current := s.state
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(S), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(current)
	}
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for every future transition. The returned func
// removes it.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Select projects the current state of store through selector.
func Select[S, T any](store *Store[S], selector func(S) T) T {
	return selector(store.State())
}

// FeatureSelector returns a selector reading key from a State as T.
func FeatureSelector[T any](key string) func(*State) (T, bool) {
	return func(s *State) (T, bool) {
		v, ok := s.Get(key)
		if !ok {
			var zero T
			return zero, false
		}
		t, ok := v.(T)
		return t, ok
	}
}
