package state

// InitAction is dispatched once when a Store is created.
const InitAction = "@cognitokit/state/init"

// Action describes a state transition.
type Action struct {
	Type    string
	Payload any
}

// Reducer computes the next state from the current state and an action.
// Reducers must not modify their input; return a new value instead.
type Reducer[S any] func(state S, action Action) S

// MetaReducer wraps a Reducer, e.g. to observe or guard every transition.
type MetaReducer[S any] func(next Reducer[S]) Reducer[S]

// ReducerMap maps feature keys to the reducer owning that feature.
type ReducerMap map[string]Reducer[any]

// CombineReducers returns a reducer over State that runs every feature
// reducer on its own key. The result is a new State; with no reducers the
// input is returned as is.
func CombineReducers(reducers ReducerMap) Reducer[*State] {
	return func(s *State, action Action) *State {
		if s == nil {
			s = New()
		}
		if len(reducers) == 0 {
			return s
		}

		next := s.Clone()
		for key, reduce := range reducers {
			prev, _ := s.Get(key)
			next.features[key] = reduce(prev, action)
		}
		return next
	}
}

// Compose applies metas around reducer. The first meta-reducer is the
// outermost and sees each action first.
func Compose[S any](reducer Reducer[S], metas ...MetaReducer[S]) Reducer[S] {
	for i := len(metas) - 1; i >= 0; i-- {
		reducer = metas[i](reducer)
	}
	return reducer
}

// Freeze is a meta-reducer that freezes the incoming state, the action
// payload and the returned state when they implement Freezer. Any later
// attempt to modify them in place panics.
func Freeze[S any](next Reducer[S]) Reducer[S] {
	return func(s S, action Action) S {
		freeze(s)
		freeze(action.Payload)
		out := next(s, action)
		freeze(out)
		return out
	}
}
