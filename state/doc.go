// Package state is a small unidirectional state container.
//
// A Store holds one state value and replaces it on every Dispatch with the
// result of its Reducer. MetaReducers wrap the reducer; Freeze is the one
// used outside production, making every state it sees read-only so code
// that changes state without dispatching panics with ErrFrozen.
//
//	root := state.CombineReducers(state.ReducerMap{})
//	store := state.NewStore(root, state.New(), state.Freeze[*state.State])
//	store.State().Set("x", 1) // panics
package state
