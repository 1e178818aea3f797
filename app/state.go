package app

import (
	"github.com/kbukum/cognitokit/config"
	"github.com/kbukum/cognitokit/state"
)

// Reducers holds the feature reducers of the application state. It is empty;
// features add their reducer under their own key.
var Reducers = state.ReducerMap{}

// MetaReducers returns the meta-reducers for env. Outside production every
// state is frozen so that changes made without dispatching panic.
func MetaReducers(env string) []state.MetaReducer[*state.State] {
	if env == config.EnvProduction {
		return nil
	}
	return []state.MetaReducer[*state.State]{state.Freeze[*state.State]}
}

// NewStore creates the application store for env and dispatches the init
// action.
func NewStore(env string) *state.Store[*state.State] {
	return state.NewStore(state.CombineReducers(Reducers), state.New(), MetaReducers(env)...)
}
