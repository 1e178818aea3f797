// Package redis stores user-pool token records in Redis so several processes
// (the CLI and the credential endpoint, or replicas of the endpoint) share one
// signed-in session.
//
//	comp, err := redis.NewComponent(cfg, log)
//	store := redis.NewTypedStore[userpool.Record](comp.Client(), "cognito", sealer)
//
// TypedStore implements provider.ContextStore. Tests run against miniredis
// through redis/testutil.
package redis
