// Package provider defines ContextStore, the typed key/value contract that
// client-side token storage is written against, plus an in-memory
// implementation and the JSON codec shared by the persistent backends
// (redis, keyringstore).
//
// Keys are opaque; the user-pool layer uses the browser SDK layout
// "<clientId>.LastAuthUser" and "<clientId>.<username>".
package provider
