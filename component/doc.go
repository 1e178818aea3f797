// Package component defines lifecycle-managed building blocks (the credential
// adapter, token stores, the HTTP endpoint) and a Registry that starts them in
// order and stops them in reverse.
package component
