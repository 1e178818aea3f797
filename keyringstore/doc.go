// Package keyringstore keeps user-pool token records in the OS keychain or an
// encrypted file through 99designs/keyring. It is the default token store for
// the CLI, standing in for the browser's local storage.
package keyringstore
