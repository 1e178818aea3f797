// Package endpoint provides the /health and /info handlers.
package endpoint
