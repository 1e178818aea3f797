package testutil

import (
	"context"

	"github.com/kbukum/cognitokit/component"
)

// TestComponent is a component.Component with state control for tests.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (any, error)

	// Restore returns the component to a captured state.
	Restore(ctx context.Context, snapshot any) error
}
