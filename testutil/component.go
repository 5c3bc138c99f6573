package testutil

import (
	"context"

	"github.com/kbukum/nativefetch/component"
)

// TestComponent is a component.Component with state control for tests.
// Test components can be registered like production components and reset
// between cases.
type TestComponent interface {
	component.Component

	// Reset returns the component to its freshly started state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore returns the component to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot interface{}) error
}
