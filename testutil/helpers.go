package testutil

import (
	"context"
	"testing"
)

// CleanupFunc stops what a Setup call started.
type CleanupFunc func() error

// Setup starts c and returns the function that stops it.
func Setup(c TestComponent) (CleanupFunc, error) {
	return SetupWithContext(context.Background(), c)
}

// SetupWithContext is Setup with an explicit context for Start and Stop.
func SetupWithContext(ctx context.Context, c TestComponent) (CleanupFunc, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return func() error { return c.Stop(ctx) }, nil
}

// THelper binds test components to a test's lifetime. Failures are fatal.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t.
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to component calls.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts c and stops it when the test ends.
func (h *THelper) Setup(c TestComponent) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("start %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("stop %s: %v", c.Name(), err)
		}
	})
}

// Reset returns c to its freshly started state.
func (h *THelper) Reset(c TestComponent) {
	h.t.Helper()
	if err := c.Reset(h.ctx); err != nil {
		h.t.Fatalf("reset %s: %v", c.Name(), err)
	}
}

// Snapshot captures the state of c.
func (h *THelper) Snapshot(c TestComponent) interface{} {
	h.t.Helper()
	snapshot, err := c.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("snapshot %s: %v", c.Name(), err)
	}
	return snapshot
}

// Restore returns c to a captured state.
func (h *THelper) Restore(c TestComponent, snapshot interface{}) {
	h.t.Helper()
	if err := c.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("restore %s: %v", c.Name(), err)
	}
}
