package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Manager drives a group of test components: started in the order added,
// stopped in reverse.
type Manager struct {
	ctx context.Context

	mu         sync.RWMutex
	components []TestComponent
}

// NewManager creates a manager whose lifecycle calls use ctx.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Add appends a component.
func (m *Manager) Add(c TestComponent) {
	m.mu.Lock()
	m.components = append(m.components, c)
	m.mu.Unlock()
}

// Components returns the components in the order added.
func (m *Manager) Components() []TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]TestComponent(nil), m.components...)
}

// Get returns the component named name, or nil.
func (m *Manager) Get(name string) TestComponent {
	for _, c := range m.Components() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// StartAll starts components in order and stops at the first failure.
func (m *Manager) StartAll() error {
	for _, c := range m.Components() {
		if err := c.Start(m.ctx); err != nil {
			return fmt.Errorf("failed to start component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// ResetAll resets components in order and stops at the first failure.
func (m *Manager) ResetAll() error {
	for _, c := range m.Components() {
		if err := c.Reset(m.ctx); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", c.Name(), err)
		}
	}
	return nil
}

// StopAll stops every component in reverse order and joins the failures.
func (m *Manager) StopAll() error {
	components := m.Components()
	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		if err := components[i].Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", components[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Cleanup is StopAll, shaped for t.Cleanup.
func (m *Manager) Cleanup() error {
	return m.StopAll()
}
