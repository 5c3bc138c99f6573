package httpclient

import (
	"context"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/component"
)

// Component wraps an Adapter with lifecycle management.
// The adapter is created in Start.
type Component struct {
	adapter *Adapter
	invoker bridge.Invoker
	config  Config
	opts    []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates an adapter component over invoker.
func NewComponent(invoker bridge.Invoker, cfg Config, opts ...Option) *Component {
	return &Component{invoker: invoker, config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return defaultName
	}
	return c.config.Name
}

// Start creates the adapter.
func (c *Component) Start(_ context.Context) error {
	a, err := New(c.invoker, c.config, c.opts...)
	if err != nil {
		return err
	}
	c.adapter = a
	return nil
}

// Stop releases the adapter. The invoker is owned by the caller.
func (c *Component) Stop(_ context.Context) error {
	c.adapter = nil
	return nil
}

// Health reports healthy once the adapter exists.
func (c *Component) Health(_ context.Context) component.Health {
	status := component.StatusHealthy
	if c.adapter == nil {
		status = component.StatusUnhealthy
	}
	return component.Health{
		Name:   c.Name(),
		Status: status,
	}
}

// Describe returns component description for the startup summary.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.Name(),
		Type:    "adapter",
		Details: c.config.BaseURL,
	}
}

// Adapter returns the underlying adapter. Must be called after Start.
func (c *Component) Adapter() *Adapter {
	return c.adapter
}
