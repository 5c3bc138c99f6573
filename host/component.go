package host

import (
	"context"
	"fmt"

	"github.com/kbukum/nativefetch/component"
)

// Component adapts a Host to the component lifecycle.
type Component struct {
	host *Host
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent wraps h.
func NewComponent(h *Host) *Component {
	return &Component{host: h}
}

// Name implements component.Component.
func (c *Component) Name() string { return "native-host" }

// Start implements component.Component. The host is ready once constructed.
func (c *Component) Start(context.Context) error { return nil }

// Stop aborts outstanding exchanges.
func (c *Component) Stop(context.Context) error { return c.host.Close() }

// Health reports degraded while every exchange slot is taken.
func (c *Component) Health(context.Context) component.Health {
	h := component.Health{
		Name:   c.Name(),
		Status: component.StatusHealthy,
		Details: map[string]any{
			"open_resources": c.host.Open(),
			"in_flight":      c.host.InFlight(),
			"max_concurrent": c.host.bulkhead.MaxConcurrent(),
		},
	}
	if c.host.bulkhead.Available() == 0 {
		h.Status = component.StatusDegraded
		h.Message = "all exchange slots in use"
	}
	return h
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	cfg := c.host.cfg
	return component.Description{
		Name:    "Native host",
		Type:    "host",
		Details: fmt.Sprintf("max_concurrent=%d max_body=%d allow=%d deny=%d", cfg.MaxConcurrent, cfg.MaxBodySize, len(cfg.Scope.Allow), len(cfg.Scope.Deny)),
	}
}
