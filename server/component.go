package server

import (
	"context"
	"fmt"

	"github.com/kbukum/nativefetch/component"
)

const componentName = "ipc-server"

var (
	_ component.Component   = (*ServerComponent)(nil)
	_ component.Describable = (*ServerComponent)(nil)
)

// ServerComponent wraps Server to implement component.Component.
type ServerComponent struct {
	server  *Server
	started bool
}

// NewComponent returns a component.Component backed by the given Server.
func NewComponent(s *Server) *ServerComponent {
	return &ServerComponent{server: s}
}

// Name returns the component name used for registration.
func (sc *ServerComponent) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (sc *ServerComponent) Start(ctx context.Context) error {
	if err := sc.server.Start(ctx); err != nil {
		return err
	}
	sc.started = true
	return nil
}

// Stop gracefully shuts down the underlying HTTP server.
func (sc *ServerComponent) Stop(ctx context.Context) error {
	if !sc.started {
		return nil
	}
	return sc.server.Stop(ctx)
}

// Health returns the health status of the server.
func (sc *ServerComponent) Health(context.Context) component.Health {
	if !sc.started {
		return component.Health{
			Name:    componentName,
			Status:  component.StatusUnhealthy,
			Message: "IPC server not started",
		}
	}
	return component.Health{
		Name:    componentName,
		Status:  component.StatusHealthy,
		Details: map[string]any{"addr": sc.server.Addr()},
	}
}

// Describe returns summary info for the startup log.
func (sc *ServerComponent) Describe() component.Description {
	cfg := sc.server.config
	mode := "h2c"
	if cfg.TLS.IsEnabled() {
		mode = "tls"
	}
	if sc.server.validator != nil {
		mode += "+token"
	}
	return component.Description{
		Name:    "IPC server",
		Type:    "server",
		Details: fmt.Sprintf("%s:%d %s", cfg.Host, cfg.Port, mode),
	}
}
