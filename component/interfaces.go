package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string         `json:"name"`
	Status  HealthStatus   `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Component represents a lifecycle-managed part of the bridge.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and starts the component.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the component and releases resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information printed at startup.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Type categorizes the component: "host", "server", "adapter".
	Type string
	// Details is a one-liner such as "127.0.0.1:7421 h2c".
	Details string
}

// Describable is optionally implemented by components that can summarize
// their configuration for the startup log.
type Describable interface {
	Describe() Description
}

// Overall folds component health into one status: any unhealthy component
// makes the whole unhealthy, otherwise any degraded one makes it degraded.
func Overall(results []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range results {
		switch h.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}
