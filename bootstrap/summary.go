package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/nativefetch/component"
	"github.com/kbukum/nativefetch/logger"
)

// ComponentSummary is one line of the startup summary.
type ComponentSummary struct {
	Name    string
	Type    string
	Details string
	Status  component.HealthStatus
}

// Summary collects the state of every registered component.
func (a *App[C]) Summary(ctx context.Context) []ComponentSummary {
	health := make(map[string]component.Health)
	for _, h := range a.Components.HealthAll(ctx) {
		health[h.Name] = h
	}

	var out []ComponentSummary
	for _, c := range a.Components.All() {
		s := ComponentSummary{Name: c.Name(), Status: health[c.Name()].Status}
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name != "" {
				s.Name = desc.Name
			}
			s.Type = desc.Type
			s.Details = desc.Details
		}
		out = append(out, s)
	}
	return out
}

func (a *App[C]) logSummary(ctx context.Context, elapsed time.Duration) {
	for _, s := range a.Summary(ctx) {
		a.Logger.Info("component ready", logger.Fields(
			logger.FieldComponent, s.Name,
			"type", s.Type,
			"details", s.Details,
			"status", string(s.Status),
		))
	}
	a.Logger.Info("application ready", logger.MergeWithDuration(
		logger.Fields("name", a.Name, "version", a.Version, "components", len(a.Components.All())),
		elapsed,
	))
}
