package observability

import (
	"fmt"
	"time"
)

// Config configures OTLP/HTTP export of traces and metrics.
type Config struct {
	// Enabled turns on exporters. When false, spans and metrics go to no-op providers.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// MetricsInterval is the metric export interval.
	MetricsInterval time.Duration `yaml:"metrics_interval" mapstructure:"metrics_interval"`
}

// Resource describes the service reported with every span and metric.
type Resource struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval == 0 {
		c.MetricsInterval = 15 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("observability: sample_rate must be between 0 and 1, got %v", c.SampleRate)
	}
	if c.MetricsInterval < 0 {
		return fmt.Errorf("observability: metrics_interval must be non-negative")
	}
	return nil
}
