package config

import (
	"fmt"

	"github.com/kbukum/nativefetch/logger"
	"github.com/kbukum/nativefetch/validation"
)

// ServiceConfig contains the fields every nativefetch process needs.
// Command configs embed it:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Host host.Config `yaml:"host" mapstructure:"host"`
//	}
type ServiceConfig struct {
	Name        string        `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `json:"environment" yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `json:"version" yaml:"version" mapstructure:"version"`
	Debug       bool          `json:"debug" yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "nativefetch"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the struct tags above, then the logging section.
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
