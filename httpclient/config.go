package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/nativefetch/bridge"
	"github.com/kbukum/nativefetch/resilience"
	"github.com/kbukum/nativefetch/validation"
)

const defaultName = "http"

// Config configures an Adapter. Request fields override the matching
// adapter defaults.
type Config struct {
	// Name identifies the adapter in logs and component listings.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is prepended to relative request URLs.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`

	// Timeout bounds a whole request, all bridge calls included. 0 means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Headers are sent with every request, before the request's own headers.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// ResponseType is the default for requests that leave it empty.
	ResponseType ResponseType `yaml:"response_type" mapstructure:"response_type" validate:"omitempty,oneof=json text arraybuffer"`

	// MaxRedirections is the default redirect cap.
	MaxRedirections *int `yaml:"max_redirections" mapstructure:"max_redirections" validate:"omitempty,gte=0"`

	// ConnectTimeout is the default connection timeout on the host.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"gte=0"`

	// Proxy is the default proxy configuration.
	Proxy *bridge.Proxy `yaml:"-" mapstructure:"-"`

	// Auth is applied to every request that carries no Auth of its own.
	Auth *AuthConfig `yaml:"-" mapstructure:"-"`

	// Retry enables retries of failed requests. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}

// DefaultRetryConfig returns a retry config that retries only IsRetryable errors.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}
