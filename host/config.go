package host

import (
	"fmt"
	"time"

	"github.com/kbukum/nativefetch/security"
	"github.com/kbukum/nativefetch/version"
)

const (
	defaultMaxBodySize   = 64 << 20
	defaultMaxConcurrent = 64
	defaultTimeout       = 5 * time.Minute
)

// Config configures a native host.
type Config struct {
	// Scope restricts which URLs may be fetched.
	Scope ScopeConfig `yaml:"scope" mapstructure:"scope"`

	// MaxBodySize caps a response body in bytes. Defaults to 64 MiB.
	MaxBodySize int64 `yaml:"max_body_size" mapstructure:"max_body_size"`

	// MaxConcurrent caps exchanges held open at once. Defaults to 64.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// MaxWait is how long fetch waits for a free slot. 0 fails immediately.
	MaxWait time.Duration `yaml:"max_wait" mapstructure:"max_wait"`

	// Timeout bounds a whole exchange, from fetch to the end of the body.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent when the request carries none. Defaults to nativefetch/<version>.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Cookies keeps a host-wide cookie jar across exchanges.
	Cookies bool `yaml:"cookies" mapstructure:"cookies"`

	// Envelope wraps fetch_send and fetch_read_body results in {"message": ...}.
	Envelope bool `yaml:"envelope" mapstructure:"envelope"`

	// TLS configures outbound TLS.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ScopeConfig lists URL glob patterns. "*" matches any run of characters.
// An empty allow list allows every http and https URL; deny always wins.
type ScopeConfig struct {
	Allow []string `yaml:"allow" mapstructure:"allow"`
	Deny  []string `yaml:"deny" mapstructure:"deny"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.MaxBodySize == 0 {
		c.MaxBodySize = defaultMaxBodySize
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxBodySize < 0 {
		return fmt.Errorf("host: max_body_size must be non-negative")
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("host: max_concurrent must be non-negative")
	}
	if c.MaxWait < 0 || c.Timeout < 0 {
		return fmt.Errorf("host: max_wait and timeout must be non-negative")
	}
	if _, err := NewScope(c.Scope); err != nil {
		return err
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	return nil
}
