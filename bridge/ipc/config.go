package ipc

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/nativefetch/security"
)

const (
	defaultEndpoint = "http://127.0.0.1:7421"
	defaultTimeout  = 5 * time.Minute
)

// Config configures an IPC client.
type Config struct {
	// Endpoint is the base URL of the IPC server.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Token is sent as a bearer token. Empty sends none.
	Token string `yaml:"token" mapstructure:"token"`
	// Timeout bounds one invocation. Defaults to 5m.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// H2C speaks cleartext HTTP/2 to an http:// endpoint.
	H2C bool `yaml:"h2c" mapstructure:"h2c"`
	// TLS configures https:// endpoints.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("ipc: invalid endpoint %q", c.Endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ipc: endpoint scheme must be http or https, got %q", u.Scheme)
	}
	if c.H2C && u.Scheme != "http" {
		return fmt.Errorf("ipc: h2c requires an http:// endpoint")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("ipc: timeout must be non-negative")
	}
	return c.TLS.Validate()
}
