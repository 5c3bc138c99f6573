package auth

import (
	"errors"
	"fmt"
	"time"
)

// minSecretLength is the shortest HMAC secret accepted.
const minSecretLength = 16

// Config configures IPC token issuance and validation.
type Config struct {
	// Enabled controls whether the IPC endpoint requires a token.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer is the "iss" claim written and required.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// Audience is the "aud" claim written and required.
	Audience string `yaml:"audience" mapstructure:"audience"`
	// TTL is the lifetime of issued tokens.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Issuer == "" {
		c.Issuer = "nativefetch"
	}
	if c.Audience == "" {
		c.Audience = "nativefetch-ipc"
	}
	if c.TTL == 0 {
		c.TTL = 24 * time.Hour
	}
}

// Validate checks the configuration. A disabled config is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Secret == "" {
		return errors.New("auth: secret is required when enabled")
	}
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("auth: secret must be at least %d bytes", minSecretLength)
	}
	if c.TTL < 0 {
		return errors.New("auth: ttl must be non-negative")
	}
	return nil
}

// Describe returns a one-liner for the startup log.
func (c *Config) Describe() string {
	if !c.Enabled {
		return "disabled"
	}
	return fmt.Sprintf("JWT(HS256) iss=%s TTL=%s", c.Issuer, c.TTL)
}
