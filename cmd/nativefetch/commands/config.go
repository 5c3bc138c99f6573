package commands

import (
	"github.com/kbukum/nativefetch/auth"
	"github.com/kbukum/nativefetch/bridge/ipc"
	"github.com/kbukum/nativefetch/config"
	"github.com/kbukum/nativefetch/host"
	"github.com/kbukum/nativefetch/httpclient"
	"github.com/kbukum/nativefetch/observability"
	"github.com/kbukum/nativefetch/server"
	"github.com/kbukum/nativefetch/version"
)

const serviceName = "nativefetch"

// AppConfig is the configuration shared by every nativefetch command.
// Every key can be overridden with a NATIVEFETCH_ variable, e.g.
// NATIVEFETCH_SERVER_PORT=7500.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Host          host.Config          `yaml:"host" mapstructure:"host"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	IPC           ipc.Config           `yaml:"ipc" mapstructure:"ipc"`
	Client        httpclient.Config    `yaml:"client" mapstructure:"client"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills zero-valued fields of every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Version == "" {
		c.Version = version.Version
	}
	c.Host.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.IPC.ApplyDefaults()
	c.Client.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	validators := []func() error{
		c.ServiceConfig.Validate,
		c.Host.Validate,
		c.Server.Validate,
		c.Auth.Validate,
		c.IPC.Validate,
		c.Client.Validate,
		c.Observability.Validate,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfig reads the YAML file, the .env file and NATIVEFETCH_ variables,
// then applies defaults. Empty paths fall back to the default search paths.
func LoadConfig(configFile, envFile string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg,
		config.WithConfigFile(configFile),
		config.WithEnvFile(envFile),
	); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func (c *AppConfig) resource() observability.Resource {
	return observability.Resource{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
	}
}
