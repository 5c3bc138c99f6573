package bootstrap

import (
	"github.com/kbukum/nativefetch/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.ServiceConfig satisfies it via promoted methods.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Host host.Config     `yaml:"host" mapstructure:"host"`
//	}
//
//	app, err := bootstrap.NewApp[*AppConfig](&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
