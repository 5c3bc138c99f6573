package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/kbukum/nativefetch/version"
)

const configKey = "config"

// NewApp builds the nativefetch command line.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = serviceName
	app.Usage = "HTTP through a native bridge host"
	app.Version = version.GetShortVersion()
	app.HideVersion = true

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the YAML config file",
			EnvVars: []string{"NATIVEFETCH_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "path to a .env file",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}

	app.Before = func(ctx *cli.Context) error {
		cfg, err := LoadConfig(ctx.String("config"), ctx.String("env-file"))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		if ctx.Bool("debug") {
			cfg.Debug = true
			cfg.Logging.Level = "debug"
		}
		ctx.App.Metadata = map[string]interface{}{configKey: cfg}
		return nil
	}

	app.Commands = []*cli.Command{
		&ServeCommand,
		&FetchCommand,
		&TokenCommand,
		&VersionCommand,
	}
	return app
}

func configFrom(ctx *cli.Context) *AppConfig {
	return ctx.App.Metadata[configKey].(*AppConfig)
}
