package commands

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/nativefetch/auth"
	"github.com/kbukum/nativefetch/bootstrap"
	"github.com/kbukum/nativefetch/host"
	"github.com/kbukum/nativefetch/logger"
	"github.com/kbukum/nativefetch/observability"
	"github.com/kbukum/nativefetch/server"
)

var ServeCommand = cli.Command{
	Name:        "serve",
	Usage:       "serve [--port <port>]",
	Description: "Runs the native host behind the IPC server until interrupted",

	Flags: []cli.Flag{
		&cli.IntFlag{Name: "port", Usage: "override server.port"},
	},

	Action: func(ctx *cli.Context) error {
		cfg := configFrom(ctx)
		if ctx.IsSet("port") {
			cfg.Server.Port = ctx.Int("port")
		}

		app, err := bootstrap.NewApp(cfg)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		shutdown, err := observability.Setup(ctx.Context, &cfg.Observability, cfg.resource())
		if err != nil {
			app.Logger.Error("observability setup failed", logger.ErrorFields("setup", err))
			return cli.Exit(err.Error(), 1)
		}
		app.OnStop(shutdown)

		srv, err := newServer(cfg, app)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
		app.OnReady(func(_ context.Context) error {
			app.Logger.Info("IPC endpoint ready", logger.Fields("addr", srv.Addr(), "auth", cfg.Auth.Describe()))
			return nil
		})
		return app.Run(ctx.Context)
	},
}

// newServer wires the host and the IPC server into app and returns the server.
func newServer(cfg *AppConfig, app *bootstrap.App[*AppConfig]) (*server.Server, error) {
	metrics, err := observability.NewMetrics(observability.Meter("nativefetch/host"))
	if err != nil {
		return nil, err
	}
	h, err := host.New(cfg.Host, host.WithMetrics(metrics))
	if err != nil {
		return nil, err
	}

	opts := []server.Option{
		server.WithServiceName(cfg.Name),
		server.WithHealthChecker(app.Components.HealthAll),
	}
	if cfg.Auth.Enabled {
		tokens, err := auth.NewTokenService(cfg.Auth)
		if err != nil {
			return nil, err
		}
		opts = append(opts, server.WithTokenValidator(tokens))
	}

	srv, err := server.New(cfg.Server, host.NewDispatcher(h), opts...)
	if err != nil {
		return nil, err
	}

	if err := app.RegisterComponent(host.NewComponent(h)); err != nil {
		return nil, err
	}
	if err := app.RegisterComponent(server.NewComponent(srv)); err != nil {
		return nil, err
	}
	return srv, nil
}
