// Package bootstrap runs a nativefetch process: it validates configuration,
// starts registered components in order, runs lifecycle hooks, and shuts down
// gracefully on SIGINT or SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.RegisterComponent(host.NewComponent(h))
//	app.RegisterComponent(server.NewComponent(s))
//	return app.Run(ctx)
//
// Short-lived commands use RunTask instead, which stops everything once the
// task returns.
package bootstrap
