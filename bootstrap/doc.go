// Package bootstrap runs a service whose components are assembled by a
// di.Registry.
//
// It applies and validates the typed configuration, initializes logging and
// optional OTLP export, lets the application bind its components, freezes
// the registry into a validated di.Context and drives startup/shutdown hooks.
//
// # Quick Start
//
//	cfg, err := config.Load("orders")
//	app, err := bootstrap.NewApp(cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*config.ServiceConfig]) error {
//	    return di.Bind[OrderService](a.Registry, describeOrders())
//	})
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// A missing or cyclic dependency fails startup before any component is built.
package bootstrap
