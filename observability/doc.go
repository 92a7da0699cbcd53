// Package observability provides OpenTelemetry tracing and metrics for
// object-graph assembly.
//
// Export setup:
//
//	cfg := observability.DefaultConfig("my-service")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
// Resolution telemetry:
//
//	metrics, err := observability.NewMetrics(observability.Meter("di"))
//	obs := observability.NewResolutionObserver(nil, metrics)
//	r := di.NewRegistry(di.WithObserver(obs))
//	c, err := obs.Freeze(ctx, r)
//
// Every construction then produces a "di.resolve" span and updates the
// di.resolve.total, di.resolve.errors and di.resolve.duration instruments.
//
// Health Checks:
//
//	health := observability.NewServiceHealth("my-service", "1.0.0")
//	health.AddComponent(observability.ContainerHealth("container", c))
package observability
