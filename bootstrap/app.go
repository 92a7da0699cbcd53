package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/wulawulu/tdd-di/di"
	"github.com/wulawulu/tdd-di/logger"
	"github.com/wulawulu/tdd-di/observability"
	"github.com/wulawulu/tdd-di/version"
)

const instrumentationName = "github.com/wulawulu/tdd-di/bootstrap"

// App owns the registry of a service and drives it through a uniform
// lifecycle. The type parameter C is the config type; any struct embedding
// config.ServiceConfig satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    return di.Bind[Greeter](a.Registry, describeGreeter())
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name     string
	Version  string
	Cfg      C
	Registry *di.Registry
	// Context is the frozen registry, nil until Freeze succeeds.
	Context *di.Context
	Logger  *logger.Logger
	Summary *Summary

	observer       *observability.ResolutionObserver
	checkers       []observability.HealthChecker
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger and
// creates an observed registry configured from the Container section.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}
	if app.Version == "" {
		app.Version = version.Get().Short()
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	// Instruments come from the global providers, which forward to the
	// exporters once startup installs them.
	metrics, err := observability.NewMetrics(observability.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("creating metrics: %w", err)
	}
	app.observer = observability.NewResolutionObserver(observability.Tracer(instrumentationName), metrics)

	registryOpts := append([]di.Option{
		di.WithConfig(base.Container),
		di.WithLogger(app.Logger.WithComponent("di")),
		di.WithObserver(app.observer),
	}, o.registryOpts...)
	app.Registry = di.NewRegistry(registryOpts...)

	out := o.summaryOut
	if out == nil {
		out = os.Stdout
	}
	app.Summary = NewSummary(app.Name, app.Version, out)
	return app, nil
}

// OnConfigure registers a callback that runs before the registry is frozen.
// Bind the application's components here.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// AddHealthCheck adds components whose health is reported next to the container's.
func (a *App[C]) AddHealthCheck(checkers ...observability.HealthChecker) {
	a.checkers = append(a.checkers, checkers...)
}

// Freeze validates the registry and stores the resulting context. Bindings
// added to the registry afterwards are not visible through a.Context.
func (a *App[C]) Freeze(ctx context.Context) (*di.Context, error) {
	c, err := a.observer.Freeze(ctx, a.Registry)
	if err != nil {
		return nil, err
	}
	a.Context = c
	return c, nil
}

// Health reports the container and every registered health check.
func (a *App[C]) Health(ctx context.Context) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(a.Name, a.Version)
	sh.AddComponent(observability.ContainerHealth("container", a.Context))
	for _, c := range a.checkers {
		sh.AddComponent(c.CheckHealth(ctx))
	}
	return sh
}

// ReadyCheck verifies that the container is frozen and every health check is up.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Health(ctx).Components {
		if h.Status != observability.HealthStatusUp {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(unhealthy, ", "))
	}
	return nil
}

// Run executes the full lifecycle for long-running services:
// Telemetry → Configure → Freeze → OnStart hooks → ReadyCheck →
// OnReady hooks → Block on signal → OnStop hooks → Telemetry shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle. It
// shuts down when the task returns or the context is canceled, e.g. via
// SIGINT/SIGTERM.
//
// Example:
//
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    job := di.MustResolve[*Job](app.Context)
//	    return job.Run(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
	))
	a.Logger.Debug("Build info", version.Get().Fields())

	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry initialization failed: %w", err)
	}

	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if _, err := a.Freeze(ctx); err != nil {
		return fmt.Errorf("container validation failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.Fields(logger.FieldError, err.Error()))
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary(ctx)
	return nil
}

// initTelemetry installs OTLP trace and metric export when enabled.
func (a *App[C]) initTelemetry(ctx context.Context) error {
	obs := &a.Cfg.GetServiceConfig().Observability
	if !obs.Enabled {
		return nil
	}
	tp, err := observability.InitTracer(ctx, obs)
	if err != nil {
		return err
	}
	mp, err := observability.InitMeter(ctx, obs)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	a.tracerProvider, a.meterProvider = tp, mp
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Running configuration callbacks", logger.Fields("count", len(a.onConfigure)))
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// DisplaySummary writes the startup summary with the container's bindings
// and live health.
func (a *App[C]) DisplaySummary(ctx context.Context) {
	a.Summary.TrackContext(a.Context)
	a.Summary.TrackHealth(a.Health(ctx))
	a.Summary.Display()
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop runs the OnStop hooks and flushes telemetry within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error
	record := func(msg string, err error) {
		if err == nil {
			return
		}
		a.Logger.Error(msg, logger.Fields(logger.FieldError, err.Error()))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	record("OnStop hook error", runHooks(ctx, a.onStop))
	if a.tracerProvider != nil {
		record("Tracer shutdown error", a.tracerProvider.Shutdown(ctx))
	}
	if a.meterProvider != nil {
		record("Meter shutdown error", a.meterProvider.Shutdown(ctx))
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
