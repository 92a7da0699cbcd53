package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wulawulu/tdd-di/config"
	"github.com/wulawulu/tdd-di/di"
	"github.com/wulawulu/tdd-di/errors"
	"github.com/wulawulu/tdd-di/logger"
	"github.com/wulawulu/tdd-di/observability"
)

type testConfig struct {
	config.ServiceConfig
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "test",
		},
	}
}

func newTestApp(t *testing.T, opts ...Option) *App[*testConfig] {
	t.Helper()
	app, err := NewApp(newTestConfig("test-svc", "1.0.0"),
		append([]Option{WithLogger(logger.Nop()), WithSummaryOutput(nil)}, opts...)...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

type Greeter interface{ Greet() string }

type greeter struct{ store Store }

func (g *greeter) Greet() string { return "hello from " + g.store.Name() }

type Store interface{ Name() string }

type memStore struct{}

func (*memStore) Name() string { return "mem" }

func describeGreeter() *di.Describer[*greeter] {
	return di.Describe[*greeter]().Constructor(func(s Store) *greeter { return &greeter{store: s} }, di.Inject)
}

type staticCheck observability.Health

func (s staticCheck) CheckHealth(context.Context) observability.Health {
	return observability.Health(s)
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t)
	if app.Name != "test-svc" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Registry == nil || app.Logger == nil || app.Summary == nil {
		t.Fatal("expected registry, logger and summary")
	}
	if app.Context != nil {
		t.Error("expected no context before Freeze")
	}
	if app.Cfg.Observability.ServiceName != "test-svc" {
		t.Errorf("expected defaults applied to config, got %q", app.Cfg.Observability.ServiceName)
	}
	if app.gracefulTimeout != 15*time.Second {
		t.Errorf("expected default 15s timeout, got %v", app.gracefulTimeout)
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{ServiceConfig: config.ServiceConfig{Environment: "test"}}
	_, err := NewApp(cfg, WithLogger(logger.Nop()))
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestNewAppVersionFallback(t *testing.T) {
	app, err := NewApp(newTestConfig("svc", ""), WithLogger(logger.Nop()), WithSummaryOutput(nil))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if !strings.HasPrefix(app.Version, "dev") {
		t.Errorf("expected build version, got %q", app.Version)
	}
}

func TestNewAppWithOptions(t *testing.T) {
	app := newTestApp(t,
		WithGracefulTimeout(30*time.Second),
		WithRegistryOptions(di.WithScope("request", di.TransientScope)),
	)
	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", app.gracefulTimeout)
	}
	if err := di.Bind[Store](app.Registry, di.Describe[*memStore]().Constructor(func() *memStore { return &memStore{} }), di.Scope("request")); err != nil {
		t.Errorf("expected custom scope to be registered, got %v", err)
	}
}

func TestNewAppContainerConfig(t *testing.T) {
	cfg := newTestConfig("svc", "1.0.0")
	cfg.Container.PoolSize = 2
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithSummaryOutput(nil))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if err := di.Bind[Store](app.Registry, di.Describe[*memStore]().Constructor(func() *memStore { return &memStore{} }), di.Pooled); err != nil {
		t.Errorf("expected pooled scope from config, got %v", err)
	}
}

func TestRunTaskLifecycle(t *testing.T) {
	app := newTestApp(t)
	var order []string
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		order = append(order, "configure")
		if err := di.BindInstance[Store](a.Registry, &memStore{}); err != nil {
			return err
		}
		return di.Bind[Greeter](a.Registry, describeGreeter())
	})
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnReady(func(context.Context) error { order = append(order, "ready"); return nil })
	app.OnStop(func(context.Context) error { order = append(order, "stop"); return nil })

	var greeting string
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		g, err := di.Resolve[Greeter](app.Context)
		if err != nil {
			return err
		}
		greeting = g.Greet()
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if greeting != "hello from mem" {
		t.Errorf("unexpected greeting %q", greeting)
	}
	want := "configure,start,ready,task,stop"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestRunTaskMissingDependency(t *testing.T) {
	app := newTestApp(t)
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return di.Bind[Greeter](a.Registry, describeGreeter())
	})
	called := false
	err := app.RunTask(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.IsCode(err, errors.ErrCodeDependencyNotFound) {
		t.Fatalf("expected DEPENDENCY_NOT_FOUND, got %v", err)
	}
	if called {
		t.Error("expected task not to run")
	}
	if app.Context != nil {
		t.Error("expected no context after failed freeze")
	}
}

func TestRunTaskErrors(t *testing.T) {
	t.Run("configure", func(t *testing.T) {
		app := newTestApp(t)
		app.OnConfigure(func(context.Context, *App[*testConfig]) error { return fmt.Errorf("boom") })
		if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil || !strings.Contains(err.Error(), "configuration failed") {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("onStart", func(t *testing.T) {
		app := newTestApp(t)
		app.OnStart(func(context.Context) error { return fmt.Errorf("boom") })
		if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
			t.Errorf("expected onStart error, got %v", err)
		}
	})

	t.Run("task error wins over stop error", func(t *testing.T) {
		app := newTestApp(t)
		app.OnStop(func(context.Context) error { return fmt.Errorf("stop failed") })
		err := app.RunTask(context.Background(), func(context.Context) error { return fmt.Errorf("task failed") })
		if err == nil || err.Error() != "task failed" {
			t.Errorf("expected task error, got %v", err)
		}
	})

	t.Run("stop error", func(t *testing.T) {
		app := newTestApp(t)
		app.OnStop(func(context.Context) error { return fmt.Errorf("stop failed") })
		err := app.RunTask(context.Background(), func(context.Context) error { return nil })
		if err == nil || !strings.Contains(err.Error(), "stop failed") {
			t.Errorf("expected stop error, got %v", err)
		}
	})
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t)
	stopped := false
	app.OnStop(func(context.Context) error { stopped = true; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error { cancel(); return nil })

	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !stopped {
		t.Error("expected OnStop hook to run")
	}
}

func TestFreeze(t *testing.T) {
	app := newTestApp(t)
	if err := di.BindInstance[Store](app.Registry, &memStore{}); err != nil {
		t.Fatalf("BindInstance failed: %v", err)
	}
	c, err := app.Freeze(context.Background())
	if err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	if app.Context != c {
		t.Error("expected app.Context to be the frozen context")
	}
	if !c.Has(di.RefOf[Store]()) {
		t.Error("expected Store to be bound")
	}
}

func TestReadyCheck(t *testing.T) {
	tests := []struct {
		name    string
		freeze  bool
		checks  []observability.HealthChecker
		wantErr string
	}{
		{"not frozen", false, nil, "container=down(container not frozen)"},
		{"frozen", true, nil, ""},
		{"healthy checks", true, []observability.HealthChecker{
			staticCheck{Name: "db", Status: observability.HealthStatusUp},
		}, ""},
		{"down check", true, []observability.HealthChecker{
			staticCheck{Name: "db", Status: observability.HealthStatusUp},
			staticCheck{Name: "cache", Status: observability.HealthStatusDown, Message: "timeout"},
		}, "cache=down(timeout)"},
		{"degraded check", true, []observability.HealthChecker{
			staticCheck{Name: "svc", Status: observability.HealthStatusDegraded},
		}, "svc=degraded"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t)
			app.AddHealthCheck(tc.checks...)
			if tc.freeze {
				if _, err := app.Freeze(context.Background()); err != nil {
					t.Fatalf("Freeze failed: %v", err)
				}
			}
			err := app.ReadyCheck(context.Background())
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	app.AddHealthCheck(staticCheck{Name: "db", Status: observability.HealthStatusDegraded})
	if _, err := app.Freeze(context.Background()); err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}
	h := app.Health(context.Background())
	if h.Service != "test-svc" || h.Version != "1.0.0" {
		t.Errorf("unexpected service identity %q %q", h.Service, h.Version)
	}
	if len(h.Components) != 2 || h.Components[0].Name != "container" {
		t.Fatalf("expected container and db, got %v", h.Components)
	}
	if h.Status != observability.HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", h.Status)
	}
}

func TestHooks(t *testing.T) {
	var order []string
	hooks := []Hook{
		func(context.Context) error { order = append(order, "first"); return nil },
		func(context.Context) error { order = append(order, "second"); return fmt.Errorf("fail") },
		func(context.Context) error { order = append(order, "third"); return nil },
	}
	err := runHooks(context.Background(), hooks)
	if err == nil || !strings.Contains(err.Error(), "hook 1 failed") {
		t.Errorf("expected hook 1 error, got %v", err)
	}
	if got := strings.Join(order, ","); got != "first,second" {
		t.Errorf("expected execution to stop at the failing hook, got %s", got)
	}
}

func TestShutdown(t *testing.T) {
	app := newTestApp(t)
	called := false
	app.OnStop(func(ctx context.Context) error {
		called = true
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected stop hooks to run under the graceful timeout")
		}
		return nil
	})
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !called {
		t.Error("expected OnStop hook to run")
	}
}

func TestSummaryRender(t *testing.T) {
	app := newTestApp(t)
	if err := di.BindInstance[Store](app.Registry, &memStore{}); err != nil {
		t.Fatalf("BindInstance failed: %v", err)
	}
	if err := di.BindInstance[Store](app.Registry, &memStore{}, di.Named("backup")); err != nil {
		t.Fatalf("BindInstance failed: %v", err)
	}
	c, err := app.Freeze(context.Background())
	if err != nil {
		t.Fatalf("Freeze failed: %v", err)
	}

	var buf bytes.Buffer
	app.Summary = NewSummary(app.Name, app.Version, &buf)
	app.Summary.SetStartupDuration(1500 * time.Millisecond)
	app.DisplaySummary(context.Background())

	out := buf.String()
	for _, want := range []string{
		"test-svc v1.0.0 started in 1.50s",
		c.ID(),
		di.KeyOf[Store]().String(),
		di.KeyOf[Store](di.Named("backup")).String(),
		"container: up",
		"All components healthy (1)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, out)
		}
	}
}

func TestSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	s := NewSummary("svc", "1.0", &buf)
	s.TrackContext(nil)
	s.Display()
	if !strings.Contains(buf.String(), "No components bound") {
		t.Errorf("expected empty container notice, got:\n%s", buf.String())
	}
}
