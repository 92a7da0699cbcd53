package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/wulawulu/tdd-di/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the instruments recorded for component resolution.
type Metrics struct {
	resolveTotal    metric.Int64Counter
	resolveErrors   metric.Int64Counter
	resolveDuration metric.Float64Histogram
	contextsFrozen  metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	resolveTotal, err := meter.Int64Counter("di.resolve.total",
		metric.WithDescription("Total number of component constructions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.total counter: %w", err)
	}

	resolveErrors, err := meter.Int64Counter("di.resolve.errors",
		metric.WithDescription("Component constructions that failed, by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.errors counter: %w", err)
	}

	resolveDuration, err := meter.Float64Histogram("di.resolve.duration",
		metric.WithDescription("Duration of component constructions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.duration histogram: %w", err)
	}

	contextsFrozen, err := meter.Int64Counter("di.context.frozen",
		metric.WithDescription("Contexts frozen, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.context.frozen counter: %w", err)
	}

	return &Metrics{
		resolveTotal:    resolveTotal,
		resolveErrors:   resolveErrors,
		resolveDuration: resolveDuration,
		contextsFrozen:  contextsFrozen,
	}, nil
}

// RecordResolve records one construction of key. errCode is empty on success.
func (m *Metrics) RecordResolve(ctx context.Context, key string, seconds float64, errCode string) {
	outcome := "ok"
	if errCode != "" {
		outcome = "error"
	}
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrKey, key),
		attribute.String(AttrOutcome, outcome),
	))
	m.resolveDuration.Record(ctx, seconds, metric.WithAttributes(attribute.String(AttrKey, key)))
	if errCode != "" {
		m.resolveErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String(AttrKey, key),
			attribute.String(AttrErrorCode, errCode),
		))
	}
}

// RecordFreeze records the outcome of freezing a registry.
func (m *Metrics) RecordFreeze(ctx context.Context, errCode string) {
	outcome := "ok"
	if errCode != "" {
		outcome = "error"
	}
	m.contextsFrozen.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.String(AttrErrorCode, errCode),
	))
}
