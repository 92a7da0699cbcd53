package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wulawulu/tdd-di/di"
	"github.com/wulawulu/tdd-di/errors"
)

// ResolutionObserver traces and measures every construction a di.Context
// performs. It is safe for concurrent use.
type ResolutionObserver struct {
	tracer  trace.Tracer
	metrics *Metrics
}

// NewResolutionObserver creates an observer. A nil tracer uses the global
// provider; nil metrics disables metric recording.
func NewResolutionObserver(tracer trace.Tracer, metrics *Metrics) *ResolutionObserver {
	if tracer == nil {
		tracer = Tracer(defaultTracerName)
	}
	return &ResolutionObserver{tracer: tracer, metrics: metrics}
}

// Resolve starts a span for key and returns the func that ends it.
func (o *ResolutionObserver) Resolve(key di.Key) func(error) {
	start := time.Now()
	ctx, span := o.tracer.Start(context.Background(), SpanResolve,
		trace.WithAttributes(attribute.String(AttrKey, key.String())),
	)
	return func(err error) {
		code := errorCode(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String(AttrErrorCode, code))
		}
		span.End()
		if o.metrics != nil {
			o.metrics.RecordResolve(ctx, key.String(), time.Since(start).Seconds(), code)
		}
	}
}

// Freeze validates r into a context inside a traced span.
func (o *ResolutionObserver) Freeze(ctx context.Context, r *di.Registry) (*di.Context, error) {
	ctx, span := o.tracer.Start(ctx, SpanFreeze)
	defer span.End()

	c, err := r.Context()
	if o.metrics != nil {
		o.metrics.RecordFreeze(ctx, errorCode(err))
	}
	if err != nil {
		SetSpanError(ctx, err)
		span.SetAttributes(attribute.String(AttrErrorCode, errorCode(err)))
		return nil, err
	}
	span.SetAttributes(
		attribute.String(AttrContextID, c.ID()),
		attribute.Int(AttrBindings, len(c.Keys())),
	)
	return c, nil
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return string(errors.Wrap(err).Code)
}
