package di

import (
	"reflect"
	"testing"

	"github.com/wulawulu/tdd-di/errors"
	"github.com/wulawulu/tdd-di/logger"
)

type Engine interface{ Name() string }

type engine struct{ name string }

func (e *engine) Name() string { return e.name }

func newEngine() *engine { return &engine{name: "v8"} }

type Radio interface{ Station() string }

type radio struct{}

func (*radio) Station() string { return "fm" }

type Car interface {
	Engine() Engine
	Radio() Radio
	Started() bool
}

type car struct {
	engine  Engine
	radio   Radio
	started bool
}

func newCar(e Engine) *car { return &car{engine: e} }

func (c *car) Engine() Engine { return c.engine }
func (c *car) Radio() Radio   { return c.radio }
func (c *car) Started() bool  { return c.started }

// Start reads the engine set by the constructor and the radio set as a field.
func (c *car) Start() { c.started = c.engine != nil && c.radio != nil }

func describeCar() *Describer[*car] {
	return Describe[*car]().
		Constructor(newCar, Inject).
		Field("radio", func(c *car, r Radio) { c.radio = r }, Inject).
		Method("Start", (*car).Start, Inject)
}

// lazy is a container the context does not know how to fill.
type lazy[T any] struct{}

func (lazy[T]) WrappedType() reflect.Type { return reflect.TypeFor[T]() }

func newTestRegistry(opts ...Option) *Registry {
	return NewRegistry(append([]Option{WithLogger(logger.Nop())}, opts...)...)
}

func freeze(t *testing.T, r *Registry) *Context {
	t.Helper()
	ctx, err := r.Context()
	if err != nil {
		t.Fatalf("Context failed: %v", err)
	}
	return ctx
}

func mustBind(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("bind failed: %v", err)
	}
}

func expectCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	if !errors.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

// holder takes its engine lazily, once through a field and once through a method.
type holder struct {
	fromField  Provider[Engine]
	fromMethod Provider[Engine]
}

func describeHolder() *Describer[*holder] {
	return Describe[*holder]().
		Constructor(func() *holder { return &holder{} }).
		Field("fromField", func(h *holder, p Provider[Engine]) { h.fromField = p }, Inject).
		Method("Install", func(h *holder, p Provider[Engine]) { h.fromMethod = p }, Inject)
}
