package di

import (
	"fmt"
	"reflect"

	"github.com/wulawulu/tdd-di/errors"
	"github.com/wulawulu/tdd-di/logger"
)

// Context is a validated, frozen set of bindings. It is safe for concurrent
// use as long as the scopes in use are.
type Context struct {
	id       string
	bindings map[Key]Binding
	observer Observer
	log      *logger.Logger
}

// ID identifies the context in logs and telemetry.
func (c *Context) ID() string { return c.id }

// Get resolves ref. A deferred request yields a Provider handle without
// building anything. Requests through unsupported containers and unbound
// keys are absent.
func (c *Context) Get(ref Ref) (any, bool, error) {
	if ref.Wrapper == Unsupported {
		return nil, false, nil
	}
	b, ok := c.bindings[ref.Key]
	if !ok {
		return nil, false, nil
	}
	if ref.Deferred() {
		return c.provider(ref, b), true, nil
	}
	v, err := c.build(ref.Key, b)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Has reports whether ref would resolve to a component.
func (c *Context) Has(ref Ref) bool {
	if ref.Wrapper == Unsupported {
		return false
	}
	_, ok := c.bindings[ref.Key]
	return ok
}

// Keys returns every bound key in sorted order.
func (c *Context) Keys() []Key {
	return sortedKeys(c.bindings)
}

func (c *Context) build(k Key, b Binding) (any, error) {
	done := c.observer.Resolve(k)
	v, err := b.Get(c)
	done(err)
	if err != nil {
		c.log.Debug("construction failed", logger.Fields(
			logger.FieldKey, k.String(),
			logger.FieldContextID, c.id,
			logger.FieldError, err.Error(),
		))
	}
	return v, err
}

// provider returns a handle of the requested Provider type bound to b.
func (c *Context) provider(ref Ref, b Binding) any {
	get := func() (any, error) { return c.build(ref.Key, b) }

	ft := ref.Type
	if ft == nil || ft.Kind() != reflect.Func || ft.NumIn() != 0 || ft.NumOut() != 2 || ft.Out(1) != errorType {
		return Provider[any](get)
	}
	out := ft.Out(0)
	return reflect.MakeFunc(ft, func([]reflect.Value) []reflect.Value {
		v, err := get()
		if err == nil && !assignable(v, out) {
			err = errors.ConstructionFailed(ref.Key, fmt.Errorf("%T is not assignable to %s", v, out))
		}
		if err != nil {
			return []reflect.Value{reflect.Zero(out), reflect.ValueOf(&err).Elem()}
		}
		return []reflect.Value{valueOf(v, out), reflect.Zero(errorType)}
	}).Interface()
}
