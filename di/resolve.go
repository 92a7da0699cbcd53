package di

import (
	"fmt"

	"github.com/wulawulu/tdd-di/errors"
)

// Lookup resolves T, qualified by q if one is given. ok is false when nothing
// is bound. Asking for Provider[X] returns a deferred handle to X.
func Lookup[T any](r Resolver, q ...Qualifier) (T, bool, error) {
	var zero T
	ref := RefOf[T](q...)
	v, ok, err := r.Get(ref)
	if err != nil || !ok {
		return zero, false, err
	}
	if v == nil {
		return zero, true, nil
	}
	result, ok := v.(T)
	if !ok {
		return zero, false, errors.Internal(fmt.Errorf("component %s is %T, expected %s", ref, v, ref.Type))
	}
	return result, true, nil
}

// Resolve resolves a component with type safety, returns error on failure.
// An unbound component is reported as NOT_FOUND.
//
// Example:
//
//	car, err := di.Resolve[Car](ctx)
//	if err != nil {
//	    return fmt.Errorf("failed to get car: %w", err)
//	}
func Resolve[T any](r Resolver, q ...Qualifier) (T, error) {
	v, ok, err := Lookup[T](r, q...)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, errors.NotFound("component", RefOf[T](q...).String())
	}
	return v, nil
}

// TryResolve resolves a component, returns zero value and false if it is not
// bound or cannot be built.
//
// Example:
//
//	if radio, ok := di.TryResolve[Radio](ctx); ok {
//	    radio.Play()
//	}
func TryResolve[T any](r Resolver, q ...Qualifier) (T, bool) {
	v, ok, err := Lookup[T](r, q...)
	return v, ok && err == nil
}

// MustResolve resolves a component with type safety, panics on error.
func MustResolve[T any](r Resolver, q ...Qualifier) T {
	v, err := Resolve[T](r, q...)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", RefOf[T](q...), err))
	}
	return v
}
