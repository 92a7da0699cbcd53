package di

import (
	"reflect"
)

// Wrapper classifies how a requested type relates to the component it names.
type Wrapper uint8

const (
	// Direct requests the component itself.
	Direct Wrapper = iota
	// Deferred requests a Provider handle that constructs on each call.
	Deferred
	// Unsupported requests the component through a container type the
	// context does not know how to fill.
	Unsupported
)

func (w Wrapper) String() string {
	switch w {
	case Direct:
		return "direct"
	case Deferred:
		return "deferred"
	default:
		return "unsupported"
	}
}

// Container is implemented by wrapper types that hold another component type.
// Provider is the only container the context resolves; requests for any other
// container are answered as absent.
type Container interface {
	WrappedType() reflect.Type
}

// Provider is a deferred handle to a component. Each call runs the bound
// component's scope, so a transient binding yields a fresh instance per call.
type Provider[T any] func() (T, error)

// WrappedType returns the type produced by the provider.
func (Provider[T]) WrappedType() reflect.Type { return reflect.TypeFor[T]() }

func (Provider[T]) deferred() {}

// Ref is a request for a component: the requested type as written at the
// injection point, the key it resolves to, and the wrapper between them.
type Ref struct {
	Type    reflect.Type
	Key     Key
	Wrapper Wrapper
}

// RefOf returns the request for T, qualified by q if one is given.
func RefOf[T any](q ...Qualifier) Ref {
	var qualifier Qualifier
	if len(q) > 0 {
		qualifier = q[0]
	}
	return NewRef(reflect.TypeFor[T](), qualifier)
}

// NewRef classifies t and returns the matching request.
func NewRef(t reflect.Type, q Qualifier) Ref {
	ref := Ref{Type: t, Key: Key{Type: t, Qualifier: q}}
	if wrapped, ok := wrappedType(t); ok {
		ref.Key.Type = wrapped
		ref.Wrapper = Unsupported
		if t.Implements(deferredType) {
			ref.Wrapper = Deferred
		}
	}
	return ref
}

// Deferred reports whether the edge is resolved lazily. Cycles through
// deferred edges are legal.
func (r Ref) Deferred() bool { return r.Wrapper == Deferred }

// With returns a copy of r whose key carries qualifier q.
func (r Ref) With(q Qualifier) Ref {
	r.Key.Qualifier = q
	return r
}

func (r Ref) String() string {
	if r.Wrapper == Direct || r.Type == nil {
		return r.Key.String()
	}
	name := r.Type.String()
	if !r.Key.Qualifier.IsZero() {
		name += r.Key.Qualifier.String()
	}
	return name
}

var (
	containerType = reflect.TypeFor[Container]()
	deferredType  = reflect.TypeFor[interface{ deferred() }]()
	errorType     = reflect.TypeFor[error]()
)

// wrappedType reports the type held by t when t is a value container. Only
// non-pointer, non-interface containers qualify, so the zero value can be
// asked for its wrapped type without dereferencing nil.
func wrappedType(t reflect.Type) (reflect.Type, bool) {
	if t == nil || !t.Implements(containerType) {
		return nil, false
	}
	if k := t.Kind(); k == reflect.Pointer || k == reflect.Interface {
		return nil, false
	}
	wrapped := reflect.Zero(t).Interface().(Container).WrappedType()
	return wrapped, wrapped != nil
}

// valueOf returns v as a reflect.Value of type t, using the zero value for nil.
func valueOf(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != t && rv.Type().AssignableTo(t) {
		converted := reflect.New(t).Elem()
		converted.Set(rv)
		return converted
	}
	return rv
}

// assignable reports whether v can be stored in a slot of type t.
func assignable(v any, t reflect.Type) bool {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return true
		}
		return false
	}
	return reflect.TypeOf(v).AssignableTo(t)
}
