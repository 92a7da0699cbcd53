package di

import (
	"fmt"
	"reflect"
)

// Describer builds the Type description of T from ordinary Go functions.
//
//	car := di.Describe[*Car](di.Singleton).
//		Constructor(NewCar, di.Inject, di.Arg(0, di.Named("v8"))).
//		Field("Radio", func(c *Car, r Radio) { c.Radio = r }, di.Inject).
//		Method("Start", (*Car).Start, di.Inject)
//
// Shape mistakes (a constructor that does not return T, a setter for another
// type) are remembered and reported as an illegal component when the
// description is bound.
type Describer[T any] struct {
	t *Type
}

// Describe starts a description of T. Annotations may set its default scope.
func Describe[T any](annotations ...Annotation) *Describer[T] {
	d := &Describer[T]{t: &Type{Of: reflect.TypeFor[T]()}}
	return d.Annotate(annotations...)
}

// Descriptor returns the description built so far.
func (d *Describer[T]) Descriptor() *Type { return d.t }

// Annotate attaches type-level annotations. Only a scope is accepted.
func (d *Describer[T]) Annotate(annotations ...Annotation) *Describer[T] {
	for _, a := range annotations {
		s, ok := a.(Scope)
		if !ok {
			d.fail("annotation %q cannot be attached to a type", annotationName(a))
			continue
		}
		if d.t.Scope != "" && d.t.Scope != s {
			d.fail("more than one scope: %s and %s", d.t.Scope, s)
			continue
		}
		d.t.Scope = s
	}
	return d
}

// Abstract marks T as not instantiable.
func (d *Describer[T]) Abstract() *Describer[T] {
	d.t.Abstract = true
	return d
}

// Constructor adds a construction point. fn must return T, or T and an error.
// Its parameters are the injected dependencies.
func (d *Describer[T]) Constructor(fn any, annotations ...Annotation) *Describer[T] {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		d.fail("constructor must be a function, got %T", fn)
		return d
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		d.fail("constructor %s is variadic", ft)
		return d
	}
	if !d.returns(ft) {
		d.fail("constructor %s must return %s or (%s, error)", ft, d.t.Of, d.t.Of)
		return d
	}
	inject, params := d.params("constructor", ft, 0, annotations)
	d.t.Constructors = append(d.t.Constructors, Constructor{
		Inject: inject,
		Params: params,
		New: func(args []any) (any, error) {
			out := fv.Call(inputs(ft, 0, args))
			if len(out) == 2 && !out[1].IsNil() {
				return nil, out[1].Interface().(error)
			}
			return out[0].Interface(), nil
		},
	})
	return d
}

// Field adds an assignable slot. setter must look like func(T, V) or
// func(T, V) error; V is the injected type.
func (d *Describer[T]) Field(name string, setter any, annotations ...Annotation) *Describer[T] {
	fv := reflect.ValueOf(setter)
	if fv.Kind() != reflect.Func {
		d.fail("setter for field %s must be a function, got %T", name, setter)
		return d
	}
	ft := fv.Type()
	if ft.NumIn() != 2 || ft.IsVariadic() || !d.receives(ft) || !returnsError(ft) {
		d.fail("setter for field %s must be func(%s, V) [error], got %s", name, d.t.Of, ft)
		return d
	}
	field := Field{
		Name:  name,
		Param: Param{Type: ft.In(1)},
		Set: func(instance, value any) error {
			out := fv.Call([]reflect.Value{valueOf(instance, ft.In(0)), valueOf(value, ft.In(1))})
			return errorResult(out)
		},
	}
	for _, a := range annotations {
		switch v := a.(type) {
		case marker:
			field.Inject = field.Inject || v == Inject
			field.ReadOnly = field.ReadOnly || v == ReadOnly
		case Qualifier:
			field.Param.Qualifiers = append(field.Param.Qualifiers, v)
		default:
			d.fail("annotation %q cannot be attached to field %s", annotationName(a), name)
		}
	}
	d.t.Fields = append(d.t.Fields, field)
	return d
}

// Method adds a callable member. fn takes the receiver first, then the
// injected parameters, and returns nothing or an error. Method expressions
// such as (*Car).Start fit directly.
func (d *Describer[T]) Method(name string, fn any, annotations ...Annotation) *Describer[T] {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		d.fail("method %s must be a function, got %T", name, fn)
		return d
	}
	ft := fv.Type()
	if ft.NumIn() < 1 || ft.IsVariadic() || !d.receives(ft) || !returnsError(ft) {
		d.fail("method %s must be func(%s, ...) [error], got %s", name, d.t.Of, ft)
		return d
	}
	inject, params := d.params("method "+name, ft, 1, annotations)
	d.t.Methods = append(d.t.Methods, Method{
		Name:   name,
		Inject: inject,
		Params: params,
		Invoke: func(instance any, args []any) error {
			in := append([]reflect.Value{valueOf(instance, ft.In(0))}, inputs(ft, 1, args)...)
			return errorResult(fv.Call(in))
		},
	})
	return d
}

// Extends records that T embeds the supertype described by super. upcast
// returns the embedded value that super's fields and methods operate on.
func (d *Describer[T]) Extends(super Descriptor, upcast func(T) any) *Describer[T] {
	if super == nil || upcast == nil {
		d.fail("extends requires a supertype and an upcast")
		return d
	}
	of := d.t.Of
	d.t.Super = super.Descriptor()
	d.t.Upcast = func(instance any) any {
		return upcast(valueOf(instance, of).Interface().(T))
	}
	return d
}

func (d *Describer[T]) fail(format string, args ...any) {
	if d.t.err == nil {
		d.t.err = fmt.Errorf(format, args...)
	}
}

func (d *Describer[T]) returns(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 1:
		return ft.Out(0).AssignableTo(d.t.Of)
	case 2:
		return ft.Out(0).AssignableTo(d.t.Of) && ft.Out(1) == errorType
	}
	return false
}

func (d *Describer[T]) receives(ft reflect.Type) bool {
	return d.t.Of.AssignableTo(ft.In(0))
}

// params reads the parameters of ft from index offset on, applying Inject and
// Arg annotations.
func (d *Describer[T]) params(what string, ft reflect.Type, offset int, annotations []Annotation) (bool, []Param) {
	inject := false
	params := make([]Param, ft.NumIn()-offset)
	for i := range params {
		params[i].Type = ft.In(i + offset)
	}
	for _, a := range annotations {
		switch v := a.(type) {
		case marker:
			if v != Inject {
				d.fail("annotation %q cannot be attached to %s", v, what)
				continue
			}
			inject = true
		case argAnnotation:
			if v.index < 0 || v.index >= len(params) {
				d.fail("%s has no parameter %d", what, v.index)
				continue
			}
			for _, pa := range v.annotations {
				q, ok := pa.(Qualifier)
				if !ok {
					d.fail("annotation %q cannot be attached to parameter %d of %s", annotationName(pa), v.index, what)
					continue
				}
				params[v.index].Qualifiers = append(params[v.index].Qualifiers, q)
			}
		default:
			d.fail("annotation %q cannot be attached to %s", annotationName(a), what)
		}
	}
	return inject, params
}

func returnsError(ft reflect.Type) bool {
	switch ft.NumOut() {
	case 0:
		return true
	case 1:
		return ft.Out(0) == errorType
	}
	return false
}

func inputs(ft reflect.Type, offset int, args []any) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = valueOf(a, ft.In(i+offset))
	}
	return in
}

func errorResult(out []reflect.Value) error {
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}
