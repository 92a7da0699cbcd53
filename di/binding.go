package di

import (
	"fmt"
	"reflect"

	"github.com/wulawulu/tdd-di/errors"
)

// Resolver answers requests for components.
type Resolver interface {
	// Get returns the component for ref. ok is false when nothing is bound.
	Get(ref Ref) (value any, ok bool, err error)
}

// Binding produces instances for one key.
type Binding interface {
	Get(r Resolver) (any, error)
	// Dependencies reports the static edges of the binding without building anything.
	Dependencies() []Ref
}

type instanceBinding struct {
	value any
}

// Instance returns a binding that always yields v.
func Instance(v any) Binding {
	return &instanceBinding{value: v}
}

func (b *instanceBinding) Get(Resolver) (any, error) { return b.value, nil }

func (b *instanceBinding) Dependencies() []Ref { return nil }

type planBinding struct {
	plan *Plan
}

// FromPlan returns a binding that builds a fresh instance from p on every Get.
func FromPlan(p *Plan) Binding {
	return &planBinding{plan: p}
}

func (b *planBinding) Dependencies() []Ref { return b.plan.Dependencies() }

// Get builds an instance: construction point, then fields, then methods.
// Failures of the described functions, including panics, are reported as
// construction failures. Errors from dependencies pass through unchanged.
func (b *planBinding) Get(r Resolver) (any, error) {
	p := b.plan

	args, err := resolveAll(r, p.typ, p.ctorRefs)
	if err != nil {
		return nil, err
	}
	var instance any
	if err := guard(func() (err error) {
		instance, err = p.construct(args)
		return err
	}); err != nil {
		return nil, errors.ConstructionFailed(p.typ, err)
	}

	for _, f := range p.fields {
		v, err := resolve(r, p.typ, f.ref)
		if err != nil {
			return nil, err
		}
		if err := guard(func() error { return f.set(instance, v) }); err != nil {
			return nil, errors.ConstructionFailed(p.typ, fmt.Errorf("field %s: %w", f.name, err))
		}
	}

	for _, m := range p.methods {
		args, err := resolveAll(r, p.typ, m.refs)
		if err != nil {
			return nil, err
		}
		if err := guard(func() error { return m.invoke(instance, args) }); err != nil {
			return nil, errors.ConstructionFailed(p.typ, fmt.Errorf("method %s: %w", m.name, err))
		}
	}
	return instance, nil
}

func resolveAll(r Resolver, owner reflect.Type, refs []Ref) ([]any, error) {
	args := make([]any, len(refs))
	for i, ref := range refs {
		v, err := resolve(r, owner, ref)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func resolve(r Resolver, owner reflect.Type, ref Ref) (any, error) {
	v, ok, err := r.Get(ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.DependencyNotFound(owner, ref.Key)
	}
	return v, nil
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn()
}
