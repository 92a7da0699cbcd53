package di

import (
	"fmt"
	"reflect"

	"github.com/wulawulu/tdd-di/errors"
)

// Plan is the validated recipe for building instances of one concrete type.
// It is immutable once built.
type Plan struct {
	typ       reflect.Type
	scope     Scope
	construct func(args []any) (any, error)
	ctorRefs  []Ref
	fields    []fieldSlot
	methods   []postMethod
}

type fieldSlot struct {
	name string
	ref  Ref
	set  func(instance, value any) error
}

type postMethod struct {
	name   string
	refs   []Ref
	invoke func(instance any, args []any) error
}

type methodSig struct {
	name   string
	params []reflect.Type
}

func (s methodSig) equal(o methodSig) bool {
	if s.name != o.name || len(s.params) != len(o.params) {
		return false
	}
	for i := range s.params {
		if s.params[i] != o.params[i] {
			return false
		}
	}
	return true
}

// NewPlan validates the description of a concrete type and derives how to
// build it. Every problem is reported as an illegal component.
func NewPlan(t *Type) (*Plan, error) {
	if t == nil || t.Of == nil {
		return nil, errors.IllegalComponent(t.name(), "no type described")
	}
	if err := checkChain(t); err != nil {
		return nil, err
	}
	if t.Abstract || t.Of.Kind() == reflect.Interface {
		return nil, errors.IllegalComponent(t.Of, "abstract type cannot be instantiated")
	}

	ctor, err := constructionPoint(t)
	if err != nil {
		return nil, err
	}
	p := &Plan{typ: t.Of, scope: t.Scope, construct: ctor.New}
	if p.ctorRefs, err = refsOf(t.Of, "constructor", ctor.Params); err != nil {
		return nil, err
	}
	if p.fields, err = injectedFields(t); err != nil {
		return nil, err
	}
	if p.methods, err = injectedMethods(t); err != nil {
		return nil, err
	}
	return p, nil
}

// Type returns the concrete type the plan builds.
func (p *Plan) Type() reflect.Type { return p.typ }

// Scope returns the scope declared on the described type, if any.
func (p *Plan) Scope() Scope { return p.scope }

// Dependencies lists every injection point: constructor parameters, then
// fields, then method parameters in invocation order.
func (p *Plan) Dependencies() []Ref {
	deps := append([]Ref(nil), p.ctorRefs...)
	for _, f := range p.fields {
		deps = append(deps, f.ref)
	}
	for _, m := range p.methods {
		deps = append(deps, m.refs...)
	}
	return deps
}

func checkChain(t *Type) error {
	for level := t; level != nil; level = level.Super {
		if level.err != nil {
			return errors.IllegalComponent(t.name(), level.err.Error())
		}
		if level.Of == nil {
			return errors.IllegalComponent(t.name(), "supertype has no type")
		}
		if level.Super != nil && level.Upcast == nil {
			return errors.IllegalComponent(t.name(), fmt.Sprintf("%s extends %s without an upcast", level.Of, level.Super.name()))
		}
	}
	return nil
}

func constructionPoint(t *Type) (Constructor, error) {
	var marked []Constructor
	for _, c := range t.Constructors {
		if c.Inject {
			marked = append(marked, c)
		}
	}
	var chosen Constructor
	switch {
	case len(marked) > 1:
		return chosen, errors.IllegalComponent(t.Of, fmt.Sprintf("ambiguous construction: %d constructors marked for injection", len(marked)))
	case len(marked) == 1:
		chosen = marked[0]
	default:
		found := false
		for _, c := range t.Constructors {
			if len(c.Params) == 0 {
				chosen, found = c, true
				break
			}
		}
		if !found {
			return chosen, errors.IllegalComponent(t.Of, "no usable construction point")
		}
	}
	if chosen.New == nil {
		return chosen, errors.IllegalComponent(t.Of, "construction point has no function")
	}
	return chosen, nil
}

// injectedFields collects marked fields from the most-derived level up to the
// root. Supertype setters receive the upcast view of the instance.
func injectedFields(t *Type) ([]fieldSlot, error) {
	var slots []fieldSlot
	view := func(instance any) any { return instance }
	for level := t; level != nil; level = level.Super {
		current := view
		for _, f := range level.Fields {
			if !f.Inject {
				continue
			}
			if f.ReadOnly {
				return nil, errors.IllegalComponent(t.Of, fmt.Sprintf("field %s is read-only and cannot be injected", f.Name))
			}
			if f.Set == nil {
				return nil, errors.IllegalComponent(t.Of, fmt.Sprintf("field %s has no setter", f.Name))
			}
			ref, err := refOf(t.Of, "field "+f.Name, f.Param)
			if err != nil {
				return nil, err
			}
			set := f.Set
			slots = append(slots, fieldSlot{
				name: f.Name,
				ref:  ref,
				set:  func(instance, value any) error { return set(current(instance), value) },
			})
		}
		view = upcastThrough(current, level)
	}
	return slots, nil
}

// injectedMethods collects marked methods level by level. A method whose
// signature is declared again at a more-derived level, marked or not, is
// overridden and skipped. The result runs base-level methods first.
func injectedMethods(t *Type) ([]postMethod, error) {
	var (
		levels [][]postMethod
		seen   []methodSig
	)
	view := func(instance any) any { return instance }
	for level := t; level != nil; level = level.Super {
		current := view
		var collected []postMethod
		for _, m := range level.Methods {
			sig := signatureOf(m)
			if overridden(seen, sig) || !m.Inject {
				continue
			}
			if m.TypeParams > 0 {
				return nil, errors.IllegalComponent(t.Of, fmt.Sprintf("method %s declares type parameters", m.Name))
			}
			if m.Invoke == nil {
				return nil, errors.IllegalComponent(t.Of, fmt.Sprintf("method %s has no function", m.Name))
			}
			refs, err := refsOf(t.Of, "method "+m.Name, m.Params)
			if err != nil {
				return nil, err
			}
			invoke := m.Invoke
			collected = append(collected, postMethod{
				name:   m.Name,
				refs:   refs,
				invoke: func(instance any, args []any) error { return invoke(current(instance), args) },
			})
		}
		for _, m := range level.Methods {
			seen = append(seen, signatureOf(m))
		}
		levels = append(levels, collected)
		view = upcastThrough(current, level)
	}

	var methods []postMethod
	for i := len(levels) - 1; i >= 0; i-- {
		methods = append(methods, levels[i]...)
	}
	return methods, nil
}

func upcastThrough(view func(any) any, level *Type) func(any) any {
	if level.Super == nil {
		return view
	}
	up := level.Upcast
	return func(instance any) any { return up(view(instance)) }
}

func signatureOf(m Method) methodSig {
	sig := methodSig{name: m.Name, params: make([]reflect.Type, len(m.Params))}
	for i, p := range m.Params {
		sig.params[i] = p.Type
	}
	return sig
}

func overridden(seen []methodSig, sig methodSig) bool {
	for _, s := range seen {
		if s.equal(sig) {
			return true
		}
	}
	return false
}

func refsOf(owner reflect.Type, point string, params []Param) ([]Ref, error) {
	refs := make([]Ref, len(params))
	for i, p := range params {
		ref, err := refOf(owner, fmt.Sprintf("%s parameter %d", point, i), p)
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}
	return refs, nil
}

// refOf turns one injection point into a request. At most one qualifier may be
// present and the requested type may not be an unsupported container.
func refOf(owner reflect.Type, point string, p Param) (Ref, error) {
	if p.Type == nil {
		return Ref{}, errors.IllegalComponent(owner, point+" has no type")
	}
	if len(p.Qualifiers) > 1 {
		return Ref{}, errors.IllegalComponent(owner, fmt.Sprintf("%s has %d qualifiers", point, len(p.Qualifiers)))
	}
	var q Qualifier
	if len(p.Qualifiers) == 1 {
		q = p.Qualifiers[0]
	}
	ref := NewRef(p.Type, q)
	if ref.Wrapper == Unsupported {
		return Ref{}, errors.IllegalComponent(owner, fmt.Sprintf("%s requests unsupported container %s", point, p.Type))
	}
	return ref, nil
}
