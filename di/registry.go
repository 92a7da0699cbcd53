package di

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/google/uuid"

	"github.com/wulawulu/tdd-di/errors"
	"github.com/wulawulu/tdd-di/logger"
)

// Registry collects bindings before they are frozen into a Context. It is not
// safe for concurrent use.
type Registry struct {
	bindings map[Key]Binding
	scopes   map[Scope]ScopeFactory
	cfg      Config
	log      *logger.Logger
	observer Observer
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for bind and freeze events.
func WithLogger(l *logger.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithObserver sets the observer handed to every context the registry freezes.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// WithScope installs a scope, replacing a built-in one of the same name.
func WithScope(s Scope, f ScopeFactory) Option {
	return func(r *Registry) { r.scopes[s] = f }
}

// WithConfig sets the configuration that selects the default scopes.
func WithConfig(cfg Config) Option {
	return func(r *Registry) { r.cfg = cfg }
}

// NewRegistry returns an empty registry with the transient and singleton
// scopes installed, plus the pooled scope when the config asks for it.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		bindings: make(map[Key]Binding),
		scopes:   make(map[Scope]ScopeFactory),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("di")
	}

	r.defaultScope(Transient, TransientScope)
	if r.cfg.UnguardedSingletons {
		r.defaultScope(Singleton, UnguardedSingletonScope)
	} else {
		r.defaultScope(Singleton, SingletonScope)
	}
	if r.cfg.PoolSize > 0 {
		r.defaultScope(Pooled, Pool(r.cfg.PoolSize))
	}
	return r
}

func (r *Registry) defaultScope(s Scope, f ScopeFactory) {
	if _, ok := r.scopes[s]; !ok {
		r.scopes[s] = f
	}
}

// RegisterScope installs a scope for later Bind calls.
func (r *Registry) RegisterScope(s Scope, f ScopeFactory) error {
	if s == "" || f == nil {
		return errors.Validation("scope name and factory are required")
	}
	r.scopes[s] = f
	r.log.Debug("scope registered", logger.Fields(logger.FieldScope, string(s)))
	return nil
}

// BindInstance binds v to typ under each given qualifier, or unqualified when
// none is given. Only qualifiers are accepted as annotations.
func (r *Registry) BindInstance(typ reflect.Type, v any, annotations ...Annotation) error {
	if typ == nil {
		return errors.IllegalComponent("<nil>", "no contract type")
	}
	if !assignable(v, typ) {
		return errors.IllegalComponent(typ, fmt.Sprintf("instance of %T is not assignable", v))
	}
	qualifiers, scope, err := splitAnnotations(typ, annotations)
	if err != nil {
		return err
	}
	if scope != "" {
		return errors.IllegalComponent(typ, fmt.Sprintf("instances cannot be scoped, got %s", scope))
	}
	r.put(typ, qualifiers, Instance(v), "instance")
	return nil
}

// Bind binds the described implementation to typ. The scope given here wins
// over the scope declared on the description; without either the binding is
// transient.
func (r *Registry) Bind(typ reflect.Type, impl Descriptor, annotations ...Annotation) error {
	if typ == nil {
		return errors.IllegalComponent("<nil>", "no contract type")
	}
	var t *Type
	if impl != nil {
		t = impl.Descriptor()
	}
	plan, err := NewPlan(t)
	if err != nil {
		return err
	}
	if !plan.Type().AssignableTo(typ) {
		return errors.IllegalComponent(plan.Type(), fmt.Sprintf("does not implement %s", typ))
	}
	qualifiers, scope, err := splitAnnotations(typ, annotations)
	if err != nil {
		return err
	}
	if scope == "" {
		scope = plan.Scope()
	}
	if scope == "" {
		scope = Transient
	}
	factory, ok := r.scopes[scope]
	if !ok {
		return errors.IllegalComponent(plan.Type(), fmt.Sprintf("scope %s is not registered", scope))
	}
	r.put(typ, qualifiers, factory(FromPlan(plan)), string(scope))
	return nil
}

// Context validates the current bindings and freezes them into a Context.
// Later changes to the registry do not affect the returned context.
func (r *Registry) Context() (*Context, error) {
	snapshot := maps.Clone(r.bindings)
	if err := validate(snapshot); err != nil {
		r.log.WithError(err).Error("context validation failed", logger.Fields(logger.FieldBindings, len(snapshot)))
		return nil, err
	}
	c := &Context{
		id:       uuid.NewString(),
		bindings: snapshot,
		observer: r.observer,
		log:      r.log,
	}
	r.log.Info("context ready", logger.Fields(logger.FieldContextID, c.id, logger.FieldBindings, len(snapshot)))
	return c, nil
}

func (r *Registry) put(typ reflect.Type, qualifiers []Qualifier, b Binding, scope string) {
	keys := []Key{{Type: typ}}
	if len(qualifiers) > 0 {
		keys = keys[:0]
		for _, q := range qualifiers {
			keys = append(keys, Key{Type: typ, Qualifier: q})
		}
	}
	for _, k := range keys {
		if _, exists := r.bindings[k]; exists {
			r.log.Warn("replacing binding", logger.Fields(logger.FieldKey, k.String()))
		}
		r.bindings[k] = b
		r.log.Debug("component bound", logger.Fields(logger.FieldKey, k.String(), logger.FieldScope, scope))
	}
}

// splitAnnotations accepts qualifiers and at most one scope.
func splitAnnotations(typ reflect.Type, annotations []Annotation) ([]Qualifier, Scope, error) {
	var (
		qualifiers []Qualifier
		scope      Scope
	)
	for _, a := range annotations {
		switch v := a.(type) {
		case Qualifier:
			if v.IsZero() {
				return nil, "", errors.IllegalComponent(typ, "empty qualifier")
			}
			qualifiers = append(qualifiers, v)
		case Scope:
			if scope != "" {
				return nil, "", errors.IllegalComponent(typ, fmt.Sprintf("more than one scope: %s and %s", scope, v))
			}
			scope = v
		default:
			return nil, "", errors.IllegalComponent(typ, fmt.Sprintf("annotation %q is not allowed in a bind call", annotationName(a)))
		}
	}
	return qualifiers, scope, nil
}

// BindInstance binds v to T. See Registry.BindInstance.
func BindInstance[T any](r *Registry, v T, annotations ...Annotation) error {
	return r.BindInstance(reflect.TypeFor[T](), v, annotations...)
}

// Bind binds the described implementation to T. See Registry.Bind.
func Bind[T any](r *Registry, impl Descriptor, annotations ...Annotation) error {
	return r.Bind(reflect.TypeFor[T](), impl, annotations...)
}
