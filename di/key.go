package di

import (
	"fmt"
	"reflect"
)

// Annotation is a marker attached to a bind call, a described type or one of
// its injection points.
type Annotation interface {
	AnnotationType() string
}

// marker is a flag-style annotation with no value.
type marker string

func (m marker) AnnotationType() string { return string(m) }

const (
	// Inject marks a constructor, field or method as an injection point.
	Inject marker = "inject"
	// ReadOnly marks a field as assign-once. Injected fields must not carry it.
	ReadOnly marker = "readonly"
)

// Qualifier distinguishes several bindings of the same type. The zero value
// means "unqualified".
type Qualifier struct {
	kind  string
	value string
}

// Named returns the standard value-carrying qualifier.
func Named(value string) Qualifier {
	return Qualifier{kind: "named", value: value}
}

// NewQualifier returns a value-less qualifier identified by kind alone.
func NewQualifier(kind string) Qualifier {
	return Qualifier{kind: kind}
}

func (q Qualifier) AnnotationType() string { return "qualifier" }

// IsZero reports whether q is the unqualified marker.
func (q Qualifier) IsZero() bool { return q == Qualifier{} }

func (q Qualifier) String() string {
	if q.value == "" {
		return "@" + q.kind
	}
	return fmt.Sprintf("@%s(%q)", q.kind, q.value)
}

// Scope names an instance lifetime policy. Scopes other than the built-in ones
// must be registered with WithScope or Registry.RegisterScope before use.
type Scope string

const (
	Transient Scope = "transient"
	Singleton Scope = "singleton"
	Pooled    Scope = "pooled"
)

func (s Scope) AnnotationType() string { return "scope" }

// argAnnotation targets the annotations at one parameter of a constructor or method.
type argAnnotation struct {
	index       int
	annotations []Annotation
}

func (a argAnnotation) AnnotationType() string { return "arg" }

// Arg attaches annotations, typically a qualifier, to parameter i of a
// described constructor or method. For methods, i does not count the receiver.
func Arg(i int, annotations ...Annotation) Annotation {
	return argAnnotation{index: i, annotations: annotations}
}

// Key identifies a bindable component: a contract type plus an optional qualifier.
type Key struct {
	Type      reflect.Type
	Qualifier Qualifier
}

// KeyOf returns the key for T, qualified by q if one is given.
func KeyOf[T any](q ...Qualifier) Key {
	k := Key{Type: reflect.TypeFor[T]()}
	if len(q) > 0 {
		k.Qualifier = q[0]
	}
	return k
}

// With returns a copy of k carrying qualifier q.
func (k Key) With(q Qualifier) Key {
	k.Qualifier = q
	return k
}

func (k Key) String() string {
	name := "<nil>"
	if k.Type != nil {
		name = k.Type.String()
	}
	if !k.Qualifier.IsZero() {
		name += k.Qualifier.String()
	}
	return name
}

// annotationName names a in error messages.
func annotationName(a Annotation) string {
	if a == nil {
		return "<nil>"
	}
	return a.AnnotationType()
}

func hasAnnotation(annotations []Annotation, want Annotation) bool {
	for _, a := range annotations {
		if a == want {
			return true
		}
	}
	return false
}

func qualifiersOf(annotations []Annotation) []Qualifier {
	var qs []Qualifier
	for _, a := range annotations {
		if q, ok := a.(Qualifier); ok {
			qs = append(qs, q)
		}
	}
	return qs
}
