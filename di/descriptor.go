package di

import "reflect"

// Descriptor is anything that can hand over a component type description.
type Descriptor interface {
	Descriptor() *Type
}

// Type describes how to build a concrete component: its construction points,
// injectable fields and methods, and the embedded supertype they extend.
//
// Most callers fill it in through Describe. The raw form exists for generated
// descriptions and for types assembled at runtime.
type Type struct {
	Of           reflect.Type
	Abstract     bool
	Scope        Scope
	Constructors []Constructor
	Fields       []Field
	Methods      []Method

	// Super is the description of the embedded supertype, if any. Upcast maps
	// an instance of Of to the value Super's setters and methods operate on.
	Super  *Type
	Upcast func(any) any

	err error
}

// Descriptor returns t itself.
func (t *Type) Descriptor() *Type { return t }

// Constructor is a construction point.
type Constructor struct {
	Inject bool
	Params []Param
	New    func(args []any) (any, error)
}

// Field is an assignable slot of the component.
type Field struct {
	Name     string
	Inject   bool
	ReadOnly bool
	Param    Param
	Set      func(instance, value any) error
}

// Method is a callable member of the component. TypeParams counts its own
// type parameters; marked methods must have none.
type Method struct {
	Name       string
	Inject     bool
	TypeParams int
	Params     []Param
	Invoke     func(instance any, args []any) error
}

// Param is one injected value: its declared type and the qualifiers written at
// the injection point.
type Param struct {
	Type       reflect.Type
	Qualifiers []Qualifier
}

func (t *Type) name() string {
	if t == nil || t.Of == nil {
		return "<nil>"
	}
	return t.Of.String()
}
