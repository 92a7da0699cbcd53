package di

import (
	"reflect"
	"testing"

	"github.com/wulawulu/tdd-di/errors"
)

func TestNewPlan_DependencyOrder(t *testing.T) {
	p, err := NewPlan(describeCar().Descriptor())
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	deps := p.Dependencies()
	want := []Key{KeyOf[Engine](), KeyOf[Radio]()}
	if len(deps) != len(want) {
		t.Fatalf("expected %d dependencies, got %v", len(want), deps)
	}
	for i, k := range want {
		if deps[i].Key != k {
			t.Errorf("dependency %d: expected %s, got %s", i, k, deps[i].Key)
		}
	}
	if p.Type() != reflect.TypeFor[*car]() {
		t.Errorf("expected *car, got %s", p.Type())
	}
}

func TestNewPlan_ZeroArgConstructorWithoutMark(t *testing.T) {
	p, err := NewPlan(Describe[*engine]().Constructor(newEngine).Descriptor())
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	if len(p.Dependencies()) != 0 {
		t.Errorf("expected no dependencies, got %v", p.Dependencies())
	}
}

func TestNewPlan_MethodParamsAndQualifiers(t *testing.T) {
	d := Describe[*car]().
		Constructor(func() *car { return &car{} }).
		Method("Tune", func(c *car, e Engine, r Radio) {}, Inject, Arg(0, Named("v6")))
	p, err := NewPlan(d.Descriptor())
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	deps := p.Dependencies()
	if len(deps) != 2 {
		t.Fatalf("expected 2 dependencies, got %v", deps)
	}
	if deps[0].Key != KeyOf[Engine](Named("v6")) {
		t.Errorf("expected qualified engine, got %s", deps[0].Key)
	}
	if deps[1].Key != KeyOf[Radio]() {
		t.Errorf("expected radio, got %s", deps[1].Key)
	}
}

func TestNewPlan_DeferredParam(t *testing.T) {
	d := Describe[*car]().Constructor(func(p Provider[Engine]) *car { return &car{} }, Inject)
	p, err := NewPlan(d.Descriptor())
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	dep := p.Dependencies()[0]
	if !dep.Deferred() {
		t.Error("expected deferred edge")
	}
	if dep.Key != KeyOf[Engine]() {
		t.Errorf("expected key Engine, got %s", dep.Key)
	}
}

func TestNewPlan_DeferredFieldAndMethodParam(t *testing.T) {
	p, err := NewPlan(describeHolder().Descriptor())
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	deps := p.Dependencies()
	if len(deps) != 2 {
		t.Fatalf("expected field and method dependencies, got %v", deps)
	}
	for i, dep := range deps {
		if !dep.Deferred() {
			t.Errorf("dependency %d: expected deferred edge", i)
		}
		if dep.Key != KeyOf[Engine]() {
			t.Errorf("dependency %d: expected key Engine, got %s", i, dep.Key)
		}
		if dep.Type != reflect.TypeFor[Provider[Engine]]() {
			t.Errorf("dependency %d: expected requested type Provider[Engine], got %v", i, dep.Type)
		}
	}
}

func TestNewPlan_IllegalComponents(t *testing.T) {
	tests := []struct {
		name string
		typ  *Type
	}{
		{"nil type", nil},
		{"abstract", Describe[*engine]().Constructor(newEngine).Abstract().Descriptor()},
		{"interface", Describe[Engine]().Descriptor()},
		{
			"two marked constructors",
			Describe[*engine]().Constructor(newEngine, Inject).Constructor(newEngine, Inject).Descriptor(),
		},
		{
			"no usable construction point",
			Describe[*car]().Constructor(newCar).Descriptor(),
		},
		{
			"read-only injected field",
			Describe[*car]().Constructor(func() *car { return &car{} }).
				Field("engine", func(c *car, e Engine) { c.engine = e }, Inject, ReadOnly).Descriptor(),
		},
		{
			"multiple qualifiers",
			Describe[*car]().Constructor(newCar, Inject, Arg(0, Named("a"), Named("b"))).Descriptor(),
		},
		{
			"multiple field qualifiers",
			Describe[*car]().Constructor(func() *car { return &car{} }).
				Field("radio", func(c *car, r Radio) {}, Inject, Named("a"), NewQualifier("b")).Descriptor(),
		},
		{
			"unsupported container",
			Describe[*car]().Constructor(func(l lazy[Engine]) *car { return &car{} }, Inject).Descriptor(),
		},
		{
			"constructor returns another type",
			Describe[*car]().Constructor(newEngine).Descriptor(),
		},
		{
			"constructor not a function",
			Describe[*car]().Constructor("car").Descriptor(),
		},
		{
			"setter for another type",
			Describe[*car]().Constructor(func() *car { return &car{} }).
				Field("name", func(e *engine, s string) {}, Inject).Descriptor(),
		},
		{
			"arg out of range",
			Describe[*car]().Constructor(newCar, Inject, Arg(3, Named("x"))).Descriptor(),
		},
		{
			"inject on a type",
			Describe[*car](Inject).Descriptor(),
		},
		{
			"two scopes on a type",
			Describe[*car](Singleton, Transient).Descriptor(),
		},
		{
			"nil type annotation",
			Describe[*car](nil).Descriptor(),
		},
		{
			"nil constructor annotation",
			Describe[*engine]().Constructor(newEngine, nil).Descriptor(),
		},
		{
			"nil field annotation",
			Describe[*car]().Constructor(func() *car { return &car{} }).
				Field("radio", func(c *car, r Radio) {}, Inject, nil).Descriptor(),
		},
		{
			"nil method annotation",
			Describe[*car]().Constructor(func() *car { return &car{} }).
				Method("Start", (*car).Start, Inject, nil).Descriptor(),
		},
		{
			"nil parameter annotation",
			Describe[*car]().Constructor(newCar, Inject, Arg(0, nil)).Descriptor(),
		},
		{
			"generic method",
			&Type{
				Of:           reflect.TypeFor[*car](),
				Constructors: []Constructor{{New: func([]any) (any, error) { return &car{}, nil }}},
				Methods: []Method{{
					Name: "Convert", Inject: true, TypeParams: 1,
					Invoke: func(any, []any) error { return nil },
				}},
			},
		},
		{
			"supertype without upcast",
			&Type{
				Of:           reflect.TypeFor[*car](),
				Constructors: []Constructor{{New: func([]any) (any, error) { return &car{}, nil }}},
				Super:        &Type{Of: reflect.TypeFor[*engine]()},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlan(tc.typ)
			expectCode(t, err, errors.ErrCodeIllegalComponent)
		})
	}
}

func TestNewPlan_UnmarkedGenericMethodIgnored(t *testing.T) {
	typ := &Type{
		Of:           reflect.TypeFor[*car](),
		Constructors: []Constructor{{New: func([]any) (any, error) { return &car{}, nil }}},
		Methods:      []Method{{Name: "Convert", TypeParams: 1}},
	}
	if _, err := NewPlan(typ); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// --- inheritance ---

type vehicle struct {
	engine Engine
	calls  []string
}

func (v *vehicle) Init() { v.calls = append(v.calls, "vehicle.Init") }

type truck struct {
	vehicle
}

func vehicleType() *Type {
	return Describe[*vehicle]().
		Field("engine", func(v *vehicle, e Engine) { v.engine = e }, Inject).
		Method("Init", (*vehicle).Init, Inject).
		Descriptor()
}

func upcastTruck(t *truck) any { return &t.vehicle }

func resolveTruck(t *testing.T, d *Describer[*truck]) *truck {
	t.Helper()
	r := newTestRegistry()
	mustBind(t, BindInstance[Engine](r, Engine(newEngine())))
	mustBind(t, Bind[*truck](r, d))
	return MustResolve[*truck](freeze(t, r))
}

func TestInheritance_SupertypeFieldsAndMethods(t *testing.T) {
	got := resolveTruck(t, Describe[*truck]().
		Constructor(func() *truck { return &truck{} }).
		Extends(vehicleType(), upcastTruck))

	if got.engine == nil {
		t.Error("expected supertype field to be injected")
	}
	if len(got.calls) != 1 || got.calls[0] != "vehicle.Init" {
		t.Errorf("expected supertype method once, got %v", got.calls)
	}
}

func TestInheritance_UnmarkedOverrideSuppressesAncestor(t *testing.T) {
	got := resolveTruck(t, Describe[*truck]().
		Constructor(func() *truck { return &truck{} }).
		Method("Init", func(t *truck) { t.calls = append(t.calls, "truck.Init") }).
		Extends(vehicleType(), upcastTruck))

	if len(got.calls) != 0 {
		t.Errorf("expected no Init calls, got %v", got.calls)
	}
}

func TestInheritance_MarkedOverrideRunsOnce(t *testing.T) {
	got := resolveTruck(t, Describe[*truck]().
		Constructor(func() *truck { return &truck{} }).
		Method("Init", func(t *truck) { t.calls = append(t.calls, "truck.Init") }, Inject).
		Extends(vehicleType(), upcastTruck))

	if len(got.calls) != 1 || got.calls[0] != "truck.Init" {
		t.Errorf("expected exactly one truck.Init, got %v", got.calls)
	}
}

func TestInheritance_BaseMethodsRunFirst(t *testing.T) {
	got := resolveTruck(t, Describe[*truck]().
		Constructor(func() *truck { return &truck{} }).
		Method("Load", func(t *truck) { t.calls = append(t.calls, "truck.Load") }, Inject).
		Extends(vehicleType(), upcastTruck))

	want := []string{"vehicle.Init", "truck.Load"}
	if !reflect.DeepEqual(got.calls, want) {
		t.Errorf("expected %v, got %v", want, got.calls)
	}
}

func TestInheritance_DifferentSignatureIsNotOverride(t *testing.T) {
	got := resolveTruck(t, Describe[*truck]().
		Constructor(func() *truck { return &truck{} }).
		Method("Init", func(t *truck, e Engine) { t.calls = append(t.calls, "truck.Init(Engine)") }).
		Extends(vehicleType(), upcastTruck))

	if len(got.calls) != 1 || got.calls[0] != "vehicle.Init" {
		t.Errorf("expected vehicle.Init to survive, got %v", got.calls)
	}
}
