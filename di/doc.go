// Package di assembles object graphs from declared bindings.
//
// Components are described explicitly: a Type lists construction points,
// injectable fields and methods, usually built with the Describe helper. A
// Registry maps contract types, optionally qualified, to descriptions or fixed
// instances. Freezing the registry validates the whole graph (every dependency
// bound, no cycles outside Provider edges) and returns a Context that builds
// instances on demand.
//
// # Binding
//
//	r := di.NewRegistry()
//	_ = di.BindInstance[Config](r, cfg)
//	_ = di.Bind[Engine](r, di.Describe[*V8]().Constructor(NewV8), di.Named("v8"), di.Singleton)
//	_ = di.Bind[Car](r, di.Describe[*Car]().
//		Constructor(NewCar, di.Inject, di.Arg(0, di.Named("v8"))).
//		Method("Start", (*Car).Start, di.Inject))
//
// # Resolution
//
//	ctx, err := r.Context()
//	car := di.MustResolve[Car](ctx)
//
// Asking for Provider[T] instead of T yields a handle that builds on each
// call, which also breaks construction cycles.
package di
