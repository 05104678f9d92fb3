package di

import (
	"reflect"
)

var (
	errorType    = reflect.TypeFor[error]()
	resolverType = reflect.TypeFor[Resolver]()
	scopeType    = reflect.TypeFor[*Scope]()
)

// activator calls an implementation constructor, resolving each parameter by type.
//
// Supported shapes:
//
//	func(A, B, ...) T
//	func(A, B, ...) (T, error)
//
// A parameter of type di.Resolver receives the active resolver and *di.Scope the
// active scope; every other parameter is resolved from the container.
type activator struct {
	fn   reflect.Value
	in   []reflect.Type
	impl reflect.Type
	errs bool
}

func newActivator(service reflect.Type, ctor any) (*activator, error) {
	if ctor == nil {
		return nil, ArgumentError{Name: "constructor"}
	}
	v := reflect.ValueOf(ctor)
	ft := v.Type()
	if ft.Kind() != reflect.Func {
		return nil, ConstructorError{Type: ft, Reason: "not a function"}
	}
	if v.IsNil() {
		return nil, ArgumentError{Name: "constructor"}
	}
	if ft.IsVariadic() {
		return nil, ConstructorError{Type: ft, Reason: "variadic constructors are not supported"}
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return nil, ConstructorError{Type: ft, Reason: "want results (T) or (T, error)"}
	}
	impl := ft.Out(0)
	if !impl.AssignableTo(service) {
		return nil, ConstructorError{Type: ft, Reason: impl.String() + " is not assignable to " + service.String()}
	}

	a := &activator{fn: v, impl: impl, errs: ft.NumOut() == 2, in: make([]reflect.Type, ft.NumIn())}
	for i := range a.in {
		a.in[i] = ft.In(i)
	}
	return a, nil
}

// dependencies returns the parameter types to be resolved from the container.
func (a *activator) dependencies() []reflect.Type {
	var out []reflect.Type
	for _, t := range a.in {
		if t != resolverType && t != scopeType {
			out = append(out, t)
		}
	}
	return out
}

func (a *activator) factory() Factory {
	return func(r Resolver) (any, error) {
		args := make([]reflect.Value, len(a.in))
		for i, t := range a.in {
			switch t {
			case resolverType:
				args[i] = reflect.ValueOf(&r).Elem()
			case scopeType:
				args[i] = reflect.ValueOf(r.Scope())
			default:
				dep, err := r.Resolve(t)
				if err != nil {
					return nil, err
				}
				args[i] = reflect.New(t).Elem()
				if dep != nil {
					args[i].Set(reflect.ValueOf(dep))
				}
			}
		}
		out := a.fn.Call(args)
		if a.errs && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return out[0].Interface(), nil
	}
}

func constructorDescriptor(c *Collection, t reflect.Type, ctor any, lifetime Lifetime) (ServiceDescriptor, error) {
	if c == nil {
		return ServiceDescriptor{}, ArgumentError{Name: "collection"}
	}
	if t == nil {
		return ServiceDescriptor{}, ArgumentError{Name: "serviceType"}
	}
	a, err := newActivator(t, ctor)
	if err != nil {
		return ServiceDescriptor{}, err
	}
	return ServiceDescriptor{
		ServiceType:        t,
		Lifetime:           lifetime,
		Factory:            a.factory(),
		ImplementationType: a.impl,
		Dependencies:       a.dependencies(),
	}, nil
}
