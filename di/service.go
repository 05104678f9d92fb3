package di

import (
	"errors"
	"reflect"
	"strconv"
	"sync"
)

// Lifetime controls how long a resolved instance is reused.
type Lifetime int

const (
	// Transient services are built on every resolution.
	Transient Lifetime = iota
	// Scoped services are built once per Scope.
	Scoped
	// Singleton services are built once per Provider, in the root scope.
	Singleton
)

// String implements fmt.Stringer.
func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "lifetime(" + strconv.Itoa(int(l)) + ")"
	}
}

func (l Lifetime) valid() bool { return l >= Transient && l <= Singleton }

// Resolver produces services by type. Factories receive the resolver of the
// resolution in progress.
type Resolver interface {
	Resolve(t reflect.Type) (any, error)
	// Scope returns the scope the resolution runs in.
	Scope() *Scope
}

// Factory builds one service instance.
type Factory func(Resolver) (any, error)

// ServiceDescriptor is one registration.
type ServiceDescriptor struct {
	ServiceType reflect.Type
	Lifetime    Lifetime
	Factory     Factory

	// ImplementationType is the constructor's result type, when registered by
	// constructor. Informational.
	ImplementationType reflect.Type
	// Dependencies lists the constructor's parameter types, checked by build validation.
	Dependencies []reflect.Type
	// Lazy marks registrations whose Factory returns a lazy proxy.
	Lazy bool
}

func (d ServiceDescriptor) validate() error {
	if d.ServiceType == nil {
		return ArgumentError{Name: "serviceType"}
	}
	if d.Factory == nil {
		return ArgumentError{Name: "factory"}
	}
	if !d.Lifetime.valid() {
		return RegistrationError{ServiceType: d.ServiceType, Err: ErrInvalidLifetime}
	}
	return nil
}

// Collection accumulates registrations before a Provider is built.
// When a service type is registered more than once the last registration wins.
type Collection struct {
	mu          sync.Mutex
	descriptors []ServiceDescriptor
}

// NewCollection returns an empty collection.
func NewCollection() *Collection { return &Collection{} }

// Add appends a descriptor after validating it.
func (c *Collection) Add(d ServiceDescriptor) error {
	if c == nil {
		return ArgumentError{Name: "collection"}
	}
	if err := d.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.descriptors = append(c.descriptors, d)
	c.mu.Unlock()
	return nil
}

// Descriptors returns a copy of the registrations in insertion order.
func (c *Collection) Descriptors() []ServiceDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ServiceDescriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Len returns the number of registrations.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.descriptors)
}

// Contains reports whether t has at least one registration.
func (c *Collection) Contains(t reflect.Type) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.descriptors {
		if d.ServiceType == t {
			return true
		}
	}
	return false
}

// Add registers ctor as the implementation constructor of service type t.
func Add(c *Collection, t reflect.Type, ctor any, lifetime Lifetime) error {
	d, err := constructorDescriptor(c, t, ctor, lifetime)
	if err != nil {
		return err
	}
	return c.Add(d)
}

// AddFactory registers f as the factory of service type t.
func AddFactory(c *Collection, t reflect.Type, f Factory, lifetime Lifetime) error {
	if c == nil {
		return ArgumentError{Name: "collection"}
	}
	return c.Add(ServiceDescriptor{ServiceType: t, Lifetime: lifetime, Factory: f})
}

// AddTransient registers an implementation constructor for T.
func AddTransient[T any](c *Collection, ctor any) error {
	return Add(c, reflect.TypeFor[T](), ctor, Transient)
}

// AddScoped registers an implementation constructor for T.
func AddScoped[T any](c *Collection, ctor any) error {
	return Add(c, reflect.TypeFor[T](), ctor, Scoped)
}

// AddSingleton registers an implementation constructor for T.
func AddSingleton[T any](c *Collection, ctor any) error {
	return Add(c, reflect.TypeFor[T](), ctor, Singleton)
}

// AddTransientFactory registers a typed factory for T.
func AddTransientFactory[T any](c *Collection, f func(Resolver) (T, error)) error {
	return addTyped(c, f, Transient, false)
}

// AddScopedFactory registers a typed factory for T.
func AddScopedFactory[T any](c *Collection, f func(Resolver) (T, error)) error {
	return addTyped(c, f, Scoped, false)
}

// AddSingletonFactory registers a typed factory for T.
func AddSingletonFactory[T any](c *Collection, f func(Resolver) (T, error)) error {
	return addTyped(c, f, Singleton, false)
}

// AddTransientAs registers a factory returning implementation I for service T.
func AddTransientAs[T, I any](c *Collection, f func(Resolver) (I, error)) error {
	return addAs[T](c, f, Transient, false)
}

// AddScopedAs registers a factory returning implementation I for service T.
func AddScopedAs[T, I any](c *Collection, f func(Resolver) (I, error)) error {
	return addAs[T](c, f, Scoped, false)
}

// AddSingletonAs registers a factory returning implementation I for service T.
func AddSingletonAs[T, I any](c *Collection, f func(Resolver) (I, error)) error {
	return addAs[T](c, f, Singleton, false)
}

// AddInstance registers an already built singleton. It is never closed by the provider.
func AddInstance[T any](c *Collection, v T) error {
	if isNil(v) {
		return ArgumentError{Name: "instance"}
	}
	return AddFactory(c, reflect.TypeFor[T](), func(Resolver) (any, error) { return instance{v}, nil }, Singleton)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// instance marks values owned by the caller so scope disposal skips them.
type instance struct{ v any }

func addTyped[T any](c *Collection, f func(Resolver) (T, error), lifetime Lifetime, lazy bool) error {
	if c == nil {
		return ArgumentError{Name: "collection"}
	}
	if f == nil {
		return ArgumentError{Name: "factory"}
	}
	d := ServiceDescriptor{
		ServiceType: reflect.TypeFor[T](),
		Lifetime:    lifetime,
		Factory:     typedFactory(f),
	}
	if lazy {
		return addLazy(c, d)
	}
	return c.Add(d)
}

// addAs registers a factory returning implementation I for service T.
func addAs[T, I any](c *Collection, f func(Resolver) (I, error), lifetime Lifetime, lazy bool) error {
	if c == nil {
		return ArgumentError{Name: "collection"}
	}
	if f == nil {
		return ArgumentError{Name: "factory"}
	}
	st, it := reflect.TypeFor[T](), reflect.TypeFor[I]()
	if !it.AssignableTo(st) {
		return RegistrationError{ServiceType: st, Err: errors.New(it.String() + " is not assignable to " + st.String())}
	}
	d := ServiceDescriptor{
		ServiceType:        st,
		Lifetime:           lifetime,
		Factory:            typedFactory(f),
		ImplementationType: it,
	}
	if lazy {
		return addLazy(c, d)
	}
	return c.Add(d)
}

func typedFactory[T any](f func(Resolver) (T, error)) Factory {
	return func(r Resolver) (any, error) {
		v, err := f(r)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Resolve resolves T from r.
func Resolve[T any](r Resolver) (T, error) {
	var zero T
	if r == nil {
		return zero, ArgumentError{Name: "resolver"}
	}
	v, err := r.Resolve(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, ResolutionError{Type: reflect.TypeFor[T](), Err: errors.New("di: resolved " + typeName(reflect.TypeOf(v)))}
	}
	return out, nil
}

// MustResolve resolves T from r or panics with the resolution error.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}
