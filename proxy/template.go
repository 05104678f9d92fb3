package proxy

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Materializer is the untyped view of a proxy's holder.
type Materializer interface {
	ID() uuid.UUID
	State() State
	Descriptor() Descriptor
	Materialize() (any, error)
}

// Instance is implemented by every generated proxy type.
type Instance interface {
	LazyHolder() Materializer
}

// template binds an interface type to its generated proxy constructor.
type template struct {
	typ   reflect.Type
	build func(factory func() (any, error), opts []HolderOption) any
	probe func() any
}

// templates maps reflect.Type -> *template.
var templates sync.Map

// Register records the generated proxy constructor for interface T. Generated
// files call it from init, once per closed instantiation of a generic interface.
// The first registration for a type wins.
func Register[T any](newProxy func(*Holder[T]) T) {
	if newProxy == nil {
		panic("proxy: Register called with nil constructor")
	}
	t := reflect.TypeFor[T]()
	templates.LoadOrStore(t, &template{
		typ: t,
		build: func(factory func() (any, error), opts []HolderOption) any {
			return newProxy(NewHolder(typedFactory[T](t, factory), opts...))
		},
		probe: func() any { return newProxy(nil) },
	})
}

// Registered reports whether a generated proxy is registered for t.
func Registered(t reflect.Type) bool {
	if t == nil {
		return false
	}
	_, ok := templates.Load(t)
	return ok
}

func lookupTemplate(t reflect.Type) (*template, bool) {
	v, ok := templates.Load(t)
	if !ok {
		return nil, false
	}
	return v.(*template), true
}

// typedFactory narrows an untyped target factory to T, rejecting nil targets and
// values that do not implement T.
func typedFactory[T any](want reflect.Type, factory func() (any, error)) func() (T, error) {
	if factory == nil {
		return nil
	}
	return func() (T, error) {
		var zero T
		v, err := factory()
		if err != nil {
			return zero, err
		}
		target, ok := v.(T)
		if !ok {
			return zero, &TargetTypeError{Want: want, Got: reflect.TypeOf(v)}
		}
		return target, nil
	}
}
