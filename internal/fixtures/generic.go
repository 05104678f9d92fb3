package fixtures

import (
	"reflect"

	"github.com/google/uuid"
)

// HasID is embedded by GenericService.
type HasID interface {
	ID() uuid.UUID
}

type ParameterType1 struct{}

type ParameterType2 struct{}

type ParameterType3 struct{ Value string }

// GenericService is proxied per closed instantiation. Get stands in for a
// method with its own type parameter: the extra argument travels boxed and
// Zero takes an explicit runtime type tag.
type GenericService[T any, TIn any, TOut any] interface {
	HasID
	Get(arg1 T, arg2 TIn, arg3 any) TOut
	Zero(targ reflect.Type) any
}

// GenericServiceImpl implements GenericService[T, TIn, *ParameterType3].
type GenericServiceImpl[T any, TIn any] struct{ id uuid.UUID }

func NewGenericService[T any, TIn any]() *GenericServiceImpl[T, TIn] {
	return &GenericServiceImpl[T, TIn]{id: uuid.New()}
}

func (g *GenericServiceImpl[T, TIn]) ID() uuid.UUID { return g.id }

// Get returns "<T>_<TIn>_<type of arg3>".
func (g *GenericServiceImpl[T, TIn]) Get(arg1 T, arg2 TIn, arg3 any) *ParameterType3 {
	return &ParameterType3{Value: baseName(arg1) + "_" + baseName(arg2) + "_" + baseName(arg3)}
}

func (g *GenericServiceImpl[T, TIn]) Zero(targ reflect.Type) any {
	return reflect.Zero(targ).Interface()
}

func baseName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
