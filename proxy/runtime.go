package proxy

import (
	"reflect"
)

// MustTarget returns the holder's target, panicking with the materialization
// error when the factory failed. Generated forwarding methods whose signature
// cannot carry an error call it; the panic value is the error itself.
func MustTarget[T any](h *Holder[T]) T {
	t, err := h.Get()
	if err != nil {
		panic(err)
	}
	return t
}

// New builds a lazy proxy for interface T through the Default cache.
func New[T any](factory func() (T, error), opts ...HolderOption) (T, error) {
	var zero T
	if factory == nil {
		return zero, ErrNilFactory
	}
	d, err := Default.GetOrCreate(reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	p := d.New(func() (any, error) {
		t, err := factory()
		if err != nil {
			return nil, err
		}
		return t, nil
	}, opts...)
	return p.(T), nil
}

// DispatcherFor returns the cached dispatcher for interface T.
func DispatcherFor[T any]() (*Dispatcher, error) {
	return Default.GetOrCreate(reflect.TypeFor[T]())
}

// IsProxy reports whether v is a generated lazy proxy.
func IsProxy(v any) bool {
	_, ok := v.(Instance)
	return ok
}

// IsMaterialized reports whether v is a proxy whose target is Ready. It never
// triggers materialization.
func IsMaterialized(v any) bool {
	inst, ok := v.(Instance)
	if !ok {
		return false
	}
	return inst.LazyHolder().State() == Ready
}

// Unwrap returns the target behind a proxy, materializing it if needed. Values
// that are not proxies are returned unchanged.
func Unwrap(v any) (any, error) {
	inst, ok := v.(Instance)
	if !ok {
		return v, nil
	}
	return inst.LazyHolder().Materialize()
}

// Peek returns the target behind a proxy only if it is already Ready.
func Peek(v any) (any, bool) {
	inst, ok := v.(Instance)
	if !ok {
		return nil, false
	}
	m := inst.LazyHolder()
	if m.State() != Ready {
		return nil, false
	}
	t, err := m.Materialize()
	return t, err == nil
}
