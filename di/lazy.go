package di

import (
	"reflect"

	"github.com/sghaida/lazyproxy/proxy"
)

// WrapForLaziness turns a registration into a factory that returns a lazy proxy.
//
// The service type must be an interface with a generated proxy; both are checked
// here, so registration fails fast. Each call of the returned factory creates a
// new proxy whose target is built by desc.Factory on first member use, resolving
// its dependencies from the scope the proxy was resolved in.
//
// The returned factory never caches proxies. Reuse is decided by the
// registration's lifetime.
func WrapForLaziness(desc ServiceDescriptor) (Factory, error) {
	if desc.ServiceType == nil {
		return nil, ArgumentError{Name: "serviceType"}
	}
	if desc.Factory == nil {
		return nil, ArgumentError{Name: "factory"}
	}
	d, err := proxy.Default.GetOrCreate(desc.ServiceType)
	if err != nil {
		return nil, RegistrationError{ServiceType: desc.ServiceType, Err: err}
	}

	build := desc.Factory
	return func(r Resolver) (any, error) {
		scope := r.Scope()
		var opts []proxy.HolderOption
		if scope != nil && scope.provider.opts.observer != nil {
			opts = append(opts, proxy.WithObserver(scope.provider.opts.observer))
		}
		var target Resolver = scope
		if scope == nil {
			target = r
		}
		t := desc.ServiceType
		return d.New(func() (any, error) {
			if scope != nil && scope.closed.Load() {
				return nil, ResolutionError{Type: t, Chain: []reflect.Type{t}, Err: ErrScopeClosed}
			}
			v, err := build(target)
			if err != nil || scope == nil || !scope.closed.Load() {
				return v, err
			}
			// the scope closed while building; its Close saw no target
			if err := dispose(v); err != nil {
				scope.provider.opts.logger.Warn("di: dispose after close failed", "scope", scope.id.String(), "err", err)
			}
			return nil, ResolutionError{Type: t, Chain: []reflect.Type{t}, Err: ErrScopeClosed}
		}, opts...), nil
	}, nil
}

func addLazy(c *Collection, d ServiceDescriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	f, err := WrapForLaziness(d)
	if err != nil {
		return err
	}
	d.Factory = f
	d.Lazy = true
	return c.Add(d)
}

// AddLazy registers ctor as the lazily built implementation of interface t.
func AddLazy(c *Collection, t reflect.Type, ctor any, lifetime Lifetime) error {
	d, err := constructorDescriptor(c, t, ctor, lifetime)
	if err != nil {
		return err
	}
	return addLazy(c, d)
}

// AddLazyFactory registers f as the lazily run factory of interface t.
func AddLazyFactory(c *Collection, t reflect.Type, f Factory, lifetime Lifetime) error {
	if c == nil {
		return ArgumentError{Name: "collection"}
	}
	return addLazy(c, ServiceDescriptor{ServiceType: t, Lifetime: lifetime, Factory: f})
}

// AddLazyTransient registers a lazily built implementation constructor for T.
// Every resolution returns a new proxy.
func AddLazyTransient[T any](c *Collection, ctor any) error {
	return AddLazy(c, reflect.TypeFor[T](), ctor, Transient)
}

// AddLazyScoped registers a lazily built implementation constructor for T.
// Resolutions within one scope share a proxy.
func AddLazyScoped[T any](c *Collection, ctor any) error {
	return AddLazy(c, reflect.TypeFor[T](), ctor, Scoped)
}

// AddLazySingleton registers a lazily built implementation constructor for T.
// All resolutions share one proxy.
func AddLazySingleton[T any](c *Collection, ctor any) error {
	return AddLazy(c, reflect.TypeFor[T](), ctor, Singleton)
}

// AddLazyTransientFactory registers a typed lazy factory for T.
func AddLazyTransientFactory[T any](c *Collection, f func(Resolver) (T, error)) error {
	return addTyped(c, f, Transient, true)
}

// AddLazyScopedFactory registers a typed lazy factory for T.
func AddLazyScopedFactory[T any](c *Collection, f func(Resolver) (T, error)) error {
	return addTyped(c, f, Scoped, true)
}

// AddLazySingletonFactory registers a typed lazy factory for T.
func AddLazySingletonFactory[T any](c *Collection, f func(Resolver) (T, error)) error {
	return addTyped(c, f, Singleton, true)
}

// AddLazyTransientAs registers a lazy factory returning implementation I for T.
func AddLazyTransientAs[T, I any](c *Collection, f func(Resolver) (I, error)) error {
	return addAs[T](c, f, Transient, true)
}

// AddLazyScopedAs registers a lazy factory returning implementation I for T.
func AddLazyScopedAs[T, I any](c *Collection, f func(Resolver) (I, error)) error {
	return addAs[T](c, f, Scoped, true)
}

// AddLazySingletonAs registers a lazy factory returning implementation I for T.
func AddLazySingletonAs[T, I any](c *Collection, f func(Resolver) (I, error)) error {
	return addAs[T](c, f, Singleton, true)
}
