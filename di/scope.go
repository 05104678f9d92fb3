package di

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sghaida/lazyproxy/proxy"
)

// Scope caches scoped services and owns the disposables it built.
//
// Closing a scope closes what it built in reverse creation order. Lazy proxies
// are never closed themselves: if the proxy's target was materialized the
// target is closed, otherwise nothing happens and the target is never built.
type Scope struct {
	provider  *Provider
	root      bool
	id        uuid.UUID
	instances *registry

	mu          sync.Mutex
	disposables []any
	closed      atomic.Bool
}

func newScope(p *Provider, root bool) *Scope {
	return &Scope{provider: p, root: root, id: uuid.New(), instances: newRegistry()}
}

// ID identifies the scope in logs.
func (s *Scope) ID() uuid.UUID { return s.id }

// IsRoot reports whether s is the provider's root scope.
func (s *Scope) IsRoot() bool { return s.root }

// Provider returns the owning provider.
func (s *Scope) Provider() *Provider { return s.provider }

// Scope returns s. It makes *Scope a Resolver.
func (s *Scope) Scope() *Scope { return s }

// NewScope starts a sibling scope from the same provider.
func (s *Scope) NewScope() *Scope { return s.provider.NewScope() }

// Resolve resolves t within s, starting a new resolution chain.
func (s *Scope) Resolve(t reflect.Type) (any, error) { return s.resolve(t, nil) }

// resolution is the Resolver handed to factories: it carries the chain of
// services being built so cycles are reported instead of recursing forever.
type resolution struct {
	scope *Scope
	chain []reflect.Type
}

func (r *resolution) Resolve(t reflect.Type) (any, error) { return r.scope.resolve(t, r.chain) }
func (r *resolution) Scope() *Scope                       { return r.scope }

func (s *Scope) resolve(t reflect.Type, chain []reflect.Type) (any, error) {
	if t == nil {
		return nil, ArgumentError{Name: "serviceType"}
	}
	next := make([]reflect.Type, len(chain)+1)
	copy(next, chain)
	next[len(chain)] = t

	if s.closed.Load() {
		return nil, ResolutionError{Type: t, Chain: next, Err: ErrScopeClosed}
	}
	d, ok := s.provider.services[t]
	if !ok {
		return nil, s.fail(ResolutionError{Type: t, Chain: next, Err: ErrNotRegistered})
	}
	for _, c := range chain {
		if c == t {
			return nil, s.fail(ResolutionError{Type: t, Chain: next, Err: ErrCycle})
		}
	}

	switch d.Lifetime {
	case Scoped:
		if s.root && s.provider.opts.validateScopes {
			return nil, s.fail(ResolutionError{Type: t, Chain: next, Err: ErrScopedFromRoot})
		}
		return s.instances.getOrBuild(t, func() (any, error) { return s.build(d, next) })
	case Singleton:
		root := s.provider.root
		return root.instances.getOrBuild(t, func() (any, error) { return root.build(d, next) })
	default:
		return s.build(d, next)
	}
}

// build runs the factory with s as the owning scope and tracks the result.
func (s *Scope) build(d ServiceDescriptor, chain []reflect.Type) (any, error) {
	v, err := d.Factory(&resolution{scope: s, chain: chain})
	if err != nil {
		var re ResolutionError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, s.fail(ResolutionError{Type: d.ServiceType, Chain: chain, Err: err})
	}
	if v == nil {
		return nil, s.fail(ResolutionError{Type: d.ServiceType, Chain: chain, Err: ErrNilInstance})
	}
	if inst, ok := v.(instance); ok {
		return inst.v, nil
	}
	s.track(v)
	return v, nil
}

func (s *Scope) fail(err ResolutionError) error {
	s.provider.opts.logger.Debug("di: resolution failed",
		"scope", s.id.String(),
		"service", typeName(err.Type),
		"err", err.Err,
	)
	return err
}

func (s *Scope) track(v any) {
	if !proxy.IsProxy(v) && !closable(v) {
		return
	}
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		// built while closing; nobody else will dispose it
		if err := dispose(v); err != nil {
			s.provider.opts.logger.Warn("di: dispose after close failed", "scope", s.id.String(), "err", err)
		}
		return
	}
	s.disposables = append(s.disposables, v)
	s.mu.Unlock()
}

// Close disposes everything the scope built, newest first. Errors from
// individual closers are joined. Close is idempotent.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed.Swap(true) {
		s.mu.Unlock()
		return nil
	}
	items := s.disposables
	s.disposables = nil
	s.mu.Unlock()

	var errs []error
	for i := len(items) - 1; i >= 0; i-- {
		if err := dispose(items[i]); err != nil {
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	log := s.provider.opts.logger
	if err != nil {
		log.Error("di: scope closed with errors", "scope", s.id.String(), "root", s.root, "err", err)
	} else {
		log.Debug("di: scope closed", "scope", s.id.String(), "root", s.root, "disposables", len(items))
	}
	return err
}

func closable(v any) bool {
	switch v.(type) {
	case interface{ Close() error }, interface{ Close() }:
		return true
	}
	return false
}

func dispose(v any) error {
	if proxy.IsProxy(v) {
		target, ok := proxy.Peek(v)
		if !ok {
			return nil
		}
		v = target
	}
	switch c := v.(type) {
	case interface{ Close() error }:
		return c.Close()
	case interface{ Close() }:
		c.Close()
	}
	return nil
}

type scopeKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// FromContext returns the scope stored by NewContext.
func FromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}
