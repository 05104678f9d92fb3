package di

import (
	"log/slog"
	"reflect"
)

// Provider resolves services registered in a Collection.
//
// The provider itself acts as the root scope: singletons, and anything resolved
// directly from it, live until Close.
type Provider struct {
	services map[reflect.Type]ServiceDescriptor
	opts     options
	root     *Scope
}

// Build freezes the collection into a Provider.
func (c *Collection) Build(opts ...Option) (*Provider, error) {
	if c == nil {
		return nil, ArgumentError{Name: "collection"}
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	descs := c.Descriptors()
	p := &Provider{services: make(map[reflect.Type]ServiceDescriptor, len(descs)), opts: o}
	for _, d := range descs {
		p.services[d.ServiceType] = d
	}
	if o.validateOnBuild {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	p.root = newScope(p, true)

	lazy := 0
	for _, d := range p.services {
		if d.Lazy {
			lazy++
		}
	}
	o.logger.Debug("di: provider built", "services", len(p.services), "lazy", lazy)
	return p, nil
}

func (p *Provider) validate() error {
	for _, d := range p.services {
		for _, dep := range d.Dependencies {
			dd, ok := p.services[dep]
			if !ok {
				return ValidationError{ServiceType: d.ServiceType, Missing: dep}
			}
			if p.opts.validateScopes && d.Lifetime == Singleton && dd.Lifetime == Scoped {
				return ResolutionError{Type: dep, Chain: []reflect.Type{d.ServiceType, dep}, Err: ErrScopedFromRoot}
			}
		}
	}
	return nil
}

// Resolve resolves t from the root scope.
func (p *Provider) Resolve(t reflect.Type) (any, error) { return p.root.Resolve(t) }

// Scope returns the root scope.
func (p *Provider) Scope() *Scope { return p.root }

// NewScope starts a scope for a unit of work (for example one request).
func (p *Provider) NewScope() *Scope { return newScope(p, false) }

// Close closes the root scope, disposing singletons and root-resolved services.
func (p *Provider) Close() error { return p.root.Close() }

// Logger returns the logger configured with WithLogger.
func (p *Provider) Logger() *slog.Logger { return p.opts.logger }

// Descriptor returns the registration for t.
func (p *Provider) Descriptor(t reflect.Type) (ServiceDescriptor, bool) {
	d, ok := p.services[t]
	return d, ok
}

// IsRegistered reports whether t can be resolved.
func (p *Provider) IsRegistered(t reflect.Type) bool {
	_, ok := p.services[t]
	return ok
}
