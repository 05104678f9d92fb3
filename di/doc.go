// Package di is a small reflection-based container with lazy registrations.
//
// Services are registered on a Collection by service type with a lifetime
// (Transient, Scoped, Singleton) and either an implementation constructor or a
// factory. Build freezes the collection into a Provider; scopes are created per
// unit of work and closed when it ends.
//
// Lazy registrations
//
// AddLazyTransient, AddLazyScoped and AddLazySingleton (plus the Factory and As
// variants) register an interface whose resolution returns a proxy generated
// by cmd/lazygen. No constructor runs and no dependency is resolved until the
// first method call on the proxy:
//
//	c := di.NewCollection()
//	_ = di.AddLazySingleton[Mailer](c, NewSMTPMailer)
//	p, _ := c.Build()
//	m := di.MustResolve[Mailer](p) // nothing built yet
//	m.Send(msg)                    // NewSMTPMailer runs here, once
//
// Construction errors of a lazy registration therefore surface on first use:
// methods returning error return it, other methods panic with it. The proxy
// resolves its dependencies from the scope it was resolved in, with a new
// resolution chain, so a lazy edge can break a constructor cycle.
//
// Errors
//
// Registration functions return ArgumentError (ErrNilArgument),
// ConstructorError (ErrInvalidConstructor) or RegistrationError wrapping a
// proxy error such as proxy.ErrNotInterface. Resolution failures are
// ResolutionError values matching ErrResolutionFailed.
//
// Import
//
//	"github.com/sghaida/lazyproxy/di"
package di
