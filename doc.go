// Package lazyproxy defers building services until they are first used.
//
// A lazy proxy implements a service interface by forwarding every method to a
// target that is constructed on the first call. The pieces:
//
//   - proxy: the runtime. Holders, dispatchers and the template registry the
//     generated code registers with.
//   - cmd/lazygen: the generator, writing forwarding types for the interfaces
//     listed in a lazygen.yaml.
//   - di: a container with Transient, Scoped and Singleton lifetimes whose
//     AddLazy* registrations hand out proxies instead of built services.
//   - dihttp: net/http and gin middleware opening one scope per request.
//   - examples/fraud: a small HTTP service where a lazy edge breaks a
//     constructor cycle.
//
// Typical wiring:
//
//	//go:generate go run github.com/sghaida/lazyproxy/cmd/lazygen --spec lazygen.yaml
//
//	c := di.NewCollection()
//	_ = di.AddLazyScoped[Mailer](c, NewSMTPMailer)
//	p, _ := c.Build()
package lazyproxy
