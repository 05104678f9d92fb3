// Command lazygen generates lazy proxies for Go interfaces.
//
// A lazy proxy implements an interface by forwarding every method to a target
// that is built on first use. lazygen writes one forwarding type per configured
// interface and registers it with the proxy runtime, so that
// proxy.Default.GetOrCreate and the di package's AddLazy* functions can hand
// out proxies for that interface at run time.
//
// What lazygen generates
//
// For an interface I declared in the current package, lazygen emits:
//
//   - an unexported struct holding a *proxy.Holder[I]
//   - a constructor func(*proxy.Holder[I]) I
//   - one forwarding method per member of I's method set, embedded members included
//   - LazyHolder, which makes the proxy a proxy.Instance
//   - an init function calling proxy.Register for the constructor
//
// Forwarding methods whose last result is error return the materialization
// error; every other method panics with it (see proxy.MustTarget).
//
// Generic interfaces
//
// A generic interface gets a generic proxy type. Because the runtime looks
// templates up by reflect.Type, every closed instantiation used at run time must
// be listed in the spec; lazygen registers one template per instance:
//
//	interfaces:
//	  - name: Repository
//	    instances:
//	      - "*User, int64"
//	      - "*Order, uuid.UUID"
//
// Instances may also be written as one ";"-separated string.
//
// Unexported interfaces
//
// Interfaces that are unexported, or that declare unexported methods, are only
// proxied when the spec sets allowUnexported. Unexported methods an interface
// inherits from another package cannot be implemented and are rejected.
//
// Spec file
//
//	output: lazy_gen.go        # required, relative to the spec file
//	package: .                 # package directory, relative to the spec file
//	runtime: github.com/sghaida/lazyproxy/proxy
//	allowUnexported: false
//	interfaces:
//	  - name: Mailer
//	  - name: Store
//	    proxy: storeProxy      # optional type name, default storeLazy
//
// JSON works as well; it is read as YAML.
//
// Typical go:generate usage
//
//	//go:generate go run github.com/sghaida/lazyproxy/cmd/lazygen --spec lazygen.yaml
//
// The generated file starts with the spec path and the SHA-256 of the spec
// contents so stale output is easy to spot in review.
package main
