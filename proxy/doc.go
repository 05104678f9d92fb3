// Package proxy is the runtime half of lazyproxy: it turns an interface type
// into a stand-in value that defers building the real implementation until the
// first method call.
//
// Go cannot add methods to a type at run time, so the forwarding types are
// produced by cmd/lazygen. Each generated file registers its constructors from
// init:
//
//	func init() {
//		proxy.Register(newMailerLazy)
//	}
//
// At run time the package provides:
//
//   - Descriptor: the comparable identity of an interface shape, including the
//     bound type arguments of a closed generic interface.
//   - Cache / Default: one immutable Dispatcher per descriptor.
//   - Generate: member enumeration and template binding.
//   - Holder: the per-proxy state machine that runs the target factory at most
//     once, with concurrent callers waiting for the same result.
//   - MustTarget and Dispatcher.Invoke: the typed and reflective dispatch paths.
//
// A failed materialization is terminal. Every later call on the same proxy
// observes the same error (methods returning error) or panics with it.
//
// Observers (LogObserver, Metrics) are notified after each materialization.
package proxy
