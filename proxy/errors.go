package proxy

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
)

var (
	// ErrNilType is returned when a nil reflect.Type is described or generated.
	ErrNilType = errors.New("proxy: nil service type")

	// ErrNotInterface is matched by NotInterfaceError. Only interface types can be proxied.
	ErrNotInterface = errors.New("proxy: service type is not an interface")

	// ErrNoTemplate is matched by NoTemplateError: no generated proxy was registered
	// for the interface (lazygen was not run for it, or the closed instantiation is
	// missing from the spec).
	ErrNoTemplate = errors.New("proxy: no generated proxy registered")

	// ErrInvalidTemplate is returned when a registered template does not build a
	// value implementing both the interface and Instance.
	ErrInvalidTemplate = errors.New("proxy: invalid proxy template")

	// ErrDescriptorConflict is returned when two distinct reflect types map to the
	// same descriptor (function-local types sharing a name).
	ErrDescriptorConflict = errors.New("proxy: descriptor already bound to another type")

	// ErrNilFactory is returned by a holder created without a target factory.
	ErrNilFactory = errors.New("proxy: nil target factory")

	// ErrTargetType is matched by TargetTypeError.
	ErrTargetType = errors.New("proxy: target does not implement service type")

	// ErrAborted is recorded when a target factory exits its goroutine
	// (runtime.Goexit) before returning.
	ErrAborted = errors.New("proxy: target factory aborted")

	// ErrNotProxy is returned when a value handed to the dispatch runtime
	// is not a proxy instance of the dispatcher's shape.
	ErrNotProxy = errors.New("proxy: value is not a proxy instance")

	// ErrUnknownMember, ErrUnexportedMember and ErrArgument are wrapped
	// by MemberError on the reflective dispatch path.
	ErrUnknownMember    = errors.New("proxy: unknown member")
	ErrUnexportedMember = errors.New("proxy: member is unexported")
	ErrArgument         = errors.New("proxy: invalid argument")
)

// NotInterfaceError reports an attempt to proxy a non-interface type.
type NotInterfaceError struct{ Type reflect.Type }

// Error implements the error interface.
func (e *NotInterfaceError) Error() string {
	// Example: proxy: service type *app.Store is not an interface (kind ptr)
	return "proxy: service type " + e.Type.String() + " is not an interface (kind " + e.Type.Kind().String() + ")"
}

// Is matches ErrNotInterface.
func (e *NotInterfaceError) Is(target error) bool { return target == ErrNotInterface }

// NoTemplateError reports a missing generated proxy for a descriptor.
type NoTemplateError struct{ Descriptor Descriptor }

// Error implements the error interface.
func (e *NoTemplateError) Error() string {
	return "proxy: no generated proxy registered for " + e.Descriptor.String() + " (run lazygen for it)"
}

// Is matches ErrNoTemplate.
func (e *NoTemplateError) Is(target error) bool { return target == ErrNoTemplate }

// TargetTypeError is returned when a factory produced a value that does not
// implement the proxied interface.
type TargetTypeError struct {
	Want reflect.Type
	// Got is nil when the factory returned a nil value.
	Got reflect.Type
}

// Error implements the error interface.
func (e *TargetTypeError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	return "proxy: target of type " + got + " does not implement " + e.Want.String()
}

// Is matches ErrTargetType.
func (e *TargetTypeError) Is(target error) bool { return target == ErrTargetType }

// MemberError carries the member context of a reflective dispatch failure.
type MemberError struct {
	Descriptor Descriptor
	Member     string
	Err        error
	// Detail is optional human readable context (e.g. the offending argument index).
	Detail string
}

// Error implements the error interface.
func (e *MemberError) Error() string {
	msg := e.Err.Error() + " " + strconv.Quote(e.Member) + " on " + e.Descriptor.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the underlying sentinel.
func (e *MemberError) Unwrap() error { return e.Err }

// PanicError records a panic raised by a target factory. The goroutine that
// triggered materialization re-panics with the original value; goroutines that
// were waiting on the same holder, and later callers, receive this error.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("proxy: target factory panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
