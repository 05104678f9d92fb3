package di

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrNilArgument is matched by ArgumentError.
	ErrNilArgument = errors.New("di: nil argument")

	// ErrInvalidConstructor is matched by ConstructorError.
	ErrInvalidConstructor = errors.New("di: invalid constructor")

	// ErrInvalidLifetime is returned for a Lifetime outside Transient..Singleton.
	ErrInvalidLifetime = errors.New("di: invalid lifetime")

	// ErrResolutionFailed is matched by every ResolutionError.
	ErrResolutionFailed = errors.New("di: resolution failed")

	// ErrNotRegistered is the cause of a ResolutionError for an unknown service type.
	ErrNotRegistered = errors.New("di: service not registered")

	// ErrCycle is the cause of a ResolutionError for a circular dependency.
	ErrCycle = errors.New("di: circular dependency")

	// ErrScopedFromRoot is the cause of a ResolutionError when a scoped service is
	// resolved from the root scope (directly or through a singleton) while scope
	// validation is enabled.
	ErrScopedFromRoot = errors.New("di: scoped service resolved from root scope")

	// ErrScopeClosed is returned by a scope after Close.
	ErrScopeClosed = errors.New("di: scope closed")

	// ErrNilInstance is the cause of a ResolutionError when a factory returns nil
	// without an error.
	ErrNilInstance = errors.New("di: factory returned nil")
)

// ArgumentError reports a nil argument passed to a registration function.
type ArgumentError struct{ Name string }

// Error implements the error interface.
func (e ArgumentError) Error() string {
	// Example: di: nil argument "factory"
	return "di: nil argument " + strconv.Quote(e.Name)
}

// Is matches ErrNilArgument.
func (e ArgumentError) Is(target error) bool { return target == ErrNilArgument }

// ConstructorError reports a constructor whose signature the activator cannot use.
type ConstructorError struct {
	// Type is the constructor's type; nil when the value was not a func.
	Type   reflect.Type
	Reason string
}

// Error implements the error interface.
func (e ConstructorError) Error() string {
	// Example: di: invalid constructor func(int) *app.Store: want results (T) or (T, error)
	name := "<nil>"
	if e.Type != nil {
		name = e.Type.String()
	}
	return "di: invalid constructor " + name + ": " + e.Reason
}

// Is matches ErrInvalidConstructor.
func (e ConstructorError) Is(target error) bool { return target == ErrInvalidConstructor }

// RegistrationError wraps a failure to register a service type.
type RegistrationError struct {
	ServiceType reflect.Type
	Err         error
}

// Error implements the error interface.
func (e RegistrationError) Error() string {
	return "di: register " + typeName(e.ServiceType) + ": " + e.Err.Error()
}

// Unwrap returns the cause.
func (e RegistrationError) Unwrap() error { return e.Err }

// ResolutionError is returned when a service cannot be produced.
type ResolutionError struct {
	Type reflect.Type
	// Chain lists the services being resolved when the error occurred, outermost first.
	Chain []reflect.Type
	Err   error
}

// Error implements the error interface.
func (e ResolutionError) Error() string {
	// Example: di: resolve app.Mailer (via app.Handler -> app.Mailer): di: circular dependency
	var sb strings.Builder
	sb.WriteString("di: resolve ")
	sb.WriteString(typeName(e.Type))
	if len(e.Chain) > 1 {
		sb.WriteString(" (via ")
		for i, t := range e.Chain {
			if i > 0 {
				sb.WriteString(" -> ")
			}
			sb.WriteString(typeName(t))
		}
		sb.WriteByte(')')
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the cause.
func (e ResolutionError) Unwrap() error { return e.Err }

// Is matches ErrResolutionFailed.
func (e ResolutionError) Is(target error) bool { return target == ErrResolutionFailed }

// ValidationError is returned by Build when build validation finds a constructor
// dependency that is not registered.
type ValidationError struct {
	ServiceType reflect.Type
	Missing     reflect.Type
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return "di: " + typeName(e.ServiceType) + " depends on unregistered " + typeName(e.Missing)
}

// Is matches ErrNotRegistered.
func (e ValidationError) Is(target error) bool { return target == ErrNotRegistered }

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
