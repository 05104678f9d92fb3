package proxy

import (
	"reflect"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the materialization state of a Holder.
type State uint32

const (
	// Uninitialized: the target factory has not run.
	Uninitialized State = iota
	// Materializing: one goroutine is running the factory; others wait.
	Materializing
	// Ready: the target is stored and every caller observes it.
	Ready
	// Failed: the factory returned an error (or panicked). Terminal.
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Materializing:
		return "materializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "state(" + strconv.FormatUint(uint64(s), 10) + ")"
	}
}

// HolderOption configures a Holder at construction.
type HolderOption func(*holderConfig)

type holderConfig struct {
	observer   Observer
	descriptor Descriptor
}

// WithObserver attaches an observer notified once when the holder leaves the
// Materializing state.
func WithObserver(o Observer) HolderOption {
	return func(c *holderConfig) { c.observer = o }
}

// WithDescriptor sets the descriptor reported by the holder. Dispatchers pass
// their own; holders built directly derive one from T.
func WithDescriptor(d Descriptor) HolderOption {
	return func(c *holderConfig) { c.descriptor = d }
}

// Holder owns the deferred construction of one proxy's target.
//
// A Holder materializes at most once. Concurrent callers that arrive while the
// factory runs block until it completes and then observe the same target or the
// same error. A failure is terminal: the factory is never retried.
//
// A factory that calls back into its own holder on the same goroutine deadlocks.
//
// Holders must be created with NewHolder.
type Holder[T any] struct {
	id       uuid.UUID
	desc     Descriptor
	observer Observer

	state atomic.Uint32
	mu    sync.Mutex
	done  chan struct{}

	factory func() (T, error)
	target  T
	err     error
}

// NewHolder returns an Uninitialized holder bound to factory.
func NewHolder[T any](factory func() (T, error), opts ...HolderOption) *Holder[T] {
	var cfg holderConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if factory == nil {
		factory = func() (T, error) {
			var zero T
			return zero, ErrNilFactory
		}
	}
	desc := cfg.descriptor
	if desc.IsZero() {
		desc = describe(reflect.TypeFor[T]())
	}
	return &Holder[T]{
		id:       uuid.New(),
		desc:     desc,
		observer: cfg.observer,
		done:     make(chan struct{}),
		factory:  factory,
	}
}

// ID returns the holder's unique identifier.
func (h *Holder[T]) ID() uuid.UUID { return h.id }

// Descriptor returns the descriptor of the proxied shape.
func (h *Holder[T]) Descriptor() Descriptor { return h.desc }

// State returns the current state without blocking.
func (h *Holder[T]) State() State { return State(h.state.Load()) }

// Done returns a channel closed once the holder reaches Ready or Failed.
func (h *Holder[T]) Done() <-chan struct{} { return h.done }

// Get returns the target, materializing it on first use.
func (h *Holder[T]) Get() (T, error) {
	switch State(h.state.Load()) {
	case Ready:
		return h.target, nil
	case Failed:
		var zero T
		return zero, h.err
	}
	return h.materialize()
}

// Materialize is the untyped form of Get.
func (h *Holder[T]) Materialize() (any, error) {
	t, err := h.Get()
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Peek returns the target only when the holder is Ready. It never runs the factory.
func (h *Holder[T]) Peek() (T, bool) {
	if State(h.state.Load()) == Ready {
		return h.target, true
	}
	var zero T
	return zero, false
}

func (h *Holder[T]) materialize() (T, error) {
	h.mu.Lock()
	switch State(h.state.Load()) {
	case Ready, Failed:
		h.mu.Unlock()
		return h.result()
	case Materializing:
		h.mu.Unlock()
		<-h.done
		return h.result()
	}
	h.state.Store(uint32(Materializing))
	factory := h.factory
	h.mu.Unlock()

	return h.run(factory)
}

// run executes the factory on the calling goroutine. Panics are recorded and
// re-raised; runtime.Goexit is recorded as ErrAborted so waiters are released.
func (h *Holder[T]) run(factory func() (T, error)) (T, error) {
	start := time.Now()
	completed := false
	defer func() {
		if completed {
			return
		}
		r := recover()
		if r == nil {
			h.finish(*new(T), ErrAborted, start)
			return
		}
		h.finish(*new(T), &PanicError{Value: r, Stack: debug.Stack()}, start)
		panic(r)
	}()

	target, err := factory()
	completed = true
	h.finish(target, err, start)
	if err != nil {
		var zero T
		return zero, err
	}
	return target, nil
}

func (h *Holder[T]) finish(target T, err error, start time.Time) {
	h.mu.Lock()
	if err != nil {
		h.err = err
		h.state.Store(uint32(Failed))
	} else {
		// target must be visible before Ready is published.
		h.target = target
		h.state.Store(uint32(Ready))
	}
	h.factory = nil
	close(h.done)
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.Materialized(Event{
			Descriptor: h.desc,
			HolderID:   h.id,
			Duration:   time.Since(start),
			Err:        err,
		})
	}
}

func (h *Holder[T]) result() (T, error) {
	if State(h.state.Load()) == Ready {
		return h.target, nil
	}
	var zero T
	return zero, h.err
}
