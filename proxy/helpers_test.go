package proxy_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sghaida/lazyproxy/proxy"
)

// Counter mixes every member shape the dispatcher distinguishes.
type Counter interface {
	Add(n int) int
	Value() int
	SetValue(v int)
	Label() string
	Sum(base int, xs ...int) int
	Load(key string) (string, error)
	Describe(t reflect.Type, v any) string
}

// Box is registered only for Box[int].
type Box[T any] interface {
	Get() T
}

// Unregistered has no generated proxy.
type Unregistered interface {
	Ping()
}

// Secretive carries an unexported member.
type Secretive interface {
	Open() string
	seal() string
}

var errMissing = errors.New("missing key")

type counter struct {
	mu    sync.Mutex
	n     int
	label string
}

func (c *counter) Add(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n += n
	return c.n
}

func (c *counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func (c *counter) SetValue(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = v
}

func (c *counter) Label() string { return c.label }

func (c *counter) Sum(base int, xs ...int) int {
	for _, x := range xs {
		base += x
	}
	return base
}

func (c *counter) Load(key string) (string, error) {
	if key == "" {
		return "", errMissing
	}
	return strings.ToUpper(key), nil
}

func (c *counter) Describe(t reflect.Type, v any) string {
	return fmt.Sprintf("%s:%T", t, v)
}

// counterLazy has the shape lazygen emits.
type counterLazy struct {
	holder *proxy.Holder[Counter]
}

func newCounterLazy(h *proxy.Holder[Counter]) Counter { return &counterLazy{holder: h} }

func (x *counterLazy) LazyHolder() proxy.Materializer { return x.holder }

func (x *counterLazy) Add(n int) int { return proxy.MustTarget(x.holder).Add(n) }

func (x *counterLazy) Value() int { return proxy.MustTarget(x.holder).Value() }

func (x *counterLazy) SetValue(v int) { proxy.MustTarget(x.holder).SetValue(v) }

func (x *counterLazy) Label() string { return proxy.MustTarget(x.holder).Label() }

func (x *counterLazy) Sum(base int, xs ...int) int {
	return proxy.MustTarget(x.holder).Sum(base, xs...)
}

func (x *counterLazy) Load(key string) (string, error) {
	target, err := x.holder.Get()
	if err != nil {
		var r0 string
		return r0, err
	}
	return target.Load(key)
}

func (x *counterLazy) Describe(t reflect.Type, v any) string {
	return proxy.MustTarget(x.holder).Describe(t, v)
}

type intBox struct{ v int }

func (b intBox) Get() int { return b.v }

type boxLazy[T any] struct {
	holder *proxy.Holder[Box[T]]
}

func newBoxLazy[T any](h *proxy.Holder[Box[T]]) Box[T] { return &boxLazy[T]{holder: h} }

func (x *boxLazy[T]) LazyHolder() proxy.Materializer { return x.holder }

func (x *boxLazy[T]) Get() T { return proxy.MustTarget(x.holder).Get() }

type secretive struct{}

func (secretive) Open() string { return "open" }
func (secretive) seal() string { return "sealed" }

type secretiveLazy struct {
	holder *proxy.Holder[Secretive]
}

func newSecretiveLazy(h *proxy.Holder[Secretive]) Secretive { return &secretiveLazy{holder: h} }

func (x *secretiveLazy) LazyHolder() proxy.Materializer { return x.holder }
func (x *secretiveLazy) Open() string                   { return proxy.MustTarget(x.holder).Open() }
func (x *secretiveLazy) seal() string                   { return proxy.MustTarget(x.holder).seal() }

func init() {
	proxy.Register(newCounterLazy)
	proxy.Register(newBoxLazy[int])
	proxy.Register(newSecretiveLazy)
}

// countingFactory returns a Counter factory and the number of times it ran.
func countingFactory(label string) (func() (Counter, error), *atomic.Int32) {
	var calls atomic.Int32
	return func() (Counter, error) {
		calls.Add(1)
		return &counter{label: label}, nil
	}, &calls
}

func typeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }
