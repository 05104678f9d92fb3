package di_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sghaida/lazyproxy/di"
)

// Clock is an eager service with no dependencies.
type Clock interface{ Now() int }

type fixedClock struct{ n int }

func (c *fixedClock) Now() int { return c.n }

func newClock() *fixedClock { return &fixedClock{n: 42} }

// Store depends on Clock.
type Store struct{ Clock Clock }

func NewStore(c Clock) *Store { return &Store{Clock: c} }

// Ping and Pong depend on each other.
type Ping interface{ Ping() }
type Pong interface{ Pong() }

type ping struct{ pong Pong }
type pong struct{ ping Ping }

func (*ping) Ping() {}
func (*pong) Pong() {}

func newPing(p Pong) *ping { return &ping{pong: p} }
func newPong(p Ping) *pong { return &pong{ping: p} }

// closer records Close calls in order.
type closer struct {
	name string
	log  *[]string
}

func (c *closer) Close() error {
	*c.log = append(*c.log, c.name)
	return nil
}

func build(t testing.TB, c *di.Collection, opts ...di.Option) *di.Provider {
	t.Helper()

	p, err := c.Build(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func typeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }
