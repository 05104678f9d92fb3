package proxy

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
)

// Cache memoizes one Dispatcher per Descriptor.
//
// Concurrent misses may generate redundant dispatchers; only the first one
// published is ever returned. Failed generations are not cached, so a later
// call (for example after the generated package has been linked in) retries.
type Cache struct {
	entries sync.Map // Descriptor -> *Dispatcher
	size    atomic.Int64
	hook    atomic.Pointer[func(*Dispatcher)]

	generate func(reflect.Type) (*Dispatcher, error)
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{generate: Generate}
}

// Default is the process-wide cache used by the di package and proxy.New.
var Default = NewCache()

// OnGenerate installs a hook called once for every dispatcher this cache
// publishes. Passing nil removes it.
func (c *Cache) OnGenerate(fn func(*Dispatcher)) {
	if fn == nil {
		c.hook.Store(nil)
		return
	}
	c.hook.Store(&fn)
}

// GetOrCreate returns the dispatcher for interface t, generating it on first use.
func (c *Cache) GetOrCreate(t reflect.Type) (*Dispatcher, error) {
	desc, err := DescriptorOf(t)
	if err != nil {
		return nil, err
	}
	if v, ok := c.entries.Load(desc); ok {
		return c.checked(v.(*Dispatcher), t)
	}

	d, err := c.generate(t)
	if err != nil {
		return nil, err
	}
	v, loaded := c.entries.LoadOrStore(desc, d)
	if loaded {
		return c.checked(v.(*Dispatcher), t)
	}

	c.size.Add(1)
	logger().Debug("proxy dispatcher generated",
		"interface", desc.String(),
		"members", len(d.members),
	)
	if fn := c.hook.Load(); fn != nil {
		(*fn)(d)
	}
	return d, nil
}

// checked guards against distinct types that render to the same descriptor.
func (c *Cache) checked(d *Dispatcher, t reflect.Type) (*Dispatcher, error) {
	if d.typ != t {
		return nil, fmt.Errorf("%w: %s is bound to %v, requested %v", ErrDescriptorConflict, d.desc, d.typ, t)
	}
	return d, nil
}

// Lookup returns a published dispatcher without generating one.
func (c *Cache) Lookup(desc Descriptor) (*Dispatcher, bool) {
	v, ok := c.entries.Load(desc)
	if !ok {
		return nil, false
	}
	return v.(*Dispatcher), true
}

// Len returns the number of published dispatchers.
func (c *Cache) Len() int { return int(c.size.Load()) }

// Descriptors returns a snapshot of the cached descriptors sorted by String().
func (c *Cache) Descriptors() []Descriptor {
	var out []Descriptor
	c.entries.Range(func(k, _ any) bool {
		out = append(out, k.(Descriptor))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Reset drops every entry. It exists for tests; dispatchers already handed out
// stay valid.
func (c *Cache) Reset() {
	c.entries.Range(func(k, _ any) bool {
		c.entries.Delete(k)
		return true
	})
	c.size.Store(0)
}
