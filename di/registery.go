package di

import (
	"reflect"
	"sync"
)

// registry stores the instances a scope has built, keyed by service type.
//
// Each service type has its own cell so unrelated services can be built
// concurrently while two goroutines asking for the same service share a single
// build. A failed build leaves the cell empty and the next resolution retries.
type registry struct {
	mu    sync.Mutex
	cells map[reflect.Type]*cell
}

type cell struct {
	mu    sync.Mutex
	built bool
	val   any
}

func newRegistry() *registry {
	return &registry{cells: map[reflect.Type]*cell{}}
}

func (r *registry) cell(t reflect.Type) *cell {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cells[t]
	if !ok {
		c = &cell{}
		r.cells[t] = c
	}
	return c
}

// getOrBuild returns the stored instance for t, calling build at most once per
// successful build.
func (r *registry) getOrBuild(t reflect.Type, build func() (any, error)) (any, error) {
	c := r.cell(t)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built {
		return c.val, nil
	}
	v, err := build()
	if err != nil {
		return nil, err
	}
	c.val, c.built = v, true
	return v, nil
}

// Get returns the stored instance without building it.
func (r *registry) Get(t reflect.Type) (any, bool) {
	r.mu.Lock()
	c, ok := r.cells[t]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val, c.built
}

// Len returns the number of built instances.
func (r *registry) Len() int {
	r.mu.Lock()
	cells := make([]*cell, 0, len(r.cells))
	for _, c := range r.cells {
		cells = append(cells, c)
	}
	r.mu.Unlock()

	n := 0
	for _, c := range cells {
		c.mu.Lock()
		if c.built {
			n++
		}
		c.mu.Unlock()
	}
	return n
}
