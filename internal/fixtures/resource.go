package fixtures

import (
	"errors"
	"sync"
)

var ErrEmptyKey = errors.New("fixtures: empty key")

// Resource owns something that must be released.
type Resource interface {
	Name() string
	Fetch(key string) (string, error)
	Close() error
}

// Journal records resource events in order.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *Journal) add(e string) {
	j.mu.Lock()
	j.entries = append(j.entries, e)
	j.mu.Unlock()
}

// Entries returns a copy of the recorded events.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// NewResource returns a constructor for a resource called name.
func (j *Journal) NewResource(name string) func() *ResourceImpl {
	return func() *ResourceImpl {
		j.add("open:" + name)
		return &ResourceImpl{name: name, journal: j}
	}
}

type ResourceImpl struct {
	name    string
	journal *Journal
}

func (r *ResourceImpl) Name() string { return r.name }

func (r *ResourceImpl) Fetch(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	return r.name + "/" + key, nil
}

func (r *ResourceImpl) Close() error {
	r.journal.add("close:" + r.name)
	return nil
}
