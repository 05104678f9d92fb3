package fixtures

import (
	"sync"

	"github.com/google/uuid"
)

const (
	Service1PropertyValue = "Service1PropertyValue"
	Service1MethodValue   = "Service1MethodValue"
	Service2MethodValue   = "Service2MethodValue"
)

// Service1 depends on Service2.
type Service1 interface {
	Property() string
	SetProperty(v string)
	// Method returns Service1MethodValue, then dependent(service2) when
	// dependent is non-nil, then arg.
	Method(dependent func(Service2) string, arg string) string
}

// Service2 has no dependencies.
type Service2 interface {
	Method(arg string) string
}

// Markers records construction side effects. Each constructor stamps a fresh id.
type Markers struct {
	mu       sync.Mutex
	service1 uuid.UUID
	service2 uuid.UUID
	builds1  int
	builds2  int
}

// Service1ID returns the id stamped by the last Service1 construction.
func (m *Markers) Service1ID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.service1
}

// Service2ID returns the id stamped by the last Service2 construction.
func (m *Markers) Service2ID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.service2
}

// Builds returns how many times each service was constructed.
func (m *Markers) Builds() (service1, service2 int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds1, m.builds2
}

// NewService1 is the implementation constructor of Service1.
func (m *Markers) NewService1(other Service2) *Service1Impl {
	m.mu.Lock()
	m.service1 = uuid.New()
	m.builds1++
	m.mu.Unlock()
	return &Service1Impl{other: other, property: Service1PropertyValue}
}

// NewService2 is the implementation constructor of Service2.
func (m *Markers) NewService2() *Service2Impl {
	m.mu.Lock()
	m.service2 = uuid.New()
	m.builds2++
	m.mu.Unlock()
	return &Service2Impl{}
}

type Service1Impl struct {
	other Service2

	mu       sync.Mutex
	property string
}

func (s *Service1Impl) Property() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.property
}

func (s *Service1Impl) SetProperty(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.property = v
}

func (s *Service1Impl) Method(dependent func(Service2) string, arg string) string {
	out := Service1MethodValue
	if dependent != nil {
		out += dependent(s.other)
	}
	return out + arg
}

type Service2Impl struct{}

func (*Service2Impl) Method(arg string) string { return Service2MethodValue + arg }
