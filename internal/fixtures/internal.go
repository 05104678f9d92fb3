package fixtures

const InternalServiceMethodValue = "InternalServiceMethodValue"

// internalService is not visible outside this package. Its proxy is generated
// into this package under allowUnexported.
type internalService interface {
	Method(arg string) string
	// reset is unexported; only same-package code can call it.
	reset()
}

type internalServiceImpl struct{ calls int }

func newInternalService() *internalServiceImpl { return &internalServiceImpl{} }

func (s *internalServiceImpl) Method(arg string) string {
	s.calls++
	return InternalServiceMethodValue + arg
}

func (s *internalServiceImpl) reset() { s.calls = 0 }
