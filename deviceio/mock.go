package deviceio

import (
	"github.com/stretchr/testify/mock"
)

// MockTracer is a testify mock implementation of Tracer for use in tests.
type MockTracer struct {
	mock.Mock
}

var _ Tracer = (*MockTracer)(nil)

func NewMockTracer() *MockTracer {
	return &MockTracer{}
}

func (m *MockTracer) Trace(text string) {
	m.Called(text)
}
