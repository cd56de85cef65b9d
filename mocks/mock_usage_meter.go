package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockUsageMeter is a mock implementation of port.UsageMeter.
type MockUsageMeter struct {
	mock.Mock
}

func (m *MockUsageMeter) CanProcess() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockUsageMeter) Record() {
	m.Called()
}

func (m *MockUsageMeter) Remaining() int {
	args := m.Called()
	return args.Int(0)
}
