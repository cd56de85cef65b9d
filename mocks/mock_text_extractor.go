package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockTextExtractor is a mock implementation of port.TextExtractor.
type MockTextExtractor struct {
	mock.Mock
}

func (m *MockTextExtractor) Extract(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}
