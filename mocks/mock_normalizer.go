package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"freightsnap/internal/domain"
)

// MockNormalizer is a mock implementation of port.Normalizer.
type MockNormalizer struct {
	mock.Mock
}

func (m *MockNormalizer) Normalize(ctx context.Context, documentText, sourceName string) (*domain.ExtractedDocument, error) {
	args := m.Called(ctx, documentText, sourceName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedDocument), args.Error(1)
}
