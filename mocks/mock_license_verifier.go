package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockLicenseVerifier is a mock implementation of port.LicenseVerifier.
type MockLicenseVerifier struct {
	mock.Mock
}

func (m *MockLicenseVerifier) Verify(ctx context.Context, licenseKey string) (int, error) {
	args := m.Called(ctx, licenseKey)
	return args.Int(0), args.Error(1)
}
