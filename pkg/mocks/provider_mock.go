package mocks

import (
	"context"

	"github.com/dukex/flowgen/pkg/provider"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of provider.Provider interface.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Generate(ctx context.Context, prompt string, opts provider.Options) (string, error) {
	args := m.Called(ctx, prompt, opts)

	return args.String(0), args.Error(1)
}

func (m *MockProvider) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
