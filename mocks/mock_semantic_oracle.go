package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docfill/internal/port"
)

// MockSemanticOracle is a mock implementation of port.SemanticOracle.
type MockSemanticOracle struct {
	mock.Mock
}

func (m *MockSemanticOracle) Disambiguate(ctx context.Context, req port.OracleRequest) ([]port.OracleField, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.OracleField), args.Error(1)
}

func (m *MockSemanticOracle) Name() string {
	args := m.Called()
	return args.String(0)
}
