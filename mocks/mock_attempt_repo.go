package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"docfill/internal/domain"
)

// MockAttemptRepo is a mock implementation of port.AttemptRepository.
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) Upsert(ctx context.Context, sessionID uuid.UUID, attempt *domain.ValidationAttempt) error {
	args := m.Called(ctx, sessionID, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepo) Get(ctx context.Context, sessionID uuid.UUID, fieldID string) (*domain.ValidationAttempt, error) {
	args := m.Called(ctx, sessionID, fieldID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationAttempt), args.Error(1)
}

func (m *MockAttemptRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.ValidationAttempt, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValidationAttempt), args.Error(1)
}

func (m *MockAttemptRepo) DeleteBySession(ctx context.Context, sessionID uuid.UUID) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
