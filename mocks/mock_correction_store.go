package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billvox/internal/domain"
)

// MockCorrectionStore is a mock implementation of port.CorrectionStore.
type MockCorrectionStore struct {
	mock.Mock
}

func (m *MockCorrectionStore) List(ctx context.Context, businessID uuid.UUID) ([]domain.MatchCorrection, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MatchCorrection), args.Error(1)
}

func (m *MockCorrectionStore) Append(ctx context.Context, businessID uuid.UUID, correction domain.MatchCorrection) error {
	args := m.Called(ctx, businessID, correction)
	return args.Error(0)
}
