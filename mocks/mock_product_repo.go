package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"billvox/internal/domain"
)

// MockProductRepo is a mock implementation of port.ProductRepository.
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, product *domain.InventoryProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, businessID, productID uuid.UUID) (*domain.InventoryProduct, error) {
	args := m.Called(ctx, businessID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryProduct), args.Error(1)
}

func (m *MockProductRepo) GetBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*domain.InventoryProduct, error) {
	args := m.Called(ctx, businessID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InventoryProduct), args.Error(1)
}

func (m *MockProductRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.InventoryProduct, error) {
	args := m.Called(ctx, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InventoryProduct), args.Error(1)
}

func (m *MockProductRepo) Update(ctx context.Context, product *domain.InventoryProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepo) AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta float64) error {
	args := m.Called(ctx, businessID, productID, delta)
	return args.Error(0)
}

func (m *MockProductRepo) Delete(ctx context.Context, businessID, productID uuid.UUID) error {
	args := m.Called(ctx, businessID, productID)
	return args.Error(0)
}
