package port

import (
	"context"

	"github.com/google/uuid"

	"billvox/internal/domain"
)

// BusinessRepository defines the contract for business persistence.
type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Business, error)
	Update(ctx context.Context, business *domain.Business) error
}

// UserRepository defines the contract for user persistence.
// All query methods include businessID to enforce business isolation at the
// data layer.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, businessID, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
}

// ProductRepository defines the contract for catalog persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.InventoryProduct) error
	GetByID(ctx context.Context, businessID, productID uuid.UUID) (*domain.InventoryProduct, error)
	GetBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*domain.InventoryProduct, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.InventoryProduct, error)
	Update(ctx context.Context, product *domain.InventoryProduct) error
	AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta float64) error
	Delete(ctx context.Context, businessID, productID uuid.UUID) error
}

// CustomerRepository defines the contract for customer persistence and the
// lookup paths the voice session resolves customers through.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, businessID, customerID uuid.UUID) (*domain.Customer, error)
	FindByPhone(ctx context.Context, businessID uuid.UUID, phoneLast10 string) (*domain.Customer, error)
	FindByEmail(ctx context.Context, businessID uuid.UUID, email string) (*domain.Customer, error)
	FindByName(ctx context.Context, businessID uuid.UUID, name string) ([]domain.Customer, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Customer, int, error)
	Update(ctx context.Context, customer *domain.Customer) error
	Delete(ctx context.Context, businessID, customerID uuid.UUID) error
}

// InvoiceRepository defines the contract for finalized invoice persistence.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	NextInvoiceNumber(ctx context.Context, businessID uuid.UUID) (string, error)
}
