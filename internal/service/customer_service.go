package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"billvox/internal/domain"
	"billvox/internal/port"
)

// CustomerService manages the customer book.
type CustomerService interface {
	CreateCustomer(ctx context.Context, customer *domain.Customer) error
	GetCustomer(ctx context.Context, businessID, customerID uuid.UUID) (*domain.Customer, error)
	ListCustomers(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Customer, int, error)
	LookupCustomer(ctx context.Context, businessID uuid.UUID, query string) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customer *domain.Customer) error
	DeleteCustomer(ctx context.Context, businessID, customerID uuid.UUID) error
}

type customerService struct {
	customers port.CustomerRepository
}

// NewCustomerService creates a new CustomerService implementation.
func NewCustomerService(customers port.CustomerRepository) CustomerService {
	return &customerService{customers: customers}
}

func (s *customerService) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	customer.Name = strings.TrimSpace(customer.Name)
	if customer.Name == "" {
		customer.Name = "Walk-in"
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return fmt.Errorf("customer.CreateCustomer: %w", err)
	}
	return nil
}

func (s *customerService) GetCustomer(ctx context.Context, businessID, customerID uuid.UUID) (*domain.Customer, error) {
	return s.customers.GetByID(ctx, businessID, customerID)
}

func (s *customerService) ListCustomers(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Customer, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.customers.ListByBusiness(ctx, businessID, offset, limit)
}

// LookupCustomer resolves a free-form query through the same precedence the
// voice session uses: phone digits first, then email, then exact name.
func (s *customerService) LookupCustomer(ctx context.Context, businessID uuid.UUID, query string) (*domain.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrNotFound
	}

	if digits := digitsOnly(query); len(digits) >= 10 {
		if c, err := s.customers.FindByPhone(ctx, businessID, digits[len(digits)-10:]); err == nil {
			return c, nil
		}
	}
	if strings.Contains(query, "@") {
		if c, err := s.customers.FindByEmail(ctx, businessID, strings.ToLower(query)); err == nil {
			return c, nil
		}
	}
	matches, err := s.customers.FindByName(ctx, businessID, query)
	if err != nil {
		return nil, fmt.Errorf("customer.LookupCustomer: %w", err)
	}
	if len(matches) == 1 {
		return &matches[0], nil
	}
	return nil, domain.ErrNotFound
}

func (s *customerService) UpdateCustomer(ctx context.Context, customer *domain.Customer) error {
	if err := s.customers.Update(ctx, customer); err != nil {
		return fmt.Errorf("customer.UpdateCustomer: %w", err)
	}
	return nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, businessID, customerID uuid.UUID) error {
	return s.customers.Delete(ctx, businessID, customerID)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
