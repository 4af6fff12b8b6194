package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billvox/internal/domain"
	"billvox/internal/port"
)

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerRepository.
func NewCustomerRepo(db *sqlx.DB) port.CustomerRepository {
	return &customerRepo{db: db}
}

// searchNeedle precomputes the lowercase haystack fuzzy lookup runs against.
func searchNeedle(c *domain.Customer) string {
	return strings.ToLower(strings.TrimSpace(c.Name + " " + c.Phone + " " + c.Email))
}

func (r *customerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	customer.SearchNeedle = searchNeedle(customer)
	customer.IsDraft = false

	query := `INSERT INTO customers (id, business_id, name, phone, email, address, search_needle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query,
		customer.ID, customer.BusinessID, customer.Name, customer.Phone, customer.Email,
		customer.Address, customer.SearchNeedle, customer.CreatedAt, customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customerRepo.Create: %w", err)
	}
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, businessID, customerID uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer,
		"SELECT * FROM customers WHERE id = $1 AND business_id = $2", customerID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("customerRepo.GetByID: %w", err)
	}
	return &customer, nil
}

// FindByPhone compares on the last ten digits so +91 and 0 prefixes do not
// matter.
func (r *customerRepo) FindByPhone(ctx context.Context, businessID uuid.UUID, phoneLast10 string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer,
		`SELECT * FROM customers
		WHERE business_id = $1 AND right(regexp_replace(phone, '\D', '', 'g'), 10) = $2
		LIMIT 1`,
		businessID, phoneLast10)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("customerRepo.FindByPhone: %w", err)
	}
	return &customer, nil
}

func (r *customerRepo) FindByEmail(ctx context.Context, businessID uuid.UUID, email string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer,
		"SELECT * FROM customers WHERE business_id = $1 AND lower(email) = lower($2) LIMIT 1",
		businessID, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("customerRepo.FindByEmail: %w", err)
	}
	return &customer, nil
}

func (r *customerRepo) FindByName(ctx context.Context, businessID uuid.UUID, name string) ([]domain.Customer, error) {
	var customers []domain.Customer
	err := r.db.SelectContext(ctx, &customers,
		"SELECT * FROM customers WHERE business_id = $1 AND lower(name) = lower($2)",
		businessID, name)
	if err != nil {
		return nil, fmt.Errorf("customerRepo.FindByName: %w", err)
	}
	return customers, nil
}

func (r *customerRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Customer, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM customers WHERE business_id = $1", businessID)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.ListByBusiness count: %w", err)
	}

	var customers []domain.Customer
	err = r.db.SelectContext(ctx, &customers,
		"SELECT * FROM customers WHERE business_id = $1 ORDER BY name LIMIT $2 OFFSET $3",
		businessID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.ListByBusiness: %w", err)
	}
	return customers, total, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	customer.SearchNeedle = searchNeedle(customer)
	query := `UPDATE customers SET name = $1, phone = $2, email = $3, address = $4, search_needle = $5, updated_at = $6
		WHERE id = $7 AND business_id = $8`
	result, err := r.db.ExecContext(ctx, query,
		customer.Name, customer.Phone, customer.Email, customer.Address,
		customer.SearchNeedle, customer.UpdatedAt, customer.ID, customer.BusinessID)
	if err != nil {
		return fmt.Errorf("customerRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, businessID, customerID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM customers WHERE id = $1 AND business_id = $2", customerID, businessID)
	if err != nil {
		return fmt.Errorf("customerRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
