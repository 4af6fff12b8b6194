package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billvox/internal/domain"
	"billvox/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	query := `INSERT INTO invoices (id, business_id, invoice_number, invoice_type, customer_id, customer_name,
		payment_mode, subtotal, tax_total, grand_total, status, payload, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.ExecContext(ctx, query,
		invoice.ID, invoice.BusinessID, invoice.InvoiceNumber, invoice.InvoiceType,
		invoice.CustomerID, invoice.CustomerName, invoice.PaymentMode,
		invoice.Subtotal, invoice.TaxTotal, invoice.GrandTotal, invoice.Status,
		invoice.Payload, invoice.CreatedBy, invoice.CreatedAt, invoice.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice,
		"SELECT * FROM invoices WHERE id = $1 AND business_id = $2", invoiceID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM invoices WHERE business_id = $1", businessID)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListByBusiness count: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices WHERE business_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		businessID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListByBusiness: %w", err)
	}
	return invoices, total, nil
}

// NextInvoiceNumber allocates the next sequential number for the business via
// an upsert on the counter row, safe under concurrent finalizes.
func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, businessID uuid.UUID) (string, error) {
	var n int64
	err := r.db.GetContext(ctx, &n,
		`INSERT INTO invoice_counters (business_id, last_number) VALUES ($1, 1)
		ON CONFLICT (business_id) DO UPDATE SET last_number = invoice_counters.last_number + 1
		RETURNING last_number`,
		businessID)
	if err != nil {
		return "", fmt.Errorf("invoiceRepo.NextInvoiceNumber: %w", err)
	}
	return fmt.Sprintf("INV-%05d", n), nil
}
