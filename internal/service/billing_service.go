package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"billvox/internal/config"
	"billvox/internal/domain"
	"billvox/internal/port"
	"billvox/internal/pricing"
)

// FinalizeInput is everything needed to turn a cart into a persisted invoice.
type FinalizeInput struct {
	BusinessID uuid.UUID
	UserID     uuid.UUID
	Lines      []domain.CartLine
	Settings   domain.OrderSettings
	Customer   *domain.Customer
}

// InvoicePayload is the full serialized snapshot stored with each invoice.
// Every field is populated before marshalling; the persistence layer never
// sees partial structures.
type InvoicePayload struct {
	CartLines      []domain.CartLine       `json:"cart_lines"`
	LineBreakdowns []pricing.LineBreakdown `json:"line_breakdowns"`
	Settings       domain.OrderSettings    `json:"settings"`
	Customer       *domain.Customer        `json:"customer,omitempty"`
	Totals         pricing.OrderTotals     `json:"totals"`
	PaymentSummary PaymentSummary          `json:"payment_summary"`
}

// PaymentSummary flattens the settlement terms for reporting.
type PaymentSummary struct {
	Mode          domain.PaymentMode  `json:"mode"`
	Split         domain.SplitPayment `json:"split,omitempty"`
	CreditDueDate string              `json:"credit_due_date,omitempty"`
	CreditDueDays int                 `json:"credit_due_days,omitempty"`
	AdvanceAmount float64             `json:"advance_amount,omitempty"`
}

// BillingService owns invoice finalization and retrieval.
type BillingService interface {
	Finalize(ctx context.Context, input FinalizeInput) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListInvoices(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	ArchiveLink(ctx context.Context, businessID, invoiceID uuid.UUID) (string, error)
}

type billingService struct {
	invoices  port.InvoiceRepository
	products  port.ProductRepository
	customers port.CustomerRepository
	email     port.EmailSender
	storage   port.ObjectStorage
	s3cfg     config.S3Config
}

// NewBillingService creates a new BillingService implementation. Email and
// storage are optional; a nil sender or store skips that side effect.
func NewBillingService(
	invoices port.InvoiceRepository,
	products port.ProductRepository,
	customers port.CustomerRepository,
	email port.EmailSender,
	storage port.ObjectStorage,
	s3cfg config.S3Config,
) BillingService {
	return &billingService{
		invoices:  invoices,
		products:  products,
		customers: customers,
		email:     email,
		storage:   storage,
		s3cfg:     s3cfg,
	}
}

// Finalize validates the cart, persists any staged draft customer, computes
// totals and writes the invoice. Validation failures block the save with a
// specific reason; side effects after the write (stock, archive, email) are
// best-effort and logged.
func (s *billingService) Finalize(ctx context.Context, input FinalizeInput) (*domain.Invoice, error) {
	if len(input.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if err := validatePayloadFields(input.Lines); err != nil {
		return nil, err
	}

	totals := pricing.ComputeTotals(input.Lines, input.Settings)
	grand, _ := totals.GrandTotal.Float64()

	if input.Settings.PaymentMode == domain.PaymentModeSplit {
		if math.Abs(input.Settings.SplitPayment.Total()-grand) > 0.009 {
			return nil, fmt.Errorf("split %.2f vs total %.2f: %w",
				input.Settings.SplitPayment.Total(), grand, domain.ErrSplitPaymentMismatch)
		}
	}

	customer := input.Customer
	if customer != nil && customer.IsDraft {
		customer.BusinessID = input.BusinessID
		if err := s.customers.Create(ctx, customer); err != nil {
			return nil, fmt.Errorf("billing.Finalize: persisting draft customer: %w", err)
		}
	}

	number, err := s.invoices.NextInvoiceNumber(ctx, input.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("billing.Finalize: %w", err)
	}

	breakdowns := make([]pricing.LineBreakdown, 0, len(input.Lines))
	for i := range input.Lines {
		breakdowns = append(breakdowns, pricing.ComputeLineBreakdown(&input.Lines[i]))
	}

	payload, err := json.Marshal(InvoicePayload{
		CartLines:      input.Lines,
		LineBreakdowns: breakdowns,
		Settings:       input.Settings,
		Customer:       customer,
		Totals:         totals,
		PaymentSummary: PaymentSummary{
			Mode:          input.Settings.PaymentMode,
			Split:         input.Settings.SplitPayment,
			CreditDueDate: input.Settings.CreditDueDate,
			CreditDueDays: input.Settings.CreditDueDays,
			AdvanceAmount: input.Settings.AdvanceAmount,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("billing.Finalize: marshal payload: %w", err)
	}

	subtotal, _ := totals.Subtotal.Float64()
	taxTotal, _ := totals.RowTax.Add(totals.TaxBreakdown.Sum()).Float64()

	invoice := &domain.Invoice{
		BusinessID:    input.BusinessID,
		InvoiceNumber: number,
		InvoiceType:   input.Settings.InvoiceType,
		PaymentMode:   input.Settings.PaymentMode,
		Subtotal:      subtotal,
		TaxTotal:      taxTotal,
		GrandTotal:    grand,
		Status:        domain.InvoiceStatusFinalized,
		Payload:       payload,
		CreatedBy:     input.UserID,
	}
	if customer != nil {
		invoice.CustomerName = customer.Name
		if customer.ID != uuid.Nil {
			id := customer.ID
			invoice.CustomerID = &id
		}
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("billing.Finalize: %w", err)
	}

	s.decrementStock(ctx, input.BusinessID, input.Lines)
	s.archivePayload(ctx, invoice)
	s.sendSummary(ctx, customer, invoice, &totals)

	return invoice, nil
}

// validatePayloadFields reports the first incomplete field by path instead of
// letting a partial snapshot reach persistence.
func validatePayloadFields(lines []domain.CartLine) error {
	for i, line := range lines {
		if line.Name == "" {
			return fmt.Errorf("cart_lines[%d].name: %w", i, domain.ErrMissingPayloadField)
		}
		if math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
			return fmt.Errorf("cart_lines[%d].quantity: %w", i, domain.ErrMissingPayloadField)
		}
		if math.IsNaN(line.Price) || math.IsInf(line.Price, 0) {
			return fmt.Errorf("cart_lines[%d].price: %w", i, domain.ErrMissingPayloadField)
		}
	}
	return nil
}

func (s *billingService) decrementStock(ctx context.Context, businessID uuid.UUID, lines []domain.CartLine) {
	for _, line := range lines {
		if line.ProductID == nil || line.Quantity <= 0 {
			continue
		}
		if err := s.products.AdjustStock(ctx, businessID, *line.ProductID, -line.Quantity); err != nil {
			log.Printf("service.Billing: adjust stock for %s: %v", line.Name, err)
		}
	}
}

// archiveKey is the object key under which an invoice payload is archived.
func archiveKey(invoice *domain.Invoice) string {
	return fmt.Sprintf("invoices/%s/%s.json", invoice.BusinessID, invoice.InvoiceNumber)
}

func (s *billingService) archivePayload(ctx context.Context, invoice *domain.Invoice) {
	if s.storage == nil || s.s3cfg.Bucket == "" {
		return
	}
	key := archiveKey(invoice)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(invoice.Payload),
		ContentType: "application/json",
		Size:        int64(len(invoice.Payload)),
	})
	if err != nil {
		log.Printf("service.Billing: archive %s: %v", invoice.InvoiceNumber, err)
	}
}

func (s *billingService) sendSummary(ctx context.Context, customer *domain.Customer, invoice *domain.Invoice, totals *pricing.OrderTotals) {
	if s.email == nil || customer == nil || customer.Email == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.email.SendInvoiceSummary(ctx, customer.Email, customer.Name, invoice, totals); err != nil {
		log.Printf("service.Billing: invoice email %s: %v", invoice.InvoiceNumber, err)
	}
}

func (s *billingService) GetInvoice(ctx context.Context, businessID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return s.invoices.GetByID(ctx, businessID, invoiceID)
}

func (s *billingService) ListInvoices(ctx context.Context, businessID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.invoices.ListByBusiness(ctx, businessID, offset, limit)
}

// ArchiveLink returns a time-limited download URL for the archived invoice
// payload. Reports not-found when archival is not configured.
func (s *billingService) ArchiveLink(ctx context.Context, businessID, invoiceID uuid.UUID) (string, error) {
	if s.storage == nil || s.s3cfg.Bucket == "" {
		return "", fmt.Errorf("billing.ArchiveLink: archival not configured: %w", domain.ErrNotFound)
	}
	invoice, err := s.invoices.GetByID(ctx, businessID, invoiceID)
	if err != nil {
		return "", fmt.Errorf("billing.ArchiveLink: %w", err)
	}
	url, err := s.storage.GetPresignedURL(ctx, s.s3cfg.Bucket, archiveKey(invoice), s.s3cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("billing.ArchiveLink: %w", err)
	}
	return url, nil
}
