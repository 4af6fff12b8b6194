package port

import (
	"context"

	"billvox/internal/domain"
	"billvox/internal/pricing"
)

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendInvoiceSummary(ctx context.Context, toEmail, toName string, invoice *domain.Invoice, totals *pricing.OrderTotals) error
}
