package noop

import (
	"context"
	"log"

	"billvox/internal/domain"
	"billvox/internal/port"
	"billvox/internal/pricing"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs summaries to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendInvoiceSummary(_ context.Context, toEmail, toName string, invoice *domain.Invoice, totals *pricing.OrderTotals) error {
	log.Printf("[NOOP EMAIL] Invoice %s summary for %s (%s): total %s",
		invoice.InvoiceNumber, toName, toEmail, totals.GrandTotal.StringFixed(2))
	return nil
}
