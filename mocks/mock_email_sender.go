package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"billvox/internal/domain"
	"billvox/internal/pricing"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendInvoiceSummary(ctx context.Context, toEmail, toName string, invoice *domain.Invoice, totals *pricing.OrderTotals) error {
	args := m.Called(ctx, toEmail, toName, invoice, totals)
	return args.Error(0)
}
