package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billvox/internal/config"
	"billvox/internal/domain"
	"billvox/internal/port"
	"billvox/internal/service"
	"billvox/mocks"
)

func billableLine(name string, qty, price, gstRate float64) domain.CartLine {
	return domain.CartLine{
		CartLineID:  uuid.New(),
		Name:        name,
		Quantity:    qty,
		Price:       price,
		PricingMode: domain.PricingModeSellingSimple,
		GSTRate:     gstRate,
	}
}

func TestBillingService_Finalize_EmptyCart(t *testing.T) {
	svc := service.NewBillingService(new(mocks.MockInvoiceRepo), new(mocks.MockProductRepo),
		new(mocks.MockCustomerRepo), nil, nil, config.S3Config{})

	_, err := svc.Finalize(context.Background(), service.FinalizeInput{
		BusinessID: uuid.New(),
		Settings:   domain.DefaultOrderSettings(),
	})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestBillingService_Finalize_MissingLineName(t *testing.T) {
	svc := service.NewBillingService(new(mocks.MockInvoiceRepo), new(mocks.MockProductRepo),
		new(mocks.MockCustomerRepo), nil, nil, config.S3Config{})

	lines := []domain.CartLine{billableLine("", 1, 50, 0)}
	_, err := svc.Finalize(context.Background(), service.FinalizeInput{
		BusinessID: uuid.New(),
		Lines:      lines,
		Settings:   domain.DefaultOrderSettings(),
	})
	require.ErrorIs(t, err, domain.ErrMissingPayloadField)
	assert.Contains(t, err.Error(), "cart_lines[0].name")
}

func TestBillingService_Finalize_SplitMismatch(t *testing.T) {
	svc := service.NewBillingService(new(mocks.MockInvoiceRepo), new(mocks.MockProductRepo),
		new(mocks.MockCustomerRepo), nil, nil, config.S3Config{})

	settings := domain.DefaultOrderSettings()
	settings.PaymentMode = domain.PaymentModeSplit
	settings.SplitPayment = domain.SplitPayment{Cash: 100, UPI: 50}

	// Grand total is 236; the split sums to 150.
	lines := []domain.CartLine{billableLine("Basmati Rice 1kg", 2, 100, 18)}
	_, err := svc.Finalize(context.Background(), service.FinalizeInput{
		BusinessID: uuid.New(),
		Lines:      lines,
		Settings:   settings,
	})
	assert.ErrorIs(t, err, domain.ErrSplitPaymentMismatch)
}

func TestBillingService_Finalize_HappyPath(t *testing.T) {
	businessID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()

	invoices := new(mocks.MockInvoiceRepo)
	products := new(mocks.MockProductRepo)
	customers := new(mocks.MockCustomerRepo)

	invoices.On("NextInvoiceNumber", mock.Anything, businessID).Return("INV-00042", nil)
	invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	products.On("AdjustStock", mock.Anything, businessID, productID, -2.0).Return(nil)

	svc := service.NewBillingService(invoices, products, customers, nil, nil, config.S3Config{})

	line := billableLine("Basmati Rice 1kg", 2, 100, 18)
	line.ProductID = &productID

	invoice, err := svc.Finalize(context.Background(), service.FinalizeInput{
		BusinessID: businessID,
		UserID:     userID,
		Lines:      []domain.CartLine{line},
		Settings:   domain.DefaultOrderSettings(),
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-00042", invoice.InvoiceNumber)
	assert.Equal(t, domain.InvoiceStatusFinalized, invoice.Status)
	assert.InDelta(t, 200.0, invoice.Subtotal, 0.001)
	assert.InDelta(t, 36.0, invoice.TaxTotal, 0.001)
	assert.InDelta(t, 236.0, invoice.GrandTotal, 0.001)
	assert.NotEmpty(t, invoice.Payload)

	invoices.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestBillingService_Finalize_PersistsDraftCustomer(t *testing.T) {
	businessID := uuid.New()

	invoices := new(mocks.MockInvoiceRepo)
	customers := new(mocks.MockCustomerRepo)

	invoices.On("NextInvoiceNumber", mock.Anything, businessID).Return("INV-00001", nil)
	invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	customers.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.Name == "Ramesh" && c.BusinessID == businessID
	})).Return(nil)

	svc := service.NewBillingService(invoices, new(mocks.MockProductRepo), customers, nil, nil, config.S3Config{})

	draft := &domain.Customer{Name: "Ramesh", Phone: "9876543210", IsDraft: true}
	invoice, err := svc.Finalize(context.Background(), service.FinalizeInput{
		BusinessID: businessID,
		Lines:      []domain.CartLine{billableLine("Sugar 1kg", 1, 45, 0)},
		Settings:   domain.DefaultOrderSettings(),
		Customer:   draft,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ramesh", invoice.CustomerName)
	customers.AssertExpectations(t)
}

func TestBillingService_Finalize_EmailSentWhenAddressOnFile(t *testing.T) {
	businessID := uuid.New()

	invoices := new(mocks.MockInvoiceRepo)
	email := new(mocks.MockEmailSender)

	invoices.On("NextInvoiceNumber", mock.Anything, businessID).Return("INV-00007", nil)
	invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	email.On("SendInvoiceSummary", mock.Anything, "ramesh@example.com", "Ramesh",
		mock.AnythingOfType("*domain.Invoice"), mock.Anything).Return(nil)

	svc := service.NewBillingService(invoices, new(mocks.MockProductRepo), new(mocks.MockCustomerRepo),
		email, nil, config.S3Config{})

	customer := &domain.Customer{ID: uuid.New(), Name: "Ramesh", Email: "ramesh@example.com"}
	_, err := svc.Finalize(context.Background(), service.FinalizeInput{
		BusinessID: businessID,
		Lines:      []domain.CartLine{billableLine("Sugar 1kg", 1, 45, 0)},
		Settings:   domain.DefaultOrderSettings(),
		Customer:   customer,
	})
	require.NoError(t, err)
	email.AssertExpectations(t)
}

func TestBillingService_Finalize_ArchivesPayload(t *testing.T) {
	businessID := uuid.New()

	invoices := new(mocks.MockInvoiceRepo)
	storage := new(mocks.MockObjectStorage)

	invoices.On("NextInvoiceNumber", mock.Anything, businessID).Return("INV-00008", nil)
	invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "billvox-archive" && in.ContentType == "application/json"
	})).Return(&port.UploadOutput{Location: "s3://billvox-archive/x"}, nil)

	svc := service.NewBillingService(invoices, new(mocks.MockProductRepo), new(mocks.MockCustomerRepo),
		nil, storage, config.S3Config{Bucket: "billvox-archive"})

	_, err := svc.Finalize(context.Background(), service.FinalizeInput{
		BusinessID: businessID,
		Lines:      []domain.CartLine{billableLine("Sugar 1kg", 1, 45, 0)},
		Settings:   domain.DefaultOrderSettings(),
	})
	require.NoError(t, err)
	storage.AssertExpectations(t)
}

func TestBillingService_ListInvoices_ClampsLimit(t *testing.T) {
	businessID := uuid.New()
	invoices := new(mocks.MockInvoiceRepo)
	invoices.On("ListByBusiness", mock.Anything, businessID, 0, 50).
		Return([]domain.Invoice{}, 0, nil)

	svc := service.NewBillingService(invoices, new(mocks.MockProductRepo), new(mocks.MockCustomerRepo),
		nil, nil, config.S3Config{})

	_, _, err := svc.ListInvoices(context.Background(), businessID, 0, 0)
	require.NoError(t, err)
	invoices.AssertExpectations(t)
}
