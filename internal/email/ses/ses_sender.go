package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"billvox/internal/domain"
	"billvox/internal/port"
	"billvox/internal/pricing"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendInvoiceSummary(ctx context.Context, toEmail, toName string, invoice *domain.Invoice, totals *pricing.OrderTotals) error {
	subject := fmt.Sprintf("Invoice %s from %s", invoice.InvoiceNumber, s.fromName)
	htmlBody := buildInvoiceSummaryHTML(toName, invoice, totals)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nThank you for your purchase. Here is your invoice summary:\n\nInvoice: %s\nSubtotal: %s\nTax: %s\nGrand total: %s\nPayment: %s\n\n%s",
		toName,
		invoice.InvoiceNumber,
		totals.Subtotal.StringFixed(2),
		totals.RowTax.Add(totals.TaxBreakdown.Sum()).StringFixed(2),
		totals.GrandTotal.StringFixed(2),
		invoice.PaymentMode,
		s.fromName,
	)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildInvoiceSummaryHTML(name string, invoice *domain.Invoice, totals *pricing.OrderTotals) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hi %s,</p>
  <p>Thank you for your purchase. Here is your invoice summary:</p>
  <table cellpadding="6" cellspacing="0" border="0">
    <tr><td><strong>Invoice</strong></td><td>%s</td></tr>
    <tr><td><strong>Subtotal</strong></td><td>&#8377;%s</td></tr>
    <tr><td><strong>Tax</strong></td><td>&#8377;%s</td></tr>
    <tr><td><strong>Grand total</strong></td><td>&#8377;%s</td></tr>
    <tr><td><strong>Payment</strong></td><td>%s</td></tr>
  </table>
  <p>Please keep this email for your records.</p>
</body>
</html>`,
		html.EscapeString(name),
		html.EscapeString(invoice.InvoiceNumber),
		totals.Subtotal.StringFixed(2),
		totals.RowTax.Add(totals.TaxBreakdown.Sum()).StringFixed(2),
		totals.GrandTotal.StringFixed(2),
		html.EscapeString(string(invoice.PaymentMode)),
	)
}
