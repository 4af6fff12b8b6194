package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitPriceSnapshot is the canonical per-unit price breakdown computed from a
// product's raw pricing fields. Immutable once computed; gross = net + tax to
// two decimals.
type UnitPriceSnapshot struct {
	UnitPriceNet        decimal.Decimal `json:"unit_price_net"`
	UnitPriceGross      decimal.Decimal `json:"unit_price_gross"`
	TaxPerUnit          decimal.Decimal `json:"tax_per_unit"`
	TaxIncludedAtSource bool            `json:"tax_included_at_source"`
}

// EffectiveRate returns tax-per-unit divided by net, the fraction used to
// reapply tax proportionally after discount. Zero when net is zero.
func (s UnitPriceSnapshot) EffectiveRate() decimal.Decimal {
	if s.UnitPriceNet.IsZero() {
		return decimal.Zero
	}
	return s.TaxPerUnit.Div(s.UnitPriceNet)
}

// CartLine is one row of the interactive cart. Owned exclusively by the
// session that created it.
type CartLine struct {
	CartLineID uuid.UUID  `json:"cart_line_id"`
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	SKU        string     `json:"sku,omitempty"`

	Name     string `json:"name"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
	Unit     string `json:"unit,omitempty"`

	Quantity        float64     `json:"quantity"`
	Price           float64     `json:"price"`
	DiscountPercent float64     `json:"discount_percent"`
	DiscountAmount  float64     `json:"discount_amount"`
	PricingMode     PricingMode `json:"pricing_mode"`
	GSTRate         float64     `json:"gst_rate"`
	// InlineGSTRate overrides GSTRate for selling/legacy lines only, where the
	// rate is editable per line.
	InlineGSTRate *float64 `json:"inline_gst_rate,omitempty"`

	// Normalized is present when the line was sourced from the catalog. Ad-hoc
	// manual lines leave it nil and fall back to treating Price as gross.
	Normalized *UnitPriceSnapshot `json:"normalized,omitempty"`

	// VoiceSourced lines default a missing quantity to 1 instead of 0.
	VoiceSourced bool `json:"voice_sourced,omitempty"`
}

// SplitPayment carries the per-instrument amounts for split settlement. The
// three parts must sum to the grand total at finalize.
type SplitPayment struct {
	Cash float64 `json:"cash"`
	UPI  float64 `json:"upi"`
	Card float64 `json:"card"`
}

// Total returns the sum of the split parts.
func (s SplitPayment) Total() float64 {
	return s.Cash + s.UPI + s.Card
}

// OrderSettings holds order-level state: tax scheme, extra charges and
// payment terms. Legacy charge aliases are additive with the newer fee
// fields, not replacements.
type OrderSettings struct {
	Scheme TaxScheme `json:"scheme"`

	DeliveryFee    float64       `json:"delivery_fee"`
	PackagingFee   float64       `json:"packaging_fee"`
	InsuranceType  InsuranceType `json:"insurance_type"`
	InsuranceValue float64       `json:"insurance_value"`

	LegacyDeliveryCharge float64 `json:"delivery_charge"`
	LegacyPackingCharge  float64 `json:"packing_charge"`
	LegacyOtherCharge    float64 `json:"other_charge"`

	PaymentMode   PaymentMode  `json:"payment_mode"`
	SplitPayment  SplitPayment `json:"split_payment"`
	CreditDueDate string       `json:"credit_due_date,omitempty"`
	CreditDueDays int          `json:"credit_due_days,omitempty"`
	AdvanceAmount float64      `json:"advance_amount,omitempty"`

	InvoiceType InvoiceType `json:"invoice_type"`
}

// DefaultOrderSettings returns settings for a fresh cart: no tax scheme, no
// extras, cash payment, retail invoice.
func DefaultOrderSettings() OrderSettings {
	return OrderSettings{
		Scheme:        NoTax(),
		InsuranceType: InsuranceNone,
		PaymentMode:   PaymentModeCash,
		InvoiceType:   InvoiceTypeRetail,
	}
}
