package domain

// PricingMode determines which raw price field on a product is authoritative
// and whether GST is already embedded in it.
type PricingMode string

const (
	PricingModeMRPInclusive  PricingMode = "mrp_inclusive"
	PricingModeBasePlusGST   PricingMode = "base_plus_gst"
	PricingModeSellingSimple PricingMode = "selling_simple"
	PricingModeLegacy        PricingMode = "legacy"
)

// PaymentMode represents how an invoice is settled.
type PaymentMode string

const (
	PaymentModeCash    PaymentMode = "cash"
	PaymentModeUPI     PaymentMode = "upi"
	PaymentModeCard    PaymentMode = "card"
	PaymentModeSplit   PaymentMode = "split"
	PaymentModeCredit  PaymentMode = "credit"
	PaymentModeAdvance PaymentMode = "advance"
)

// InvoiceType represents the document flavour being generated.
type InvoiceType string

const (
	InvoiceTypeRetail   InvoiceType = "retail"
	InvoiceTypeTax      InvoiceType = "tax"
	InvoiceTypeProforma InvoiceType = "proforma"
	InvoiceTypeEstimate InvoiceType = "estimate"
	InvoiceTypeQuote    InvoiceType = "quote"
)

// InsuranceType controls how the insurance extra charge is computed.
type InsuranceType string

const (
	InsuranceNone    InsuranceType = "none"
	InsuranceFlat    InsuranceType = "flat"
	InsurancePercent InsuranceType = "percent"
)

// InvoiceStatus represents the lifecycle of a persisted invoice.
type InvoiceStatus string

const (
	InvoiceStatusFinalized InvoiceStatus = "finalized"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// UserRole defines the role hierarchy within a business.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleBiller UserRole = "biller"
)
