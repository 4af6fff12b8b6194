package intent

import "billvox/internal/domain"

// Intent names produced by the local cascade and by the remote parser after
// normalization. Remote responses are lowercased snake_case before comparison
// so both sources speak the same vocabulary.
const (
	SetPayment      = "set_payment"
	SetSplitPayment = "set_split_payment"
	SetCredit       = "set_credit"
	SetAdvance      = "set_advance"
	SetInvoiceType  = "set_invoice_type"
	SetGST          = "set_gst"
	SetCharge       = "set_charge"
	AddItem         = "add_item"
	RemoveItem      = "remove_item"
	SetQuantity     = "set_quantity"
	SetCustomer     = "set_customer"
	Finalize        = "finalize"
)

// Entities carries every field any intent can populate. Fields irrelevant to
// the matched intent stay at their zero value.
type Entities struct {
	PaymentMode domain.PaymentMode  `json:"paymentMode,omitempty"`
	Split       domain.SplitPayment `json:"split,omitempty"`

	CreditDays    int    `json:"creditDays,omitempty"`
	CreditDueDate string `json:"creditDueDate,omitempty"`

	AdvanceAmount  float64 `json:"advanceAmount,omitempty"`
	AdvanceDueDate string  `json:"advanceDueDate,omitempty"`

	InvoiceType domain.InvoiceType `json:"invoiceType,omitempty"`

	DeliveryFee  float64 `json:"deliveryFee,omitempty"`
	PackagingFee float64 `json:"packagingFee,omitempty"`

	IncludeGST  bool    `json:"includeGST"`
	IncludeCGST bool    `json:"includeCGST"`
	IncludeSGST bool    `json:"includeSGST"`
	IncludeIGST bool    `json:"includeIGST"`
	GSTRate     float64 `json:"gstRate,omitempty"`
	CGSTRate    float64 `json:"cgstRate,omitempty"`
	SGSTRate    float64 `json:"sgstRate,omitempty"`
	IGSTRate    float64 `json:"igstRate,omitempty"`

	// Populated by the remote parser for add_item / set_customer intents.
	ProductQuery string  `json:"productQuery,omitempty"`
	Quantity     float64 `json:"quantity,omitempty"`
	SKU          string  `json:"sku,omitempty"`
	ProductID    string  `json:"productId,omitempty"`
	Exact        bool    `json:"exact,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`

	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	CustomerEmail string `json:"customerEmail,omitempty"`
}

// Intent is one parsed utterance.
type Intent struct {
	Name     string   `json:"intent"`
	Entities Entities `json:"entities"`
}

// TaxScheme converts the set_gst flags into the structural scheme, applying
// IGST > CGST/SGST > GST precedence.
func (e Entities) TaxScheme() domain.TaxScheme {
	switch {
	case e.IncludeIGST:
		return domain.IGST(e.IGSTRate)
	case e.IncludeCGST || e.IncludeSGST:
		return domain.CGSTSGST(e.CGSTRate, e.SGSTRate)
	case e.IncludeGST:
		return domain.GST(e.GSTRate)
	default:
		return domain.NoTax()
	}
}
