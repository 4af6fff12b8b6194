package domain

// TaxSchemeKind discriminates the order-level tax scheme.
type TaxSchemeKind string

const (
	TaxSchemeNone     TaxSchemeKind = "none"
	TaxSchemeGST      TaxSchemeKind = "gst"
	TaxSchemeCGSTSGST TaxSchemeKind = "cgst_sgst"
	TaxSchemeIGST     TaxSchemeKind = "igst"
)

// TaxScheme is the order-level tax selection. Exactly one scheme can be active
// at a time; the constructors below are the only way mutual exclusivity is
// expressed, so enabling one scheme structurally disables the rest.
type TaxScheme struct {
	Kind     TaxSchemeKind `json:"kind"`
	GSTRate  float64       `json:"gst_rate,omitempty"`
	CGSTRate float64       `json:"cgst_rate,omitempty"`
	SGSTRate float64       `json:"sgst_rate,omitempty"`
	IGSTRate float64       `json:"igst_rate,omitempty"`
}

// NoTax returns the empty scheme.
func NoTax() TaxScheme {
	return TaxScheme{Kind: TaxSchemeNone}
}

// GST returns a generic-GST scheme at the given percent rate.
func GST(rate float64) TaxScheme {
	return TaxScheme{Kind: TaxSchemeGST, GSTRate: rate}
}

// CGSTSGST returns an intra-state scheme with separate CGST and SGST rates.
func CGSTSGST(cgst, sgst float64) TaxScheme {
	return TaxScheme{Kind: TaxSchemeCGSTSGST, CGSTRate: cgst, SGSTRate: sgst}
}

// IGST returns an inter-state scheme at the given percent rate.
func IGST(rate float64) TaxScheme {
	return TaxScheme{Kind: TaxSchemeIGST, IGSTRate: rate}
}

// IncludesGST reports whether the generic GST flag is active.
func (t TaxScheme) IncludesGST() bool { return t.Kind == TaxSchemeGST }

// IncludesCGSTSGST reports whether the intra-state pair is active.
func (t TaxScheme) IncludesCGSTSGST() bool { return t.Kind == TaxSchemeCGSTSGST }

// IncludesIGST reports whether the inter-state flag is active.
func (t TaxScheme) IncludesIGST() bool { return t.Kind == TaxSchemeIGST }

// TotalRate returns the combined percent rate of the active scheme.
func (t TaxScheme) TotalRate() float64 {
	switch t.Kind {
	case TaxSchemeGST:
		return t.GSTRate
	case TaxSchemeCGSTSGST:
		return t.CGSTRate + t.SGSTRate
	case TaxSchemeIGST:
		return t.IGSTRate
	default:
		return 0
	}
}
