package pricing

import (
	"github.com/shopspring/decimal"

	"billvox/internal/domain"
)

// TaxBreakdown holds the order-level tax amounts per scheme. At most one of
// GST or IGST, or the CGST/SGST pair, is nonzero.
type TaxBreakdown struct {
	GST  decimal.Decimal `json:"gst"`
	CGST decimal.Decimal `json:"cgst"`
	SGST decimal.Decimal `json:"sgst"`
	IGST decimal.Decimal `json:"igst"`
}

// Sum returns the combined order-level tax.
func (t TaxBreakdown) Sum() decimal.Decimal {
	return t.GST.Add(t.CGST).Add(t.SGST).Add(t.IGST)
}

// ExtraCharges holds the order-level add-on charges.
type ExtraCharges struct {
	Delivery  decimal.Decimal `json:"delivery"`
	Packaging decimal.Decimal `json:"packaging"`
	Insurance decimal.Decimal `json:"insurance"`
	Other     decimal.Decimal `json:"other"`
	Total     decimal.Decimal `json:"total"`
}

// OrderTotals is the aggregated order breakdown. Each field is rounded at the
// leaf; the grand total is rounded once over the already-rounded parts so the
// figures reconcile with what every view displays.
type OrderTotals struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	RowTax       decimal.Decimal `json:"row_tax"`
	TaxBreakdown TaxBreakdown    `json:"tax_breakdown"`
	Extras       ExtraCharges    `json:"extras"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
}

// ComputeTotals aggregates cart lines under the given settings. A cart with
// zero lines yields all-zero totals.
//
// Order-level tax is computed only when the rows carry no tax of their own;
// when row tax is present the breakdown fields are forced to zero so the two
// paths are never summed together. Scheme precedence is IGST, then CGST/SGST,
// then generic GST, decided structurally via the TaxScheme kind.
func ComputeTotals(lines []domain.CartLine, settings domain.OrderSettings) OrderTotals {
	subtotal := decimal.Zero
	rowTax := decimal.Zero
	for i := range lines {
		b := ComputeLineBreakdown(&lines[i])
		subtotal = subtotal.Add(b.LineNetAfterDisc)
		rowTax = rowTax.Add(b.LineTaxAfterDisc)
	}
	subtotal = round2(subtotal)
	rowTax = round2(rowTax)

	var breakdown TaxBreakdown
	if !rowTax.IsPositive() {
		scheme := settings.Scheme
		switch scheme.Kind {
		case domain.TaxSchemeIGST:
			breakdown.IGST = schemeTax(subtotal, scheme.IGSTRate)
		case domain.TaxSchemeCGSTSGST:
			breakdown.CGST = schemeTax(subtotal, scheme.CGSTRate)
			breakdown.SGST = schemeTax(subtotal, scheme.SGSTRate)
		case domain.TaxSchemeGST:
			breakdown.GST = schemeTax(subtotal, scheme.GSTRate)
		}
	}

	extras := computeExtras(subtotal, settings)

	grand := round2(subtotal.Add(rowTax).Add(breakdown.Sum()).Add(extras.Total))

	return OrderTotals{
		Subtotal:     subtotal,
		RowTax:       rowTax,
		TaxBreakdown: breakdown,
		Extras:       extras,
		GrandTotal:   grand,
	}
}

func schemeTax(subtotal decimal.Decimal, rate float64) decimal.Decimal {
	return round2(subtotal.Mul(clampNonNegative(Num(rate))).Div(hundred))
}

func computeExtras(subtotal decimal.Decimal, settings domain.OrderSettings) ExtraCharges {
	delivery := round2(clampNonNegative(Num(settings.LegacyDeliveryCharge).Add(Num(settings.DeliveryFee))))
	packaging := round2(clampNonNegative(Num(settings.LegacyPackingCharge).Add(Num(settings.PackagingFee))))

	insurance := decimal.Zero
	switch settings.InsuranceType {
	case domain.InsuranceFlat:
		insurance = Num(settings.InsuranceValue)
	case domain.InsurancePercent:
		insurance = subtotal.Mul(Num(settings.InsuranceValue)).Div(hundred)
	}
	insurance = round2(clampNonNegative(insurance))

	other := round2(clampNonNegative(Num(settings.LegacyOtherCharge)))

	return ExtraCharges{
		Delivery:  delivery,
		Packaging: packaging,
		Insurance: insurance,
		Other:     other,
		Total:     round2(delivery.Add(packaging).Add(insurance).Add(other)),
	}
}
