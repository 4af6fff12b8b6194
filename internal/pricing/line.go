package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"billvox/internal/domain"
)

// LineBreakdown is the computed per-line price breakdown. It is recomputed on
// every read, never stored.
type LineBreakdown struct {
	UnitNet   decimal.Decimal `json:"unit_net"`
	UnitTax   decimal.Decimal `json:"unit_tax"`
	UnitGross decimal.Decimal `json:"unit_gross"`

	UnitNetAfterDisc   decimal.Decimal `json:"unit_net_after_disc"`
	UnitTaxAfterDisc   decimal.Decimal `json:"unit_tax_after_disc"`
	UnitGrossAfterDisc decimal.Decimal `json:"unit_gross_after_disc"`

	LineNetAfterDisc   decimal.Decimal `json:"line_net_after_disc"`
	LineTaxAfterDisc   decimal.Decimal `json:"line_tax_after_disc"`
	LineGrossAfterDisc decimal.Decimal `json:"line_gross_after_disc"`
}

// ComputeLineBreakdown computes the breakdown for one cart line. Pure: the
// same line always yields the same output, and nothing ever errors. Bad
// numerics coerce to zero.
func ComputeLineBreakdown(line *domain.CartLine) LineBreakdown {
	qty := lineQuantity(line)

	var unitNet, unitTax, unitGross, r decimal.Decimal
	discountOnGross := false

	switch {
	case line.Normalized != nil &&
		(line.PricingMode == domain.PricingModeMRPInclusive || line.PricingMode == domain.PricingModeBasePlusGST):
		snap := line.Normalized
		unitNet = snap.UnitPriceNet
		unitTax = snap.TaxPerUnit
		unitGross = snap.UnitPriceGross
		r = snap.EffectiveRate()

	case line.PricingMode == domain.PricingModeSellingSimple || line.PricingMode == domain.PricingModeLegacy:
		// Stored price is net; the rate is editable per line in this mode only.
		rate := line.GSTRate
		if line.InlineGSTRate != nil {
			rate = *line.InlineGSTRate
		}
		r = clampNonNegative(Num(rate)).Div(hundred)
		unitNet = clampNonNegative(round2(Num(line.Price)))
		unitGross = round2(unitNet.Mul(one.Add(r)))
		unitTax = round2(unitGross.Sub(unitNet))

	default:
		// No snapshot and unrecognized mode: price is gross, untaxed, and the
		// discount applies to gross directly.
		unitGross = clampNonNegative(round2(Num(line.Price)))
		unitNet = unitGross
		unitTax = decimal.Zero
		r = decimal.Zero
		discountOnGross = true
	}

	pct := ResolveDiscount(line.DiscountAmount, line.DiscountPercent, unitGross, qty)
	keep := one.Sub(pct.Div(hundred))

	var netAfter, taxAfter, grossAfter decimal.Decimal
	if discountOnGross {
		grossAfter = round2(unitGross.Mul(keep))
		netAfter = grossAfter
		taxAfter = decimal.Zero
	} else {
		netAfter = round2(unitNet.Mul(keep))
		grossAfter = round2(netAfter.Mul(one.Add(r)))
		taxAfter = round2(grossAfter.Sub(netAfter))
	}

	return LineBreakdown{
		UnitNet:   unitNet,
		UnitTax:   unitTax,
		UnitGross: unitGross,

		UnitNetAfterDisc:   netAfter,
		UnitTaxAfterDisc:   taxAfter,
		UnitGrossAfterDisc: grossAfter,

		LineNetAfterDisc:   round2(netAfter.Mul(qty)),
		LineTaxAfterDisc:   round2(taxAfter.Mul(qty)),
		LineGrossAfterDisc: round2(grossAfter.Mul(qty)),
	}
}

// lineQuantity clamps the quantity to zero or more. A non-numeric quantity is
// zero, except on voice-sourced lines where the spoken default is one.
func lineQuantity(line *domain.CartLine) decimal.Decimal {
	if math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
		if line.VoiceSourced {
			return one
		}
		return decimal.Zero
	}
	return clampNonNegative(decimal.NewFromFloat(line.Quantity))
}

// ResolveDiscount turns the pair (amount, percent) into the canonical percent.
// A positive absolute amount wins over the percent; it is clamped to the line
// gross before conversion so the result can never go negative.
func ResolveDiscount(discountAmount, discountPercent float64, unitGross, qty decimal.Decimal) decimal.Decimal {
	amt := Num(discountAmount)
	if amt.IsPositive() {
		lineGross := unitGross.Mul(qty)
		if !lineGross.IsPositive() {
			return decimal.Zero
		}
		if amt.GreaterThan(lineGross) {
			amt = lineGross
		}
		return amt.Div(lineGross).Mul(hundred)
	}
	return clampPercent(Num(discountPercent))
}

// InferDiscount interprets a single unified discount field the way the cart
// view helpers do: a value within [0,100] is a percent, anything larger is an
// absolute amount off the line gross.
func InferDiscount(discount float64, unitGross, qty decimal.Decimal) decimal.Decimal {
	d := Num(discount)
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.LessThanOrEqual(hundred) {
		return d
	}
	return ResolveDiscount(discount, 0, unitGross, qty)
}
