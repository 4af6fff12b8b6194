package pricing

import (
	"github.com/shopspring/decimal"

	"billvox/internal/domain"
)

// NormalizeInput carries the raw pricing fields of a product. Missing fields
// default to zero; which field is authoritative depends on Mode.
type NormalizeInput struct {
	Mode               domain.PricingMode
	GSTRate            float64
	MRP                float64
	BasePrice          float64
	SellingPrice       float64
	SellingIncludesGST bool
}

// NormalizeUnit converts a product's heterogeneous pricing representation into
// a canonical per-unit snapshot. Net and gross are computed unrounded, each
// rounded to two decimals independently, and tax is the rounded difference of
// the two rounded values. The order matters for parity with stored invoices.
func NormalizeUnit(in NormalizeInput) domain.UnitPriceSnapshot {
	rate := clampNonNegative(Num(in.GSTRate))
	r := rate.Div(hundred)
	onePlusR := one.Add(r)

	var net, gross decimal.Decimal
	taxIncluded := false

	switch in.Mode {
	case domain.PricingModeMRPInclusive:
		gross = Num(in.MRP)
		if r.IsPositive() {
			net = gross.Div(onePlusR)
		} else {
			net = gross
		}
		taxIncluded = true

	case domain.PricingModeBasePlusGST:
		net = Num(in.BasePrice)
		gross = net.Mul(onePlusR)

	default: // selling_simple, legacy, and anything unrecognized
		sp := Num(in.SellingPrice)
		if in.SellingIncludesGST {
			gross = sp
			if r.IsPositive() {
				net = gross.Div(onePlusR)
			} else {
				net = gross
			}
			taxIncluded = true
		} else {
			net = sp
			gross = net.Mul(onePlusR)
		}
	}

	net = clampNonNegative(round2(net))
	gross = clampNonNegative(round2(gross))
	tax := clampNonNegative(round2(gross.Sub(net)))

	return domain.UnitPriceSnapshot{
		UnitPriceNet:        net,
		UnitPriceGross:      gross,
		TaxPerUnit:          tax,
		TaxIncludedAtSource: taxIncluded,
	}
}

// NormalizeProduct builds the unit snapshot for a catalog product.
func NormalizeProduct(p *domain.InventoryProduct) domain.UnitPriceSnapshot {
	return NormalizeUnit(NormalizeInput{
		Mode:               p.PricingMode,
		GSTRate:            p.GSTRate,
		MRP:                p.MRP,
		BasePrice:          p.BasePrice,
		SellingPrice:       p.SellingPrice,
		SellingIncludesGST: p.SellingIncludesGST,
	})
}
