package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"billvox/internal/domain"
)

func TestNormalizeUnit_MRPInclusive(t *testing.T) {
	snap := NormalizeUnit(NormalizeInput{
		Mode:    domain.PricingModeMRPInclusive,
		GSTRate: 18,
		MRP:     118,
	})

	assert.Equal(t, "100.00", snap.UnitPriceNet.StringFixed(2))
	assert.Equal(t, "118.00", snap.UnitPriceGross.StringFixed(2))
	assert.Equal(t, "18.00", snap.TaxPerUnit.StringFixed(2))
	assert.True(t, snap.TaxIncludedAtSource)
}

func TestNormalizeUnit_MRPInclusive_ZeroRate(t *testing.T) {
	snap := NormalizeUnit(NormalizeInput{
		Mode: domain.PricingModeMRPInclusive,
		MRP:  250,
	})

	assert.Equal(t, "250.00", snap.UnitPriceNet.StringFixed(2))
	assert.Equal(t, "250.00", snap.UnitPriceGross.StringFixed(2))
	assert.Equal(t, "0.00", snap.TaxPerUnit.StringFixed(2))
}

func TestNormalizeUnit_BasePlusGST(t *testing.T) {
	snap := NormalizeUnit(NormalizeInput{
		Mode:      domain.PricingModeBasePlusGST,
		GSTRate:   12,
		BasePrice: 80,
	})

	assert.Equal(t, "80.00", snap.UnitPriceNet.StringFixed(2))
	assert.Equal(t, "89.60", snap.UnitPriceGross.StringFixed(2))
	assert.Equal(t, "9.60", snap.TaxPerUnit.StringFixed(2))
	assert.False(t, snap.TaxIncludedAtSource)
}

func TestNormalizeUnit_SellingSimple(t *testing.T) {
	tests := []struct {
		name        string
		includesGST bool
		wantNet     string
		wantGross   string
		wantTax     string
		wantAtSrc   bool
	}{
		{"inclusive", true, "50.85", "60.00", "9.15", true},
		{"exclusive", false, "60.00", "70.80", "10.80", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := NormalizeUnit(NormalizeInput{
				Mode:               domain.PricingModeSellingSimple,
				GSTRate:            18,
				SellingPrice:       60,
				SellingIncludesGST: tt.includesGST,
			})
			assert.Equal(t, tt.wantNet, snap.UnitPriceNet.StringFixed(2))
			assert.Equal(t, tt.wantGross, snap.UnitPriceGross.StringFixed(2))
			assert.Equal(t, tt.wantTax, snap.TaxPerUnit.StringFixed(2))
			assert.Equal(t, tt.wantAtSrc, snap.TaxIncludedAtSource)
		})
	}
}

func TestNormalizeUnit_MalformedInputsCoerceToZero(t *testing.T) {
	snap := NormalizeUnit(NormalizeInput{
		Mode:    domain.PricingModeMRPInclusive,
		GSTRate: math.NaN(),
		MRP:     math.Inf(1),
	})

	assert.Equal(t, "0.00", snap.UnitPriceNet.StringFixed(2))
	assert.Equal(t, "0.00", snap.UnitPriceGross.StringFixed(2))
	assert.Equal(t, "0.00", snap.TaxPerUnit.StringFixed(2))
}

// Gross must equal net*(1+r) within rounding for every mode and rate.
func TestNormalizeUnit_GrossNetConsistency(t *testing.T) {
	modes := []domain.PricingMode{
		domain.PricingModeMRPInclusive,
		domain.PricingModeBasePlusGST,
		domain.PricingModeSellingSimple,
		domain.PricingModeLegacy,
	}
	rates := []float64{0, 5, 12, 18, 28}
	prices := []float64{0, 1, 9.99, 118, 2499.50}

	for _, mode := range modes {
		for _, rate := range rates {
			for _, price := range prices {
				snap := NormalizeUnit(NormalizeInput{
					Mode:         mode,
					GSTRate:      rate,
					MRP:          price,
					BasePrice:    price,
					SellingPrice: price,
				})
				recomputed := snap.UnitPriceNet.Mul(one.Add(Num(rate).Div(hundred))).Round(2)
				diff := snap.UnitPriceGross.Sub(recomputed).Abs()
				assert.True(t, diff.LessThanOrEqual(Num(0.01)),
					"mode=%s rate=%v price=%v gross=%s recomputed=%s", mode, rate, price,
					snap.UnitPriceGross, recomputed)

				wantTax := snap.UnitPriceGross.Sub(snap.UnitPriceNet).Round(2)
				assert.True(t, snap.TaxPerUnit.Equal(wantTax))
				assert.False(t, snap.UnitPriceNet.IsNegative())
				assert.False(t, snap.TaxPerUnit.IsNegative())
			}
		}
	}
}

func TestNormalizeProduct_PicksFieldByMode(t *testing.T) {
	p := &domain.InventoryProduct{
		PricingMode:  domain.PricingModeBasePlusGST,
		GSTRate:      5,
		MRP:          999,
		BasePrice:    100,
		SellingPrice: 500,
	}

	snap := NormalizeProduct(p)
	assert.Equal(t, "100.00", snap.UnitPriceNet.StringFixed(2))
	assert.Equal(t, "105.00", snap.UnitPriceGross.StringFixed(2))
}
