package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Num coerces a raw float into a decimal. NaN and infinities become zero;
// the pricing path never raises on malformed numerics.
func Num(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// round2 rounds to two decimal places, the resolution of every stored amount.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// clampNonNegative floors a decimal at zero.
func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// clampPercent bounds a percent value to [0,100].
func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}
