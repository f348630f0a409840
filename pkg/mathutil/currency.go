// Package mathutil provides common arithmetic helpers for currency amounts.
package mathutil

import (
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for display and for making logical comparisons.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.DecimalPlaces)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// Sum adds every value; an empty slice sums to zero.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Average returns the arithmetic mean of a and b.
func Average(a, b decimal.Decimal) decimal.Decimal {
	return a.Add(b).Div(decimal.NewFromInt(2))
}

// Negate returns a copy of values with every sign flipped.
func Negate(values []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = v.Neg()
	}
	return out
}

// ApplyRate multiplies an amount by a float growth factor. The factor is
// converted once so accumulation stays in decimal.
func ApplyRate(amount decimal.Decimal, factor float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(factor))
}
