package tvm

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InterpolateInstallments returns totalInstallments-1 amounts rising linearly
// from minInstallment to maxInstallment. It stands in for the payments a
// non-winner makes when the real auction history is not known yet.
func InterpolateInstallments(totalInstallments int, minInstallment, maxInstallment decimal.Decimal) ([]decimal.Decimal, error) {
	if totalInstallments <= 0 {
		return nil, fmt.Errorf("total installments must be positive: got %d", totalInstallments)
	}
	if minInstallment.GreaterThan(maxInstallment) {
		return nil, fmt.Errorf("minimum installment %s exceeds maximum %s", minInstallment, maxInstallment)
	}

	count := totalInstallments - 1
	denominator := count - 1
	if denominator < 1 {
		denominator = 1
	}

	spread := maxInstallment.Sub(minInstallment)
	amounts := make([]decimal.Decimal, count)
	for i := 0; i < count; i++ {
		step := spread.Mul(decimal.NewFromInt(int64(i))).Div(decimal.NewFromInt(int64(denominator)))
		amounts[i] = minInstallment.Add(step)
	}
	return amounts, nil
}
