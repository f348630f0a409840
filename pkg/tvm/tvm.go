// Package tvm holds the time-value-of-money helpers shared by the chit
// strategies: rate conversion, lump-sum and recurring-deposit growth, and
// the synthetic installment schedule used when history is incomplete.
package tvm

import (
	"errors"
	"fmt"
	"math"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidFrequency is returned for a non-positive periods-per-year value.
	ErrInvalidFrequency = errors.New("frequency per year must be positive")

	// ErrInvalidRate is returned for an annual rate at or below -100%.
	ErrInvalidRate = errors.New("annual rate must be greater than -1")
)

// PeriodRate converts an effective annual rate into the equivalent rate per
// period for a schedule of frequencyPerYear periods.
func PeriodRate(annualRate float64, frequencyPerYear int) (float64, error) {
	if frequencyPerYear <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidFrequency, frequencyPerYear)
	}
	if annualRate <= -1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidRate, annualRate)
	}
	return math.Pow(1+annualRate, 1/float64(frequencyPerYear)) - 1, nil
}

// LumpSumFutureValue compounds principal for periods at the period rate
// derived from annualRate. Zero periods or a zero rate return principal
// unchanged.
func LumpSumFutureValue(principal decimal.Decimal, annualRate float64, periods, frequencyPerYear int) (decimal.Decimal, error) {
	if periods < 0 {
		return decimal.Zero, fmt.Errorf("periods cannot be negative: got %d", periods)
	}
	rate, err := PeriodRate(annualRate, frequencyPerYear)
	if err != nil {
		return decimal.Zero, err
	}
	if periods == 0 || annualRate == 0 {
		return principal, nil
	}
	return mathutil.ApplyRate(principal, math.Pow(1+rate, float64(periods))), nil
}

// SIPFutureValue treats every installment as an independent deposit that
// compounds from its payment period to the end of the schedule:
//
//	maturity = Σ installment[i] · (1+r)^(N−i),  i = 0..N−1
//
// With a zero rate the maturity is exactly the sum of the installments.
func SIPFutureValue(installments []decimal.Decimal, annualRate float64, frequencyPerYear int) (decimal.Decimal, error) {
	rate, err := PeriodRate(annualRate, frequencyPerYear)
	if err != nil {
		return decimal.Zero, err
	}
	if annualRate == 0 {
		return mathutil.Sum(installments), nil
	}

	n := len(installments)
	maturity := decimal.Zero
	for i, amount := range installments {
		maturity = maturity.Add(mathutil.ApplyRate(amount, math.Pow(1+rate, float64(n-i))))
	}
	return maturity, nil
}
