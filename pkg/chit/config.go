// Package chit is the chit-fund computation engine: it validates a chit's
// parameters, builds the member's cashflows, solves their rate of return,
// sweeps bid amounts and compares the chit against alternative strategies.
//
// Money is carried as decimal.Decimal throughout; only rates are float64.
// Nothing in this package logs or performs I/O, and every function is safe
// to call concurrently.
package chit

import (
	"fmt"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/shopspring/decimal"
)

// ConfigParams carries raw chit parameters before validation.
type ConfigParams struct {
	TotalInstallments        int
	CurrentInstallmentNumber int
	FullChitValue            decimal.Decimal
	FrequencyPerYear         int
	PreviousInstallments     []decimal.Decimal
	BidAmount                decimal.Decimal
	WinnerInstallmentAmount  decimal.NullDecimal
}

// Config is a validated, immutable chit parameter set. Build one with
// NewConfig; the zero value is rejected by every engine function.
type Config struct {
	totalInstallments        int
	currentInstallmentNumber int
	fullChitValue            decimal.Decimal
	frequencyPerYear         int
	previousInstallments     []decimal.Decimal
	bidAmount                decimal.Decimal
	winnerInstallmentAmount  decimal.NullDecimal
	valid                    bool
}

// NewConfig checks every field and cross-field invariant of p and returns a
// trusted Config. All violations are reported together in one
// configuration error.
func NewConfig(p ConfigParams) (Config, error) {
	const op = "chit.NewConfig"
	var violations []string

	if p.TotalInstallments <= 0 {
		violations = append(violations, fmt.Sprintf("total_installments must be positive (got %d)", p.TotalInstallments))
	}
	if p.CurrentInstallmentNumber < 1 {
		violations = append(violations, fmt.Sprintf("current_installment_number must be at least 1 (got %d)", p.CurrentInstallmentNumber))
	} else if p.TotalInstallments > 0 && p.CurrentInstallmentNumber > p.TotalInstallments {
		violations = append(violations, fmt.Sprintf("current_installment_number (%d) cannot exceed total_installments (%d)",
			p.CurrentInstallmentNumber, p.TotalInstallments))
	}
	if !p.FullChitValue.IsPositive() {
		violations = append(violations, fmt.Sprintf("full_chit_value must be positive (got %s)", p.FullChitValue))
	}
	if p.FrequencyPerYear < constants.MinFrequencyPerYear || p.FrequencyPerYear > constants.MaxFrequencyPerYear {
		violations = append(violations, fmt.Sprintf("chit_frequency_per_year must be between %d and %d (got %d)",
			constants.MinFrequencyPerYear, constants.MaxFrequencyPerYear, p.FrequencyPerYear))
	}
	if p.CurrentInstallmentNumber >= 1 && len(p.PreviousInstallments) != p.CurrentInstallmentNumber-1 {
		violations = append(violations, fmt.Sprintf("number of previous_installments (%d) should be %d for current_installment_number %d",
			len(p.PreviousInstallments), p.CurrentInstallmentNumber-1, p.CurrentInstallmentNumber))
	}
	for i, amount := range p.PreviousInstallments {
		if !amount.IsPositive() {
			violations = append(violations, fmt.Sprintf("previous_installments[%d] must be positive (got %s)", i, amount))
		}
	}
	if !p.BidAmount.IsPositive() {
		violations = append(violations, fmt.Sprintf("bid_amount must be positive (got %s)", p.BidAmount))
	} else if p.FullChitValue.IsPositive() && p.BidAmount.GreaterThanOrEqual(p.FullChitValue) {
		violations = append(violations, fmt.Sprintf("bid_amount (%s) cannot be >= full_chit_value (%s)", p.BidAmount, p.FullChitValue))
	}
	if p.WinnerInstallmentAmount.Valid {
		winner := p.WinnerInstallmentAmount.Decimal
		if !winner.IsPositive() {
			violations = append(violations, fmt.Sprintf("winner_installment_amount must be positive (got %s)", winner))
		} else if p.TotalInstallments > 0 && p.FullChitValue.IsPositive() {
			naive := p.FullChitValue.Div(decimal.NewFromInt(int64(p.TotalInstallments)))
			ceiling := naive.Mul(decimal.NewFromInt(constants.WinnerInstallmentCeilingFactor))
			if winner.GreaterThan(ceiling) {
				violations = append(violations, fmt.Sprintf("winner_installment_amount (%s) exceeds %d x the per-installment share (%s)",
					winner, constants.WinnerInstallmentCeilingFactor, naive))
			}
		}
	}

	if len(violations) > 0 {
		return Config{}, configurationError(op, violations)
	}

	return Config{
		totalInstallments:        p.TotalInstallments,
		currentInstallmentNumber: p.CurrentInstallmentNumber,
		fullChitValue:            p.FullChitValue,
		frequencyPerYear:         p.FrequencyPerYear,
		previousInstallments:     append([]decimal.Decimal(nil), p.PreviousInstallments...),
		bidAmount:                p.BidAmount,
		winnerInstallmentAmount:  p.WinnerInstallmentAmount,
		valid:                    true,
	}, nil
}

// Params returns the parameters the Config was built from.
func (c Config) Params() ConfigParams {
	return ConfigParams{
		TotalInstallments:        c.totalInstallments,
		CurrentInstallmentNumber: c.currentInstallmentNumber,
		FullChitValue:            c.fullChitValue,
		FrequencyPerYear:         c.frequencyPerYear,
		PreviousInstallments:     c.PreviousInstallments(),
		BidAmount:                c.bidAmount,
		WinnerInstallmentAmount:  c.winnerInstallmentAmount,
	}
}

// WithBid returns a re-validated copy of c with a different bid amount.
func (c Config) WithBid(bid decimal.Decimal) (Config, error) {
	p := c.Params()
	p.BidAmount = bid
	return NewConfig(p)
}

// WithFrequency returns a re-validated copy of c with a different payment
// frequency.
func (c Config) WithFrequency(frequencyPerYear int) (Config, error) {
	p := c.Params()
	p.FrequencyPerYear = frequencyPerYear
	return NewConfig(p)
}

// TotalInstallments is the number of periods the chit runs for.
func (c Config) TotalInstallments() int { return c.totalInstallments }

// CurrentInstallmentNumber is the 1-based period in which the prize is won.
func (c Config) CurrentInstallmentNumber() int { return c.currentInstallmentNumber }

// FullChitValue is the pool collected each period.
func (c Config) FullChitValue() decimal.Decimal { return c.fullChitValue }

// FrequencyPerYear is the number of installments per year.
func (c Config) FrequencyPerYear() int { return c.frequencyPerYear }

// BidAmount is the discount the winner forgoes.
func (c Config) BidAmount() decimal.Decimal { return c.bidAmount }

// PreviousInstallments returns a copy of the amounts paid before the win.
func (c Config) PreviousInstallments() []decimal.Decimal {
	return append([]decimal.Decimal(nil), c.previousInstallments...)
}

// RemainingInstallments is the number of periods paid after the win.
func (c Config) RemainingInstallments() int {
	return c.totalInstallments - c.currentInstallmentNumber
}

// BaseInstallment is the naive per-period share of the pool.
func (c Config) BaseInstallment() decimal.Decimal {
	return c.fullChitValue.Div(decimal.NewFromInt(int64(c.totalInstallments)))
}

// WinnerInstallment is the fixed amount the winner pays every remaining
// period: the explicit amount when one was given, else the base share.
func (c Config) WinnerInstallment() decimal.Decimal {
	if c.winnerInstallmentAmount.Valid {
		return c.winnerInstallmentAmount.Decimal
	}
	return c.BaseInstallment()
}

func (c Config) requireValid(op string) error {
	if !c.valid {
		return &Error{Kind: KindValidation, Op: op, Msg: "configuration was not built with NewConfig"}
	}
	return nil
}
