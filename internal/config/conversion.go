// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/history"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/chit"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/shopspring/decimal"
)

// CurrentInstallment is the installment at which the win under analysis
// happens: the configured number, else the one after the known history.
func (c *Chit) CurrentInstallment() int {
	switch {
	case c.CurrentInstallmentNumber > 0:
		return c.CurrentInstallmentNumber
	case len(c.PreviousInstallments) > 0:
		return len(c.PreviousInstallments) + 1
	default:
		return len(c.History) + 1
	}
}

// Previous returns the installments paid before the current one. Explicit
// previousInstallments win over history records.
func (c *Chit) Previous() ([]decimal.Decimal, error) {
	if len(c.PreviousInstallments) > 0 || len(c.History) == 0 {
		return append([]decimal.Decimal(nil), c.PreviousInstallments...), nil
	}
	amounts, err := history.PreviousInstallments(c.History, c.CurrentInstallment(), history.Terms{
		FullChitValue:     c.FullChitValue,
		TotalInstallments: c.TotalInstallments,
	})
	if err != nil {
		return nil, fmt.Errorf("chit %s: %w", c.Name, err)
	}
	return amounts, nil
}

// ToChitConfig converts the record into a validated engine configuration.
func (c *Chit) ToChitConfig() (chit.Config, error) {
	previous, err := c.Previous()
	if err != nil {
		return chit.Config{}, err
	}

	params := chit.ConfigParams{
		TotalInstallments:        c.TotalInstallments,
		CurrentInstallmentNumber: c.CurrentInstallment(),
		FullChitValue:            c.FullChitValue,
		FrequencyPerYear:         c.ChitFrequencyPerYear,
		PreviousInstallments:     previous,
		BidAmount:                c.BidAmount,
	}
	if c.WinnerInstallmentAmount != nil {
		params.WinnerInstallmentAmount = decimal.NewNullDecimal(*c.WinnerInstallmentAmount)
	}
	return chit.NewConfig(params)
}

// SweepBids expands the sweep range into bid amounts.
func (c *Chit) SweepBids() []decimal.Decimal {
	if c.Sweep == nil {
		return nil
	}
	count := c.Sweep.Count
	if count == 0 {
		count = constants.DefaultSweepCount
	}
	return chit.BidRange(c.Sweep.MinBid, c.Sweep.MaxBid, count)
}

// ToComparisonInput converts the record's comparison block into engine
// input. It returns an error when the chit has no comparison block.
func (c *Chit) ToComparisonInput() (chit.ComparisonInput, error) {
	if c.Comparison == nil {
		return chit.ComparisonInput{}, fmt.Errorf("chit %s has no comparison settings", c.Name)
	}
	previous, err := c.Previous()
	if err != nil {
		return chit.ComparisonInput{}, err
	}

	cmp := c.Comparison
	in := chit.ComparisonInput{
		ChitName:           c.Name,
		TotalInstallments:  c.TotalInstallments,
		FullChitValue:      c.FullChitValue,
		FrequencyPerYear:   c.ChitFrequencyPerYear,
		CurrentInstallment: c.CurrentInstallment(),
		PreviousAmounts:    previous,
		WinInstallment:     cmp.WinInstallment,
		WinBidAmount:       cmp.WinBidAmount,
		LumpSumRate:        cmp.LumpSumRate,
		LateMinInstallment: cmp.LateMinInstallment,
		LateMaxInstallment: cmp.LateMaxInstallment,
		SIPRate:            cmp.SIPRate,
	}
	if in.WinInstallment == 0 {
		in.WinInstallment = in.CurrentInstallment
	}
	if in.WinBidAmount.IsZero() {
		in.WinBidAmount = c.BidAmount
	}
	return in, nil
}
