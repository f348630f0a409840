package config

import (
	"fmt"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/validation"
	"github.com/shopspring/decimal"
)

// Validate rejects settings no run can proceed with. Per-chit parameter
// errors are reported by the engine when each chit is analyzed.
func (conf *Configuration) Validate() error {
	if err := validation.ValidateMode(conf.Mode); err != nil {
		return err
	}
	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		return err
	}
	names := make(map[string]bool, len(conf.Chits))
	for i, c := range conf.Chits {
		if c.Name == "" {
			return fmt.Errorf("chit %d has no name", i+1)
		}
		if names[c.Name] {
			return fmt.Errorf("chit name %s is used more than once", c.Name)
		}
		names[c.Name] = true
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (conf *Configuration) ValidateConfiguration() []string {
	cv := validation.ConfigValidator{}
	for _, c := range conf.Chits {
		entry := validation.ChitConfig{
			Name:              c.Name,
			Active:            c.Active,
			FullChitValue:     c.FullChitValue,
			WinnerInstallment: c.winnerInstallment(),
			HistoryLength:     len(c.PreviousInstallments),
		}
		if entry.HistoryLength == 0 {
			entry.HistoryLength = len(c.History)
		}
		if c.Sweep != nil {
			entry.Sweep = &validation.SweepConfig{MinBid: c.Sweep.MinBid, MaxBid: c.Sweep.MaxBid}
		}
		if c.Comparison != nil {
			win := c.Comparison.WinInstallment
			if win == 0 {
				win = c.CurrentInstallment()
			}
			entry.Comparison = &validation.ComparisonConfig{WinInstallment: win}
		}
		cv.Chits = append(cv.Chits, entry)
	}
	return cv.ValidateAll()
}

func (c *Chit) winnerInstallment() decimal.Decimal {
	if c.WinnerInstallmentAmount != nil {
		return *c.WinnerInstallmentAmount
	}
	if c.TotalInstallments <= 0 {
		return decimal.Zero
	}
	return c.FullChitValue.Div(decimal.NewFromInt(int64(c.TotalInstallments)))
}
