// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidateSweepRange warns when a bid sweep will hit bids the engine rejects.
// A bid must leave a positive prize after the winner installment.
func ValidateSweepRange(chitName string, minBid, maxBid, fullValue, winnerInstallment decimal.Decimal) []string {
	var warnings []string

	if minBid.GreaterThan(maxBid) {
		warnings = append(warnings, fmt.Sprintf("Chit '%s' sweep minimum bid exceeds maximum bid (%s > %s) - bids will be generated in descending order",
			chitName, minBid, maxBid))
	}

	limit := fullValue.Sub(winnerInstallment)
	if maxBid.GreaterThanOrEqual(limit) || minBid.GreaterThanOrEqual(limit) {
		warnings = append(warnings, fmt.Sprintf("Chit '%s' sweep reaches a bid of at least %s which leaves no prize - the sweep will fail",
			chitName, limit))
	}

	return warnings
}

// ValidateComparisonHistory warns when known history runs past the assumed
// early win, since the early-win scenario only uses installments before it.
func ValidateComparisonHistory(chitName string, winInstallment, historyLength int) string {
	if historyLength > winInstallment-1 {
		return fmt.Sprintf("Chit '%s' comparison wins at installment %d but %d installments of history are known - the early-win scenario ignores %d of them",
			chitName, winInstallment, historyLength, historyLength-(winInstallment-1))
	}
	return ""
}

// ConfigValidator collects non-fatal warnings across chit records.
type ConfigValidator struct {
	Chits []ChitConfig
}

type ChitConfig struct {
	Name              string
	Active            bool
	FullChitValue     decimal.Decimal
	WinnerInstallment decimal.Decimal
	HistoryLength     int
	Sweep             *SweepConfig
	Comparison        *ComparisonConfig
}

type SweepConfig struct {
	MinBid decimal.Decimal
	MaxBid decimal.Decimal
}

type ComparisonConfig struct {
	WinInstallment int
}

// ValidateAll validates the active chits and returns warnings
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	for _, chit := range cv.Chits {
		if !chit.Active {
			continue
		}
		if chit.Sweep != nil {
			warnings = append(warnings, ValidateSweepRange(chit.Name, chit.Sweep.MinBid, chit.Sweep.MaxBid,
				chit.FullChitValue, chit.WinnerInstallment)...)
		}
		if chit.Comparison != nil {
			if warning := ValidateComparisonHistory(chit.Name, chit.Comparison.WinInstallment, chit.HistoryLength); warning != "" {
				warnings = append(warnings, warning)
			}
		}
	}

	return warnings
}
