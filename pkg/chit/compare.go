package chit

import (
	"errors"
	"fmt"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/mathutil"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/tvm"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Scenario names reported by Compare.
const (
	EarlyWinScenarioName = "Early Win + Lump Sum"
	LateWinScenarioName  = "Late Win (Last Installment)"
	SIPScenarioName      = "SIP Investment"
)

// ComparisonInput describes one chit and the assumptions behind each of
// the three strategies Compare evaluates.
type ComparisonInput struct {
	ChitName           string
	TotalInstallments  int
	FullChitValue      decimal.Decimal
	FrequencyPerYear   int
	CurrentInstallment int
	// PreviousAmounts is the known installment history. It is used verbatim
	// and backfilled with base or interpolated amounts where it runs out.
	PreviousAmounts []decimal.Decimal

	// Early win
	WinInstallment int
	WinBidAmount   decimal.Decimal
	LumpSumRate    float64

	// Late win and SIP
	LateMinInstallment decimal.Decimal
	LateMaxInstallment decimal.Decimal
	SIPRate            float64
}

func (in ComparisonInput) validate() error {
	var violations []string
	if in.TotalInstallments <= 0 {
		violations = append(violations, fmt.Sprintf("total_installments must be positive (got %d)", in.TotalInstallments))
	}
	if !in.FullChitValue.IsPositive() {
		violations = append(violations, fmt.Sprintf("full_chit_value must be positive (got %s)", in.FullChitValue))
	}
	if in.FrequencyPerYear < constants.MinFrequencyPerYear || in.FrequencyPerYear > constants.MaxFrequencyPerYear {
		violations = append(violations, fmt.Sprintf("chit_frequency_per_year must be between %d and %d (got %d)",
			constants.MinFrequencyPerYear, constants.MaxFrequencyPerYear, in.FrequencyPerYear))
	}
	if in.CurrentInstallment < 1 || (in.TotalInstallments > 0 && in.CurrentInstallment > in.TotalInstallments) {
		violations = append(violations, fmt.Sprintf("current_installment must be between 1 and total_installments (got %d)", in.CurrentInstallment))
	}
	if in.TotalInstallments > 0 && len(in.PreviousAmounts) > in.TotalInstallments {
		violations = append(violations, fmt.Sprintf("previous_amounts has %d entries for %d installments",
			len(in.PreviousAmounts), in.TotalInstallments))
	}
	for i, amount := range in.PreviousAmounts {
		if !amount.IsPositive() {
			violations = append(violations, fmt.Sprintf("previous_amounts[%d] must be positive (got %s)", i, amount))
		}
	}
	if in.WinInstallment < 1 || (in.TotalInstallments > 0 && in.WinInstallment > in.TotalInstallments) {
		violations = append(violations, fmt.Sprintf("win_installment must be between 1 and total_installments (got %d)", in.WinInstallment))
	}
	if !in.LateMinInstallment.IsPositive() || !in.LateMaxInstallment.IsPositive() {
		violations = append(violations, "late win installment bounds must be positive")
	} else if in.LateMinInstallment.GreaterThan(in.LateMaxInstallment) {
		violations = append(violations, fmt.Sprintf("late_min_installment (%s) cannot exceed late_max_installment (%s)",
			in.LateMinInstallment, in.LateMaxInstallment))
	}
	if in.LumpSumRate <= -1 {
		violations = append(violations, fmt.Sprintf("lumpsum_rate must be greater than -1 (got %g)", in.LumpSumRate))
	}
	if in.SIPRate <= -1 {
		violations = append(violations, fmt.Sprintf("sip_rate must be greater than -1 (got %g)", in.SIPRate))
	}

	if len(violations) > 0 {
		return configurationError("chit.Compare", violations)
	}
	return nil
}

func (in ComparisonInput) baseInstallment() decimal.Decimal {
	return in.FullChitValue.Div(decimal.NewFromInt(int64(in.TotalInstallments)))
}

// scheduledAmounts returns n installments: actual history first, then the
// interpolated schedule from its start, then the midpoint of the bounds.
func (in ComparisonInput) scheduledAmounts(n int) ([]decimal.Decimal, error) {
	varying, err := tvm.InterpolateInstallments(in.TotalInstallments, in.LateMinInstallment, in.LateMaxInstallment)
	if err != nil {
		return nil, err
	}
	midpoint := mathutil.Average(in.LateMinInstallment, in.LateMaxInstallment)

	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		switch idx := i - len(in.PreviousAmounts); {
		case idx < 0:
			amounts[i] = in.PreviousAmounts[i]
		case idx < len(varying):
			amounts[i] = varying[idx]
		default:
			amounts[i] = midpoint
		}
	}
	return amounts, nil
}

// Compare evaluates the early-win, late-win and SIP strategies for the same
// chit and ranks them by the money each ends with. A scenario whose IRR
// cannot be solved reports an annual IRR of zero rather than failing.
func Compare(in ComparisonInput) (ThreeWayComparison, error) {
	const op = "chit.Compare"
	if err := in.validate(); err != nil {
		return ThreeWayComparison{}, err
	}

	builders := [...]struct {
		name string
		fn   func(ComparisonInput) (ComparisonScenario, error)
	}{
		{EarlyWinScenarioName, earlyWinScenario},
		{LateWinScenarioName, lateWinScenario},
		{SIPScenarioName, sipScenario},
	}

	var scenarios [len(builders)]ComparisonScenario
	var errs [len(builders)]error
	var g errgroup.Group
	for i, b := range builders {
		i, b := i, b
		g.Go(func() error {
			scenarios[i], errs[i] = b.fn(in)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			return ThreeWayComparison{}, wrapError(op, builders[i].name+" scenario failed", err)
		}
	}

	result := ThreeWayComparison{
		Scenario1:         scenarios[0],
		Scenario2:         scenarios[1],
		Scenario3:         scenarios[2],
		ChitName:          in.ChitName,
		TotalInstallments: in.TotalInstallments,
		ChitValue:         in.FullChitValue,
		FrequencyPerYear:  in.FrequencyPerYear,
	}
	ranked := result.Ranked()
	result.BestScenarioName = ranked[0].Name
	result.AdvantageAmount = ranked[0].FinalAbsoluteValue.Sub(ranked[1].FinalAbsoluteValue)
	return result, nil
}

// earlyWinScenario wins the pool at WinInstallment with WinBidAmount and
// invests the whole prize at LumpSumRate until the chit ends, while
// continuing to pay the base installment.
func earlyWinScenario(in ComparisonInput) (ComparisonScenario, error) {
	base := in.baseInstallment()
	previous := make([]decimal.Decimal, in.WinInstallment-1)
	for i := range previous {
		if i < len(in.PreviousAmounts) {
			previous[i] = in.PreviousAmounts[i]
		} else {
			previous[i] = base
		}
	}

	cfg, err := NewConfig(ConfigParams{
		TotalInstallments:        in.TotalInstallments,
		CurrentInstallmentNumber: in.WinInstallment,
		FullChitValue:            in.FullChitValue,
		FrequencyPerYear:         in.FrequencyPerYear,
		PreviousInstallments:     previous,
		BidAmount:                in.WinBidAmount,
	})
	if err != nil {
		return ComparisonScenario{}, err
	}
	prize, err := PrizeAmount(cfg)
	if err != nil {
		return ComparisonScenario{}, err
	}

	winner := cfg.WinnerInstallment()
	remaining := in.TotalInstallments - in.WinInstallment
	lumpSum := prize
	lumpSumFinal, err := tvm.LumpSumFutureValue(lumpSum, in.LumpSumRate, remaining, in.FrequencyPerYear)
	if err != nil {
		return ComparisonScenario{}, calculationError("chit.earlyWinScenario", "lump sum projection failed", err, nil)
	}

	cashflows := make([]decimal.Decimal, 0, in.TotalInstallments)
	cashflows = append(cashflows, mathutil.Negate(previous)...)
	cashflows = append(cashflows, prize.Sub(lumpSum).Sub(winner))
	for i := 0; i < remaining; i++ {
		cashflows = append(cashflows, base.Neg())
	}
	last := len(cashflows) - 1
	cashflows[last] = cashflows[last].Add(lumpSumFinal)

	invested := mathutil.Sum(previous).
		Add(winner).
		Add(base.Mul(decimal.NewFromInt(int64(remaining))))

	return ComparisonScenario{
		Name:               EarlyWinScenarioName,
		Cashflows:          cashflows,
		AnnualIRR:          annualIRROrZero(cashflows, in.FrequencyPerYear),
		FinalAbsoluteValue: lumpSumFinal,
		TotalInvested:      invested,
		NetGain:            lumpSumFinal.Sub(invested),
		Details: map[string]any{
			"win_installment":     in.WinInstallment,
			"bid_amount":          in.WinBidAmount,
			"prize_amount":        prize,
			"winner_installment":  winner,
			"lumpsum_investment":  lumpSum,
			"lumpsum_rate":        in.LumpSumRate,
			"lumpsum_final_value": lumpSumFinal,
			"remaining_periods":   remaining,
		},
	}, nil
}

// lateWinScenario pays the history and then the interpolated schedule for
// every installment but the last, and takes the pool at the last
// installment with a minimal bid.
func lateWinScenario(in ComparisonInput) (ComparisonScenario, error) {
	paid, err := in.scheduledAmounts(in.TotalInstallments - 1)
	if err != nil {
		return ComparisonScenario{}, &Error{Kind: KindValidation, Op: "chit.lateWinScenario", Msg: "interpolation failed", Err: err}
	}

	bid := decimal.NewFromInt(constants.LateWinMinimalBid)
	cfg, err := NewConfig(ConfigParams{
		TotalInstallments:        in.TotalInstallments,
		CurrentInstallmentNumber: in.TotalInstallments,
		FullChitValue:            in.FullChitValue,
		FrequencyPerYear:         in.FrequencyPerYear,
		PreviousInstallments:     paid,
		BidAmount:                bid,
	})
	if err != nil {
		return ComparisonScenario{}, err
	}
	prize, err := PrizeAmount(cfg)
	if err != nil {
		return ComparisonScenario{}, err
	}

	cashflows := append(mathutil.Negate(paid), prize)
	invested := mathutil.Sum(paid)

	return ComparisonScenario{
		Name:               LateWinScenarioName,
		Cashflows:          cashflows,
		AnnualIRR:          annualIRROrZero(cashflows, in.FrequencyPerYear),
		FinalAbsoluteValue: prize,
		TotalInvested:      invested,
		NetGain:            prize.Sub(invested),
		Details: map[string]any{
			"min_installment":         in.LateMinInstallment,
			"max_installment":         in.LateMaxInstallment,
			"avg_installment":         mathutil.Average(in.LateMinInstallment, in.LateMaxInstallment),
			"total_installments_paid": len(paid),
			"bid_amount":              bid,
			"prize_amount":            prize,
		},
	}, nil
}

// sipScenario deposits the same schedule as the late win, one amount per
// installment for the whole tenure, each compounding at SIPRate to the end.
func sipScenario(in ComparisonInput) (ComparisonScenario, error) {
	const op = "chit.sipScenario"
	deposits, err := in.scheduledAmounts(in.TotalInstallments)
	if err != nil {
		return ComparisonScenario{}, &Error{Kind: KindValidation, Op: op, Msg: "interpolation failed", Err: err}
	}

	maturity, err := tvm.SIPFutureValue(deposits, in.SIPRate, in.FrequencyPerYear)
	if err != nil {
		return ComparisonScenario{}, calculationError(op, "SIP projection failed", err, nil)
	}

	cashflows := append(mathutil.Negate(deposits), maturity)
	invested := mathutil.Sum(deposits)

	return ComparisonScenario{
		Name:               SIPScenarioName,
		Cashflows:          cashflows,
		AnnualIRR:          annualIRROrZero(cashflows, in.FrequencyPerYear),
		FinalAbsoluteValue: maturity,
		TotalInvested:      invested,
		NetGain:            maturity.Sub(invested),
		Details: map[string]any{
			"sip_min_amount": in.LateMinInstallment,
			"sip_max_amount": in.LateMaxInstallment,
			"sip_rate":       in.SIPRate,
			"total_sips":     len(deposits),
			"sip_maturity":   maturity,
		},
	}, nil
}

func annualIRROrZero(cashflows []decimal.Decimal, frequencyPerYear int) float64 {
	_, annual, err := SolveIRR(cashflows, frequencyPerYear)
	if err != nil {
		return 0
	}
	return annual
}

// wrapError adds context to err while keeping its kind.
func wrapError(op, msg string, err error) *Error {
	kind := KindCalculation
	var e *Error
	if errors.As(err, &e) {
		kind = e.Kind
	}
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}
