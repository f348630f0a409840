package chit

import (
	"errors"
	"fmt"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/irr"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// PrizeAmount is what the winner receives at the win period: the full
// value less the bid, less the winner's own installment for that period.
func PrizeAmount(cfg Config) (decimal.Decimal, error) {
	const op = "chit.PrizeAmount"
	if err := cfg.requireValid(op); err != nil {
		return decimal.Zero, err
	}

	prize := cfg.FullChitValue().Sub(cfg.BidAmount()).Sub(cfg.WinnerInstallment())
	if !prize.IsPositive() {
		return decimal.Zero, calculationError(op, "prize amount must be positive", nil, map[string]string{
			"full_chit_value":    cfg.FullChitValue().String(),
			"bid_amount":         cfg.BidAmount().String(),
			"winner_installment": cfg.WinnerInstallment().String(),
			"prize_amount":       prize.String(),
		})
	}
	return prize, nil
}

// GenerateCashflows lays out the member's cashflows from their point of
// view: every earlier installment as an outflow, the prize as the inflow at
// the win period, then the winner installment as an outflow for each
// remaining period. The result always has TotalInstallments entries.
func GenerateCashflows(cfg Config, prize decimal.Decimal) ([]decimal.Decimal, error) {
	const op = "chit.GenerateCashflows"
	if err := cfg.requireValid(op); err != nil {
		return nil, err
	}
	if !prize.IsPositive() {
		return nil, calculationError(op, "prize amount must be positive", nil, map[string]string{
			"prize_amount": prize.String(),
		})
	}

	cashflows := make([]decimal.Decimal, 0, cfg.TotalInstallments())
	cashflows = append(cashflows, mathutil.Negate(cfg.PreviousInstallments())...)
	cashflows = append(cashflows, prize)

	outflow := cfg.WinnerInstallment().Neg()
	for i := 0; i < cfg.RemainingInstallments(); i++ {
		cashflows = append(cashflows, outflow)
	}
	return cashflows, nil
}

// CashflowsToFloat converts decimal cashflows for the root finder.
func CashflowsToFloat(cashflows []decimal.Decimal) []float64 {
	out := make([]float64, len(cashflows))
	for i, c := range cashflows {
		out[i] = c.InexactFloat64()
	}
	return out
}

// SolveIRR returns the periodic and annualized IRR of cashflows, mapping
// root-finder failures to calculation errors.
func SolveIRR(cashflows []decimal.Decimal, frequencyPerYear int) (float64, float64, error) {
	const op = "chit.SolveIRR"
	res, err := irr.Solve(CashflowsToFloat(cashflows), frequencyPerYear)
	if err != nil {
		msg := "IRR calculation failed"
		switch {
		case errors.Is(err, irr.ErrNoSignChange):
			msg = "cashflows have no sign change"
		case errors.Is(err, irr.ErrNoConvergence):
			msg = "IRR did not converge"
		}
		return 0, 0, calculationError(op, msg, err, map[string]string{
			"cashflow_count": fmt.Sprint(len(cashflows)),
		})
	}
	return res.PeriodRate, res.AnnualRate, nil
}

// Analyze computes the prize, the cashflows, the IRR and the cost figures
// for cfg.
func Analyze(cfg Config) (AnalysisResult, error) {
	const op = "chit.Analyze"
	if err := cfg.requireValid(op); err != nil {
		return AnalysisResult{}, err
	}

	prize, err := PrizeAmount(cfg)
	if err != nil {
		return AnalysisResult{}, err
	}
	cashflows, err := GenerateCashflows(cfg, prize)
	if err != nil {
		return AnalysisResult{}, err
	}
	periodIRR, annualIRR, err := SolveIRR(cashflows, cfg.FrequencyPerYear())
	if err != nil {
		return AnalysisResult{}, err
	}

	repayment := mathutil.Sum(cfg.PreviousInstallments()).
		Add(cfg.WinnerInstallment().Mul(decimal.NewFromInt(int64(cfg.RemainingInstallments()))))
	netCost := repayment.Sub(prize)

	return AnalysisResult{
		Config:                cfg,
		PrizeAmount:           prize,
		Cashflows:             cashflows,
		PeriodIRR:             periodIRR,
		AnnualIRR:             annualIRR,
		TotalRepayment:        repayment,
		NetInterestCost:       netCost,
		EffectiveInterestRate: netCost.Div(prize).InexactFloat64(),
	}, nil
}
