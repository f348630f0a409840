package chit

import (
	"errors"
	"testing"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/mathutil"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/tvm"
	"github.com/shopspring/decimal"
)

func referenceComparison() ComparisonInput {
	return ComparisonInput{
		ChitName:           "Reference",
		TotalInstallments:  14,
		FullChitValue:      d(700000),
		FrequencyPerYear:   2,
		CurrentInstallment: 5,
		PreviousAmounts:    amounts(42000, 40000, 40000, 43000),
		WinInstallment:     5,
		WinBidAmount:       d(100000),
		LumpSumRate:        0.12,
		LateMinInstallment: d(35000),
		LateMaxInstallment: d(49000),
		SIPRate:            0.12,
	}
}

func TestCompareScenarioOrderAndShape(t *testing.T) {
	in := referenceComparison()

	result, err := Compare(in)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}

	tests := []struct {
		scenario      ComparisonScenario
		name          string
		cashflowCount int
	}{
		{result.Scenario1, EarlyWinScenarioName, 14},
		{result.Scenario2, LateWinScenarioName, 14},
		{result.Scenario3, SIPScenarioName, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.scenario.Name != tt.name {
				t.Errorf("Name = %q, want %q", tt.scenario.Name, tt.name)
			}
			if len(tt.scenario.Cashflows) != tt.cashflowCount {
				t.Errorf("len(Cashflows) = %d, want %d", len(tt.scenario.Cashflows), tt.cashflowCount)
			}
			if want := tt.scenario.FinalAbsoluteValue.Sub(tt.scenario.TotalInvested); !tt.scenario.NetGain.Equal(want) {
				t.Errorf("NetGain = %s, want %s", tt.scenario.NetGain, want)
			}
		})
	}

	if result.ChitName != "Reference" || result.TotalInstallments != 14 || result.FrequencyPerYear != 2 {
		t.Errorf("header = %q/%d/%d", result.ChitName, result.TotalInstallments, result.FrequencyPerYear)
	}
	if !result.ChitValue.Equal(d(700000)) {
		t.Errorf("ChitValue = %s, want 700000", result.ChitValue)
	}
}

func TestCompareEarlyWin(t *testing.T) {
	in := referenceComparison()
	s, err := earlyWinScenario(in)
	if err != nil {
		t.Fatalf("earlyWinScenario returned error: %v", err)
	}

	wantFinal, err := tvm.LumpSumFutureValue(d(550000), 0.12, 9, 2)
	if err != nil {
		t.Fatalf("LumpSumFutureValue returned error: %v", err)
	}
	if !s.FinalAbsoluteValue.Equal(wantFinal) {
		t.Errorf("FinalAbsoluteValue = %s, want %s", s.FinalAbsoluteValue, wantFinal)
	}
	if !s.TotalInvested.Equal(d(665000)) {
		t.Errorf("TotalInvested = %s, want 665000", s.TotalInvested)
	}

	if !s.Cashflows[4].Equal(d(-50000)) {
		t.Errorf("win period flow = %s, want -50000", s.Cashflows[4])
	}
	if want := d(-50000).Add(wantFinal); !s.Cashflows[13].Equal(want) {
		t.Errorf("final flow = %s, want %s", s.Cashflows[13], want)
	}

	if got := s.Details["remaining_periods"]; got != 9 {
		t.Errorf("remaining_periods = %v, want 9", got)
	}
	if got, ok := s.Details["prize_amount"].(decimal.Decimal); !ok || !got.Equal(d(550000)) {
		t.Errorf("prize_amount = %v, want 550000", s.Details["prize_amount"])
	}
}

func TestCompareEarlyWinBackfillsBaseInstallment(t *testing.T) {
	in := referenceComparison()
	in.WinInstallment = 7

	s, err := earlyWinScenario(in)
	if err != nil {
		t.Fatalf("earlyWinScenario returned error: %v", err)
	}
	for i, want := range amounts(-42000, -40000, -40000, -43000, -50000, -50000) {
		if !s.Cashflows[i].Equal(want) {
			t.Errorf("Cashflows[%d] = %s, want %s", i, s.Cashflows[i], want)
		}
	}
}

func TestCompareEarlyWinAtLastInstallment(t *testing.T) {
	in := referenceComparison()
	in.WinInstallment = 14

	s, err := earlyWinScenario(in)
	if err != nil {
		t.Fatalf("earlyWinScenario returned error: %v", err)
	}
	if len(s.Cashflows) != 14 {
		t.Fatalf("len(Cashflows) = %d, want 14", len(s.Cashflows))
	}
	if !s.FinalAbsoluteValue.Equal(d(550000)) {
		t.Errorf("FinalAbsoluteValue = %s, want the prize 550000", s.FinalAbsoluteValue)
	}
	if want := d(550000 - 50000); !s.Cashflows[13].Equal(want) {
		t.Errorf("final flow = %s, want %s", s.Cashflows[13], want)
	}
}

func TestCompareLateWin(t *testing.T) {
	in := referenceComparison()
	s, err := lateWinScenario(in)
	if err != nil {
		t.Fatalf("lateWinScenario returned error: %v", err)
	}

	varying, err := tvm.InterpolateInstallments(14, d(35000), d(49000))
	if err != nil {
		t.Fatalf("InterpolateInstallments returned error: %v", err)
	}
	paid := append(amounts(42000, 40000, 40000, 43000), varying[:9]...)

	if !s.FinalAbsoluteValue.Equal(d(649000)) {
		t.Errorf("FinalAbsoluteValue = %s, want 649000", s.FinalAbsoluteValue)
	}
	if want := mathutil.Sum(paid); !s.TotalInvested.Equal(want) {
		t.Errorf("TotalInvested = %s, want %s", s.TotalInvested, want)
	}
	for i := range paid {
		if !s.Cashflows[i].Equal(paid[i].Neg()) {
			t.Errorf("Cashflows[%d] = %s, want %s", i, s.Cashflows[i], paid[i].Neg())
		}
	}
	if got := s.Details["total_installments_paid"]; got != 13 {
		t.Errorf("total_installments_paid = %v, want 13", got)
	}
}

func TestCompareSIP(t *testing.T) {
	in := referenceComparison()
	s, err := sipScenario(in)
	if err != nil {
		t.Fatalf("sipScenario returned error: %v", err)
	}

	varying, err := tvm.InterpolateInstallments(14, d(35000), d(49000))
	if err != nil {
		t.Fatalf("InterpolateInstallments returned error: %v", err)
	}
	deposits := append(amounts(42000, 40000, 40000, 43000), varying[:10]...)
	wantMaturity, err := tvm.SIPFutureValue(deposits, 0.12, 2)
	if err != nil {
		t.Fatalf("SIPFutureValue returned error: %v", err)
	}

	if !s.FinalAbsoluteValue.Equal(wantMaturity) {
		t.Errorf("FinalAbsoluteValue = %s, want %s", s.FinalAbsoluteValue, wantMaturity)
	}
	if !s.Cashflows[14].Equal(wantMaturity) {
		t.Errorf("final inflow = %s, want %s", s.Cashflows[14], wantMaturity)
	}
	if got := s.Details["total_sips"]; got != 14 {
		t.Errorf("total_sips = %v, want 14", got)
	}
}

func TestCompareSIPBackfillsMidpointWithoutHistory(t *testing.T) {
	in := referenceComparison()
	in.PreviousAmounts = nil

	s, err := sipScenario(in)
	if err != nil {
		t.Fatalf("sipScenario returned error: %v", err)
	}
	if got := s.Cashflows[13]; !got.Equal(d(-42000)) {
		t.Errorf("last deposit = %s, want -42000", got)
	}
	if got := s.Cashflows[0]; !got.Equal(d(-35000)) {
		t.Errorf("first deposit = %s, want -35000", got)
	}
}

func TestCompareRanking(t *testing.T) {
	in := referenceComparison()
	result, err := Compare(in)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}

	scenarios := result.Scenarios()
	best, second := scenarios[0], scenarios[1]
	if second.FinalAbsoluteValue.GreaterThan(best.FinalAbsoluteValue) {
		best, second = second, best
	}
	for _, s := range scenarios[2:] {
		switch {
		case s.FinalAbsoluteValue.GreaterThan(best.FinalAbsoluteValue):
			best, second = s, best
		case s.FinalAbsoluteValue.GreaterThan(second.FinalAbsoluteValue):
			second = s
		}
	}

	if result.BestScenarioName != best.Name {
		t.Errorf("BestScenarioName = %q, want %q", result.BestScenarioName, best.Name)
	}
	if want := best.FinalAbsoluteValue.Sub(second.FinalAbsoluteValue); !result.AdvantageAmount.Equal(want) {
		t.Errorf("AdvantageAmount = %s, want %s", result.AdvantageAmount, want)
	}

	ranked := result.Ranked()
	for i := 1; i < len(ranked); i++ {
		if ranked[i].FinalAbsoluteValue.GreaterThan(ranked[i-1].FinalAbsoluteValue) {
			t.Errorf("Ranked()[%d] = %s above Ranked()[%d] = %s", i, ranked[i].FinalAbsoluteValue, i-1, ranked[i-1].FinalAbsoluteValue)
		}
	}
}

func TestCompareSIPBeatsLumpSumAtHigherSIPRate(t *testing.T) {
	in := referenceComparison()
	in.LumpSumRate = 0
	in.SIPRate = 0.5

	result, err := Compare(in)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	if result.BestScenarioName != SIPScenarioName {
		t.Errorf("BestScenarioName = %q, want %q", result.BestScenarioName, SIPScenarioName)
	}
	if !result.Scenario1.FinalAbsoluteValue.Equal(d(550000)) {
		t.Errorf("zero-rate lump sum = %s, want the prize 550000", result.Scenario1.FinalAbsoluteValue)
	}
}

func TestCompareDeterministic(t *testing.T) {
	in := referenceComparison()
	first, err := Compare(in)
	if err != nil {
		t.Fatalf("Compare returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Compare(in)
		if err != nil {
			t.Fatalf("Compare returned error: %v", err)
		}
		for j, s := range again.Scenarios() {
			want := first.Scenarios()[j]
			if s.AnnualIRR != want.AnnualIRR || !s.FinalAbsoluteValue.Equal(want.FinalAbsoluteValue) {
				t.Errorf("run %d scenario %q differs: %v/%s vs %v/%s", i, s.Name,
					s.AnnualIRR, s.FinalAbsoluteValue, want.AnnualIRR, want.FinalAbsoluteValue)
			}
		}
	}
}

func TestCompareValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ComparisonInput)
	}{
		{"zero installments", func(in *ComparisonInput) { in.TotalInstallments = 0 }},
		{"zero value", func(in *ComparisonInput) { in.FullChitValue = decimal.Zero }},
		{"bad frequency", func(in *ComparisonInput) { in.FrequencyPerYear = 0 }},
		{"win installment zero", func(in *ComparisonInput) { in.WinInstallment = 0 }},
		{"win installment beyond total", func(in *ComparisonInput) { in.WinInstallment = 15 }},
		{"min above max", func(in *ComparisonInput) { in.LateMinInstallment = d(50000) }},
		{"non-positive min", func(in *ComparisonInput) { in.LateMinInstallment = decimal.Zero }},
		{"rate at -100%", func(in *ComparisonInput) { in.SIPRate = -1 }},
		{"negative history", func(in *ComparisonInput) { in.PreviousAmounts = amounts(-1) }},
		{"current zero", func(in *ComparisonInput) { in.CurrentInstallment = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := referenceComparison()
			tt.mutate(&in)
			if _, err := Compare(in); !errors.Is(err, ErrConfiguration) {
				t.Errorf("Compare error = %v, want configuration error", err)
			}
		})
	}
}

func TestCompareScenarioFailurePropagates(t *testing.T) {
	in := referenceComparison()
	in.WinBidAmount = d(700000)

	_, err := Compare(in)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("Compare error = %v, want configuration error", err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Op != "chit.Compare" {
		t.Errorf("error %v is not wrapped by chit.Compare", err)
	}
}

func TestAnnualIRROrZero(t *testing.T) {
	if got := annualIRROrZero(amounts(100, 100), 12); got != 0 {
		t.Errorf("annualIRROrZero(no sign change) = %v, want 0", got)
	}
	if got := annualIRROrZero(amounts(-100, 110), 1); got < 0.0999 || got > 0.1001 {
		t.Errorf("annualIRROrZero(-100, 110) = %v, want 0.1", got)
	}
}
