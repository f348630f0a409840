package chit

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AnalysisResult is the outcome of analyzing one chit at one bid.
type AnalysisResult struct {
	Config      Config
	PrizeAmount decimal.Decimal
	Cashflows   []decimal.Decimal

	// PeriodIRR is the rate per installment period; AnnualIRR compounds it
	// over the chit's frequency.
	PeriodIRR float64
	AnnualIRR float64

	// TotalRepayment is everything the member pays out over the chit.
	TotalRepayment decimal.Decimal
	// NetInterestCost is TotalRepayment minus the prize received.
	NetInterestCost decimal.Decimal
	// EffectiveInterestRate is NetInterestCost as a fraction of the prize.
	EffectiveInterestRate float64
}

// BidScenario is one row of a bid sweep.
type BidScenario struct {
	BidAmount   decimal.Decimal
	PrizeAmount decimal.Decimal
	AnnualIRR   float64
	// PeriodIRR is only populated for monthly chits.
	PeriodIRR *float64
}

// SweepSummary aggregates a bid sweep.
type SweepSummary struct {
	Count     int
	MinIRR    float64
	MaxIRR    float64
	MeanIRR   float64
	MedianIRR float64
	MinBid    decimal.Decimal
	MaxBid    decimal.Decimal
	MinPrize  decimal.Decimal
	MaxPrize  decimal.Decimal
	// Cheapest is the scenario with the lowest annual IRR.
	Cheapest BidScenario
}

// FrequencyComparison is the analysis of one chit at one payment frequency.
type FrequencyComparison struct {
	FrequencyPerYear int
	BidAmount        decimal.Decimal
	PrizeAmount      decimal.Decimal
	PeriodIRR        float64
	AnnualIRR        float64
}

// ComparisonScenario is one strategy in a three-way comparison.
type ComparisonScenario struct {
	Name               string
	Cashflows          []decimal.Decimal
	AnnualIRR          float64
	FinalAbsoluteValue decimal.Decimal
	TotalInvested      decimal.Decimal
	NetGain            decimal.Decimal
	Details            map[string]any
}

// ThreeWayComparison holds the early-win, late-win and SIP strategies for
// the same chit together with the one that ends with the most money.
type ThreeWayComparison struct {
	Scenario1 ComparisonScenario
	Scenario2 ComparisonScenario
	Scenario3 ComparisonScenario

	ChitName          string
	TotalInstallments int
	ChitValue         decimal.Decimal
	FrequencyPerYear  int

	BestScenarioName string
	// AdvantageAmount is the best scenario's lead over the runner-up.
	AdvantageAmount decimal.Decimal
}

// Scenarios returns the three strategies in their fixed order.
func (t ThreeWayComparison) Scenarios() []ComparisonScenario {
	return []ComparisonScenario{t.Scenario1, t.Scenario2, t.Scenario3}
}

// Ranked returns the strategies ordered by final absolute value, highest
// first. Ties keep the fixed order.
func (t ThreeWayComparison) Ranked() []ComparisonScenario {
	ranked := t.Scenarios()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalAbsoluteValue.GreaterThan(ranked[j].FinalAbsoluteValue)
	})
	return ranked
}
