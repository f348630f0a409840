package chit

import (
	"runtime"
	"sort"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Sweep analyzes base once per bid amount and returns the scenarios in the
// order the bids were given. Bids are evaluated concurrently; if any fail,
// the error for the earliest failing bid is returned and no scenarios are.
func Sweep(base Config, bids []decimal.Decimal) ([]BidScenario, error) {
	const op = "chit.Sweep"
	if err := base.requireValid(op); err != nil {
		return nil, err
	}

	scenarios := make([]BidScenario, len(bids))
	errs := make([]error, len(bids))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, bid := range bids {
		i, bid := i, bid
		g.Go(func() error {
			scenarios[i], errs[i] = evaluateBid(base, bid)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, calculationError(op, "scenario analysis failed", err, map[string]string{
				"bid_amount": bids[i].String(),
			})
		}
	}
	return scenarios, nil
}

func evaluateBid(base Config, bid decimal.Decimal) (BidScenario, error) {
	cfg, err := base.WithBid(bid)
	if err != nil {
		return BidScenario{}, err
	}
	res, err := Analyze(cfg)
	if err != nil {
		return BidScenario{}, err
	}

	scenario := BidScenario{
		BidAmount:   bid,
		PrizeAmount: res.PrizeAmount,
		AnnualIRR:   res.AnnualIRR,
	}
	if cfg.FrequencyPerYear() == constants.MonthlyFrequency {
		period := res.PeriodIRR
		scenario.PeriodIRR = &period
	}
	return scenario, nil
}

// BidRange returns count evenly spaced bids from minBid to maxBid inclusive.
// A count of one or less yields just minBid.
func BidRange(minBid, maxBid decimal.Decimal, count int) []decimal.Decimal {
	if count <= 1 {
		return []decimal.Decimal{minBid}
	}

	step := maxBid.Sub(minBid).Div(decimal.NewFromInt(int64(count - 1)))
	bids := make([]decimal.Decimal, count)
	for i := 0; i < count-1; i++ {
		bids[i] = minBid.Add(step.Mul(decimal.NewFromInt(int64(i))))
	}
	bids[count-1] = maxBid
	return bids
}

// SummarizeSweep aggregates the IRR, bid and prize spread of a sweep. The
// median is the upper middle element for even counts.
func SummarizeSweep(scenarios []BidScenario) (SweepSummary, error) {
	const op = "chit.SummarizeSweep"
	if len(scenarios) == 0 {
		return SweepSummary{}, &Error{Kind: KindValidation, Op: op, Msg: "no scenarios to summarize"}
	}

	first := scenarios[0]
	summary := SweepSummary{
		Count:    len(scenarios),
		MinIRR:   first.AnnualIRR,
		MaxIRR:   first.AnnualIRR,
		MinBid:   first.BidAmount,
		MaxBid:   first.BidAmount,
		MinPrize: first.PrizeAmount,
		MaxPrize: first.PrizeAmount,
		Cheapest: first,
	}

	irrs := make([]float64, len(scenarios))
	var total float64
	for i, s := range scenarios {
		irrs[i] = s.AnnualIRR
		total += s.AnnualIRR

		if s.AnnualIRR < summary.MinIRR {
			summary.MinIRR = s.AnnualIRR
			summary.Cheapest = s
		}
		if s.AnnualIRR > summary.MaxIRR {
			summary.MaxIRR = s.AnnualIRR
		}
		summary.MinBid = decimal.Min(summary.MinBid, s.BidAmount)
		summary.MaxBid = decimal.Max(summary.MaxBid, s.BidAmount)
		summary.MinPrize = decimal.Min(summary.MinPrize, s.PrizeAmount)
		summary.MaxPrize = decimal.Max(summary.MaxPrize, s.PrizeAmount)
	}

	sort.Float64s(irrs)
	summary.MeanIRR = total / float64(len(scenarios))
	summary.MedianIRR = irrs[len(irrs)/2]
	return summary, nil
}

// CompareFrequencies analyzes the same chit and bid at each payment
// frequency. Results follow the order of frequencies.
func CompareFrequencies(base Config, bid decimal.Decimal, frequencies []int) ([]FrequencyComparison, error) {
	const op = "chit.CompareFrequencies"
	if err := base.requireValid(op); err != nil {
		return nil, err
	}

	withBid, err := base.WithBid(bid)
	if err != nil {
		return nil, err
	}

	out := make([]FrequencyComparison, 0, len(frequencies))
	for _, freq := range frequencies {
		cfg, err := withBid.WithFrequency(freq)
		if err != nil {
			return nil, err
		}
		res, err := Analyze(cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, FrequencyComparison{
			FrequencyPerYear: freq,
			BidAmount:        bid,
			PrizeAmount:      res.PrizeAmount,
			PeriodIRR:        res.PeriodIRR,
			AnnualIRR:        res.AnnualIRR,
		})
	}
	return out, nil
}
