// Package output provides utilities for formatting and displaying analysis results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/analysis"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/chit"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/format"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, reports []analysis.Report) {
	p := message.NewPrinter(language.English)
	for i, report := range reports {
		_, _ = fmt.Fprintf(w, "--- Results for chit %s (%s) ---\n", report.Name, format.FrequencyLabel(report.FrequencyPerYear))

		if report.Analysis != nil {
			prettyAnalysis(w, p, report.Analysis)
		}
		if len(report.Frequencies) > 0 {
			prettyFrequencies(w, p, report.Frequencies)
		}
		if report.Sweep != nil {
			prettySweep(w, p, report.Sweep, report.SweepSummary)
		}
		if report.Comparison != nil {
			prettyComparison(w, p, report.Comparison)
		}

		if i < len(reports)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

func prettyAnalysis(w io.Writer, p *message.Printer, res *chit.AnalysisResult) {
	_, _ = fmt.Fprintf(w, "Prize amount:            %s\n", format.Currency(res.PrizeAmount))
	_, _ = fmt.Fprintf(w, "Annual IRR:              %s\n", format.Percentage(res.AnnualIRR))
	_, _ = fmt.Fprintf(w, "Period IRR:              %s\n", format.Percentage(res.PeriodIRR))
	_, _ = fmt.Fprintf(w, "Total repayment:         %s\n", format.Currency(res.TotalRepayment))
	_, _ = fmt.Fprintf(w, "Net interest cost:       %s\n", format.Currency(res.NetInterestCost))
	_, _ = fmt.Fprintf(w, "Effective interest rate: %s\n", format.Percentage(res.EffectiveInterestRate))
	_, _ = fmt.Fprintf(w, "Period | Cashflow\n")
	_, _ = fmt.Fprintf(w, "______ | ________\n")
	for i, cf := range res.Cashflows {
		_, _ = p.Fprintf(w, "%6d | %s%.2f\n", i+1, constants.CurrencySymbol, cf.InexactFloat64())
	}
}

func prettyFrequencies(w io.Writer, p *message.Printer, rows []chit.FrequencyComparison) {
	_, _ = fmt.Fprintf(w, "Frequency            | Period IRR | Annual IRR\n")
	_, _ = fmt.Fprintf(w, "____________________ | __________ | __________\n")
	for _, row := range rows {
		_, _ = p.Fprintf(w, "%-20s | %10s | %10s\n", format.FrequencyLabel(row.FrequencyPerYear),
			format.Percentage(row.PeriodIRR), format.Percentage(row.AnnualIRR))
	}
}

func prettySweep(w io.Writer, p *message.Printer, rows []chit.BidScenario, summary *chit.SweepSummary) {
	_, _ = fmt.Fprintf(w, "Bid amount     | Prize amount   | Annual IRR\n")
	_, _ = fmt.Fprintf(w, "______________ | ______________ | __________\n")
	for _, row := range rows {
		_, _ = p.Fprintf(w, "%s%13.2f | %s%13.2f | %10s\n",
			constants.CurrencySymbol, row.BidAmount.InexactFloat64(),
			constants.CurrencySymbol, row.PrizeAmount.InexactFloat64(),
			format.Percentage(row.AnnualIRR))
	}
	if summary != nil {
		_, _ = fmt.Fprintf(w, "IRR range %s to %s (mean %s, median %s); lowest cost at bid %s\n",
			format.Percentage(summary.MinIRR), format.Percentage(summary.MaxIRR),
			format.Percentage(summary.MeanIRR), format.Percentage(summary.MedianIRR),
			format.Currency(summary.Cheapest.BidAmount))
	}
}

func prettyComparison(w io.Writer, p *message.Printer, cmp *chit.ThreeWayComparison) {
	_, _ = fmt.Fprintf(w, "Scenario                    | Invested       | Final value    | Net gain       | Annual IRR\n")
	_, _ = fmt.Fprintf(w, "___________________________ | ______________ | ______________ | ______________ | __________\n")
	for _, s := range cmp.Scenarios() {
		_, _ = p.Fprintf(w, "%-27s | %s%13.2f | %s%13.2f | %s%13.2f | %10s\n", s.Name,
			constants.CurrencySymbol, s.TotalInvested.InexactFloat64(),
			constants.CurrencySymbol, s.FinalAbsoluteValue.InexactFloat64(),
			constants.CurrencySymbol, s.NetGain.InexactFloat64(),
			format.Percentage(s.AnnualIRR))
	}
	_, _ = fmt.Fprintf(w, "Best: %s, ahead of the next by %s\n", cmp.BestScenarioName, format.Currency(cmp.AdvantageAmount))
}

// CsvFormat writes one CSV section per kind of result, each with its own
// header row and a leading chit column. Sections are separated by a blank
// line and omitted when no report has them.
func CsvFormat(w io.Writer, reports []analysis.Report) error {
	cw := csv.NewWriter(w)
	sections := 0
	section := func(header []string, rows [][]string) {
		if len(rows) == 0 {
			return
		}
		if sections > 0 {
			_ = cw.Write(nil)
		}
		sections++
		_ = cw.Write(header)
		_ = cw.WriteAll(rows)
	}

	var analyses, cashflows, sweeps, comparisons [][]string
	for _, r := range reports {
		if a := r.Analysis; a != nil {
			analyses = append(analyses, []string{r.Name,
				money(a.PrizeAmount), rate(a.AnnualIRR), rate(a.PeriodIRR),
				money(a.TotalRepayment), money(a.NetInterestCost), rate(a.EffectiveInterestRate)})
			for i, cf := range a.Cashflows {
				cashflows = append(cashflows, []string{r.Name, strconv.Itoa(i + 1), money(cf)})
			}
		}
		for _, s := range r.Sweep {
			sweeps = append(sweeps, []string{r.Name, money(s.BidAmount), money(s.PrizeAmount), rate(s.AnnualIRR)})
		}
		if r.Comparison != nil {
			for _, row := range ComparisonRows(r.Comparison) {
				comparisons = append(comparisons, append([]string{r.Name}, row...))
			}
		}
	}

	section([]string{"chit", "prize_amount", "annual_irr", "period_irr", "total_repayment", "net_interest_cost", "effective_interest_rate"}, analyses)
	section([]string{"chit", "period", "cashflow"}, cashflows)
	section([]string{"chit", "bid_amount", "prize_amount", "annual_irr"}, sweeps)
	section(append([]string{"chit"}, ComparisonHeader...), comparisons)

	cw.Flush()
	return cw.Error()
}

func money(v decimal.Decimal) string {
	return v.StringFixed(constants.DecimalPlaces)
}

func rate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
