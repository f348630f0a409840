// Package analysis runs the configured analyses for every active chit and
// collects the results into reports for rendering.
package analysis

import (
	"fmt"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/config"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/chit"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"go.uber.org/zap"
)

// Report holds everything computed for one chit. Sections that were not
// requested, or that the chit has no settings for, are nil.
type Report struct {
	Name             string
	FrequencyPerYear int
	Analysis         *chit.AnalysisResult
	Frequencies      []chit.FrequencyComparison
	Sweep            []chit.BidScenario
	SweepSummary     *chit.SweepSummary
	Comparison       *chit.ThreeWayComparison
}

// Run processes the Reports for all active chits in file order.
func Run(logger *zap.Logger, conf config.Configuration) ([]Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mode := conf.Mode
	if mode == "" {
		mode = constants.ModeAll
	}

	if len(conf.ActiveChits()) == 0 {
		logger.Warn("no active chits to analyze",
			zap.String("op", "analysis.Run"),
			zap.Int("configured", len(conf.Chits)),
		)
	}

	var reports []Report
	for _, c := range conf.Chits {
		if !c.Active {
			logger.Debug(fmt.Sprintf("skipping chit %s because it is inactive", c.Name),
				zap.String("op", "analysis.Run"),
			)
			continue
		}

		report, err := RunChit(logger, c, mode)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// RunChit computes the sections of one chit's report selected by mode.
func RunChit(logger *zap.Logger, c config.Chit, mode string) (Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("chit", c.Name))

	report := Report{
		Name:             c.Name,
		FrequencyPerYear: c.ChitFrequencyPerYear,
	}
	want := func(m string) bool { return mode == constants.ModeAll || mode == m }

	var cfg chit.Config
	if want(constants.ModeAnalyze) || want(constants.ModeSweep) {
		var err error
		cfg, err = c.ToChitConfig()
		if err != nil {
			return report, fmt.Errorf("chit %s: %w", c.Name, err)
		}
	}

	if want(constants.ModeAnalyze) {
		result, err := chit.Analyze(cfg)
		if err != nil {
			return report, fmt.Errorf("chit %s: %w", c.Name, err)
		}
		report.Analysis = &result
		logger.Info("analyzed chit",
			zap.String("op", "analysis.RunChit"),
			zap.String("prize", result.PrizeAmount.StringFixed(constants.DecimalPlaces)),
			zap.Float64("annualIRR", result.AnnualIRR),
		)

		if len(c.CompareFrequencies) > 0 {
			frequencies, err := chit.CompareFrequencies(cfg, cfg.BidAmount(), c.CompareFrequencies)
			if err != nil {
				return report, fmt.Errorf("chit %s: %w", c.Name, err)
			}
			report.Frequencies = frequencies
		}
	}

	if want(constants.ModeSweep) {
		if c.Sweep == nil {
			logger.Debug("no sweep settings, skipping sweep", zap.String("op", "analysis.RunChit"))
		} else {
			scenarios, err := chit.Sweep(cfg, c.SweepBids())
			if err != nil {
				return report, fmt.Errorf("chit %s: %w", c.Name, err)
			}
			summary, err := chit.SummarizeSweep(scenarios)
			if err != nil {
				return report, fmt.Errorf("chit %s: %w", c.Name, err)
			}
			report.Sweep = scenarios
			report.SweepSummary = &summary
			logger.Info("swept bids",
				zap.String("op", "analysis.RunChit"),
				zap.Int("count", summary.Count),
				zap.Float64("minIRR", summary.MinIRR),
				zap.Float64("maxIRR", summary.MaxIRR),
			)
		}
	}

	if want(constants.ModeCompare) {
		if c.Comparison == nil {
			logger.Debug("no comparison settings, skipping comparison", zap.String("op", "analysis.RunChit"))
		} else {
			in, err := c.ToComparisonInput()
			if err != nil {
				return report, fmt.Errorf("chit %s: %w", c.Name, err)
			}
			comparison, err := chit.Compare(in)
			if err != nil {
				return report, fmt.Errorf("chit %s: %w", c.Name, err)
			}
			report.Comparison = &comparison
			logger.Info("compared strategies",
				zap.String("op", "analysis.RunChit"),
				zap.String("best", comparison.BestScenarioName),
				zap.String("advantage", comparison.AdvantageAmount.StringFixed(constants.DecimalPlaces)),
			)
		}
	}

	return report, nil
}
