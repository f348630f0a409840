package integration

import (
	"os"
	"testing"
	"time"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/analysis"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/config"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/chit"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	logger := zap.NewNop()

	start := time.Now()
	conf, err := config.LoadConfiguration(testConfigPath)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	loadTime := time.Since(start)

	start = time.Now()
	reports, err := analysis.Run(logger, *conf)
	if err != nil {
		t.Fatalf("analysis.Run failed: %v", err)
	}
	runTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Load config: %v", loadTime)
	t.Logf("  Analyze chits: %v", runTime)

	if total := loadTime + runTime; total > 10*time.Second {
		t.Errorf("Total processing time %v exceeds 10 second threshold", total)
	}
	if len(reports) != 2 {
		t.Errorf("Expected 2 reports, got %d", len(reports))
	}
}

// TestLargeSweep runs a dense sweep over a long monthly chit.
func TestLargeSweep(t *testing.T) {
	previous := make([]decimal.Decimal, 59)
	for i := range previous {
		previous[i] = decimal.NewFromInt(int64(16000 + (i%7)*250))
	}
	cfg, err := chit.NewConfig(chit.ConfigParams{
		TotalInstallments:        100,
		CurrentInstallmentNumber: 60,
		FullChitValue:            decimal.NewFromInt(2000000),
		FrequencyPerYear:         12,
		PreviousInstallments:     previous,
		BidAmount:                decimal.NewFromInt(100000),
	})
	if err != nil {
		t.Fatalf("NewConfig failed: %v", err)
	}

	bids := chit.BidRange(decimal.NewFromInt(10000), decimal.NewFromInt(150000), 500)

	start := time.Now()
	scenarios, err := chit.Sweep(cfg, bids)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	elapsed := time.Since(start)
	t.Logf("Swept %d bids in %v", len(scenarios), elapsed)

	if len(scenarios) != len(bids) {
		t.Fatalf("Expected %d scenarios, got %d", len(bids), len(scenarios))
	}
	for i, s := range scenarios {
		if !s.BidAmount.Equal(bids[i]) {
			t.Fatalf("scenario %d has bid %s, expected %s", i, s.BidAmount, bids[i])
		}
	}
	if elapsed > 10*time.Second {
		t.Errorf("Sweep took %v, exceeds 10 second threshold", elapsed)
	}
}

// TestDataConsistency validates that multiple runs produce identical results
func TestDataConsistency(t *testing.T) {
	var first []analysis.Report

	for run := 0; run < 3; run++ {
		conf, err := config.LoadConfiguration(testConfigPath)
		if err != nil {
			t.Fatalf("LoadConfiguration failed on run %d: %v", run, err)
		}
		reports, err := analysis.Run(zap.NewNop(), *conf)
		if err != nil {
			t.Fatalf("analysis.Run failed on run %d: %v", run, err)
		}

		if run == 0 {
			first = reports
			continue
		}

		for i, report := range reports {
			want := first[i]
			if report.Analysis.AnnualIRR != want.Analysis.AnnualIRR {
				t.Errorf("run %d chit %s: annual IRR %v differs from %v",
					run, report.Name, report.Analysis.AnnualIRR, want.Analysis.AnnualIRR)
			}
			for j := range report.Sweep {
				if report.Sweep[j].AnnualIRR != want.Sweep[j].AnnualIRR {
					t.Errorf("run %d chit %s: sweep row %d differs", run, report.Name, j)
				}
			}
			if report.Comparison != nil && report.Comparison.BestScenarioName != want.Comparison.BestScenarioName {
				t.Errorf("run %d chit %s: best scenario changed", run, report.Name)
			}
		}
	}
}
