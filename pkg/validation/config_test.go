package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestValidateSweepRange(t *testing.T) {
	tests := []struct {
		name      string
		minBid    int64
		maxBid    int64
		wantWarns []string
	}{
		{name: "inside range", minBid: 50000, maxBid: 300000},
		{name: "max leaves no prize", minBid: 50000, maxBid: 650000, wantWarns: []string{"leaves no prize"}},
		{name: "descending", minBid: 300000, maxBid: 50000, wantWarns: []string{"descending"}},
		{
			name:      "descending past limit",
			minBid:    660000,
			maxBid:    50000,
			wantWarns: []string{"descending", "leaves no prize"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateSweepRange("Office", d(tt.minBid), d(tt.maxBid), d(700000), d(50000))
			if len(warnings) != len(tt.wantWarns) {
				t.Fatalf("got %d warnings %v, want %d", len(warnings), warnings, len(tt.wantWarns))
			}
			for i, want := range tt.wantWarns {
				if !strings.Contains(warnings[i], want) {
					t.Errorf("warning %q does not mention %q", warnings[i], want)
				}
				if !strings.Contains(warnings[i], "'Office'") {
					t.Errorf("warning %q does not name the chit", warnings[i])
				}
			}
		})
	}
}

func TestValidateComparisonHistory(t *testing.T) {
	if got := ValidateComparisonHistory("Office", 5, 4); got != "" {
		t.Errorf("history up to the win produced warning %q", got)
	}
	got := ValidateComparisonHistory("Office", 3, 4)
	if !strings.Contains(got, "ignores 2 of them") {
		t.Errorf("warning = %q, want it to count 2 ignored installments", got)
	}
}

func TestConfigValidatorValidateAll(t *testing.T) {
	cv := ConfigValidator{
		Chits: []ChitConfig{
			{
				Name:              "Active",
				Active:            true,
				FullChitValue:     d(700000),
				WinnerInstallment: d(50000),
				HistoryLength:     6,
				Sweep:             &SweepConfig{MinBid: d(50000), MaxBid: d(700000)},
				Comparison:        &ComparisonConfig{WinInstallment: 5},
			},
			{
				Name:              "Inactive",
				FullChitValue:     d(700000),
				WinnerInstallment: d(50000),
				Sweep:             &SweepConfig{MinBid: d(50000), MaxBid: d(700000)},
			},
			{
				Name:              "Clean",
				Active:            true,
				FullChitValue:     d(100000),
				WinnerInstallment: d(10000),
			},
		},
	}

	warnings := cv.ValidateAll()
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings %v, want 2", len(warnings), warnings)
	}
	for _, w := range warnings {
		if strings.Contains(w, "Inactive") {
			t.Errorf("inactive chit produced warning %q", w)
		}
	}
}

func TestNewStructValidatorComparesDecimals(t *testing.T) {
	type payload struct {
		Amount decimal.Decimal `validate:"gt=0"`
		Rate   decimal.Decimal `validate:"gte=0,lte=1"`
	}
	v := NewStructValidator()

	if err := v.Struct(payload{Amount: d(10), Rate: decimal.RequireFromString("0.5")}); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
	if err := v.Struct(payload{Amount: decimal.Zero, Rate: decimal.RequireFromString("0.5")}); err == nil {
		t.Error("zero amount accepted")
	}
	if err := v.Struct(payload{Amount: d(10), Rate: d(2)}); err == nil {
		t.Error("rate above one accepted")
	}
}
