package testutil

import (
	"testing"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/analysis"
)

func TestFindReport(t *testing.T) {
	reports := []analysis.Report{
		{Name: "Office", FrequencyPerYear: 2},
		{Name: "Family", FrequencyPerYear: 12},
		{Name: "Office Annex", FrequencyPerYear: 4},
	}

	tests := []struct {
		name          string
		searchName    string
		expectFound   bool
		wantFrequency int
	}{
		{"Find first report", "Office", true, 2},
		{"Find last report", "Office Annex", true, 4},
		{"Name match is exact", "office", false, 0},
		{"Missing report", "Closed", false, 0},
		{"Empty name", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindReport(reports, tt.searchName)
			if (got != nil) != tt.expectFound {
				t.Fatalf("FindReport(%q) found = %v, want %v", tt.searchName, got != nil, tt.expectFound)
			}
			if got != nil && got.FrequencyPerYear != tt.wantFrequency {
				t.Errorf("FindReport(%q).FrequencyPerYear = %d, want %d", tt.searchName, got.FrequencyPerYear, tt.wantFrequency)
			}
		})
	}
}

func TestFindReportReturnsElementPointer(t *testing.T) {
	reports := []analysis.Report{{Name: "Office"}}

	FindReport(reports, "Office").FrequencyPerYear = 12
	if reports[0].FrequencyPerYear != 12 {
		t.Error("FindReport should point into the slice, not at a copy")
	}
}

func TestFindReportNilSlice(t *testing.T) {
	if got := FindReport(nil, "Office"); got != nil {
		t.Errorf("FindReport(nil) = %v, want nil", got)
	}
}
