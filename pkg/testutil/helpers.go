// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/internal/analysis"
)

// FindReport finds a chit report by name in the results slice.
// Returns a pointer to the report if found, nil otherwise.
func FindReport(reports []analysis.Report, name string) *analysis.Report {
	for i := range reports {
		if reports[i].Name == name {
			return &reports[i]
		}
	}
	return nil
}
