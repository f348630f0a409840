// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateMode checks if the run mode is one of the supported modes.
func ValidateMode(mode string) error {
	switch mode {
	case constants.ModeAnalyze, constants.ModeSweep, constants.ModeCompare, constants.ModeAll:
		return nil
	}
	return fmt.Errorf("expected mode of %s, %s, %s or %s, got %s",
		constants.ModeAnalyze, constants.ModeSweep, constants.ModeCompare, constants.ModeAll, mode)
}
