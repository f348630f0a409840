package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/chit"
	"github.com/xuri/excelize/v2"
)

// ComparisonSheet is the worksheet the XLSX export writes to.
const ComparisonSheet = "Comparison"

// ComparisonHeader names the columns of a tabular comparison export.
var ComparisonHeader = []string{"scenario_name", "total_invested", "final_absolute_value", "net_gain", "annual_irr"}

// ComparisonRows renders one row per scenario, in scenario order.
func ComparisonRows(cmp *chit.ThreeWayComparison) [][]string {
	scenarios := cmp.Scenarios()
	rows := make([][]string, 0, len(scenarios))
	for _, s := range scenarios {
		rows = append(rows, []string{
			s.Name,
			money(s.TotalInvested),
			money(s.FinalAbsoluteValue),
			money(s.NetGain),
			rate(s.AnnualIRR),
		})
	}
	return rows
}

// WriteComparisonCSV writes the comparison as a header row plus one row
// per scenario.
func WriteComparisonCSV(w io.Writer, cmp *chit.ThreeWayComparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ComparisonHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(ComparisonRows(cmp)); err != nil {
		return err
	}
	return cw.Error()
}

// ComparisonWorkbook builds a workbook with the comparison on its own sheet.
// Money and rates are stored as numbers. The caller closes the workbook.
func ComparisonWorkbook(cmp *chit.ThreeWayComparison) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ComparisonSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to name comparison sheet: %w", err)
	}

	header := make([]interface{}, len(ComparisonHeader))
	for i, h := range ComparisonHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(ComparisonSheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write comparison header: %w", err)
	}

	for i, s := range cmp.Scenarios() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		row := []interface{}{
			s.Name,
			s.TotalInvested.InexactFloat64(),
			s.FinalAbsoluteValue.InexactFloat64(),
			s.NetGain.InexactFloat64(),
			s.AnnualIRR,
		}
		if err := f.SetSheetRow(ComparisonSheet, cell, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to write scenario %s: %w", s.Name, err)
		}
	}
	return f, nil
}

// WriteComparisonXLSX writes the comparison workbook to w.
func WriteComparisonXLSX(w io.Writer, cmp *chit.ThreeWayComparison) error {
	f, err := ComparisonWorkbook(cmp)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write comparison workbook: %w", err)
	}
	return nil
}
