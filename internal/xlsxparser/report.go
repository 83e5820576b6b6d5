package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/ibankit/internal/types"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// resultColumns are the headers of the Results sheet, in order.
var resultColumns = []string{
	"Row", "ID", "Valid", "IBAN", "Country", "Country Name", "Bank Code",
	"Branch Code", "Account Number", "BIC", "BIC Bank", "BIC Country",
	"Errors", "Warnings",
}

// =============================================================================
// REPORT OUTPUT
// =============================================================================

// WriteReport writes a validation report workbook to filePath.
//
// SHEETS:
//   - Results: one row per record, invalid rows filled red, warnings amber.
//     The header row is frozen and filterable.
//   - Summary: run identifier, source and counts.
func WriteReport(filePath string, report *types.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), resultsSheet); err != nil {
		return fmt.Errorf("failed to name results sheet: %w", err)
	}

	if err := writeResults(f, report); err != nil {
		return err
	}

	if err := writeSummary(f, report); err != nil {
		return err
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	return nil
}

func writeResults(f *excelize.File, report *types.Report) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	invalidStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create row style: %w", err)
	}

	warningStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE699"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create row style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(resultColumns))
	if err != nil {
		return err
	}

	header := make([]interface{}, len(resultColumns))
	for i, col := range resultColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(resultsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, res := range report.Results {
		rowNum := i + 2
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}

		errs, warnings := splitFindings(res.Findings)
		row := []interface{}{
			res.Record.RowNumber,
			res.Record.ID,
			res.Valid,
			displayIBAN(res),
			res.Country,
			res.CountryName,
			res.BankCode,
			res.BranchCode,
			res.AccountNumber,
			displayBIC(res),
			res.BICBank,
			res.BICCountry,
			errs,
			warnings,
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}

		style := 0
		switch {
		case !res.Valid:
			style = invalidStyle
		case warnings != "":
			style = warningStyle
		}
		if style != 0 {
			end := fmt.Sprintf("%s%d", lastCol, rowNum)
			if err := f.SetCellStyle(resultsSheet, cell, end, style); err != nil {
				return fmt.Errorf("failed to style row %d: %w", rowNum, err)
			}
		}
	}

	if err := f.SetColWidth(resultsSheet, "A", lastCol, 18); err != nil {
		return err
	}
	if err := f.SetColWidth(resultsSheet, "M", "N", 60); err != nil {
		return err
	}

	if err := f.SetPanes(resultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	lastRow := len(report.Results) + 1
	if err := f.AutoFilter(resultsSheet, fmt.Sprintf("A1:%s%d", lastCol, lastRow), nil); err != nil {
		return fmt.Errorf("failed to add filter: %w", err)
	}

	return nil
}

func writeSummary(f *excelize.File, report *types.Report) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Run ID", report.RunID},
		{"Source File", report.SourceFile},
		{"Source", report.SourceCode},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Records", report.Summary.Total},
		{"Valid", report.Summary.Valid},
		{"Invalid", report.Summary.Invalid},
		{"Warnings", report.Summary.Warnings},
	}

	for i, row := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	return f.SetColWidth(summarySheet, "A", "B", 24)
}

// splitFindings joins error and warning messages for display.
func splitFindings(findings []types.Finding) (string, string) {
	var errs, warnings []string
	for _, f := range findings {
		text := fmt.Sprintf("%s: %s", f.Rule, f.Message)
		if f.Severity == types.SeverityError {
			errs = append(errs, text)
		} else {
			warnings = append(warnings, text)
		}
	}
	return strings.Join(errs, "; "), strings.Join(warnings, "; ")
}

// displayIBAN shows the normalized IBAN, or the raw input when it did not parse.
func displayIBAN(res types.RecordResult) string {
	if res.IBAN != "" {
		return res.IBAN
	}
	return res.Record.IBAN
}

func displayBIC(res types.RecordResult) string {
	if res.BIC != "" {
		return res.BIC
	}
	return res.Record.BIC
}
