// =============================================================================
// ibankit - XLSX Module
// =============================================================================
//
// This module reads batch input from Excel workbooks and writes validation
// reports as workbooks.
//
// INPUT:
//   One worksheet is read, the configured one or else the first. Header and
//   data rows follow the same InputSettings as delimited files:
//
//   | Reference | Beneficiary IBAN         | BIC         |
//   |-----------|--------------------------|-------------|
//   | INV-001   | DE89370400440532013000   | COBADEFFXXX |
//   | INV-002   | GB82 WEST 1234 5698 7654 32 |          |
//
// OUTPUT:
//   A "Results" sheet with one row per record and a "Summary" sheet. Invalid
//   rows are highlighted. See report.go.
//
// =============================================================================

package xlsxparser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/ibankit/internal/config"
	"github.com/ginjaninja78/ibankit/internal/csvparser"
	"github.com/ginjaninja78/ibankit/internal/types"
)

// =============================================================================
// INPUT
// =============================================================================

// Parse reads one worksheet of an XLSX file into a table.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - settings: The input settings from the source profile. Sheet selects
//               the worksheet; Delimiter is ignored.
//
// RETURNS:
//   - The parsed table.
//   - An error if the workbook or sheet cannot be read.
func Parse(filePath string, settings config.InputSettings) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName, err := selectSheet(f, settings.Sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	return csvparser.BuildTable(rows, filePath, settings)
}

// SheetNames lists the worksheets of a workbook in order.
func SheetNames(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// selectSheet returns the requested sheet, or the first one when name is empty.
func selectSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		first := f.GetSheetName(0)
		if first == "" {
			return "", fmt.Errorf("workbook has no sheets")
		}
		return first, nil
	}

	index, err := f.GetSheetIndex(name)
	if err != nil || index < 0 {
		return "", fmt.Errorf("sheet %q not found", name)
	}

	return name, nil
}
