// =============================================================================
// ibankit - CSV Parser Module
// =============================================================================
//
// This module reads delimited batch files (CSV, TSV, pipe separated) into a
// types.Table. It also exposes the raw record reader used to load the SWIFT
// IBAN registry export, which is tab separated.
//
// FEATURES:
//   - Configurable delimiter
//   - Multi-row headers, merged column by column
//   - Configurable data start row
//   - UTF-8 byte order mark removal (Excel exports)
//   - Empty rows are skipped but row numbers are preserved
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/ibankit/internal/config"
	"github.com/ginjaninja78/ibankit/internal/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a delimited file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the input file.
//   - settings: The input settings from the source profile.
//
// RETURNS:
//   - The parsed table.
//   - An error if the file cannot be read or has no header.
func Parse(filePath string, settings config.InputSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filePath, settings)
}

// ParseReader is Parse over an arbitrary reader. source is recorded as the
// table's SourceFile.
func ParseReader(r io.Reader, source string, settings config.InputSettings) (*types.Table, error) {
	allRows, err := ReadRecords(r, settings.Delimiter)
	if err != nil {
		return nil, err
	}

	return BuildTable(allRows, source, settings)
}

// BuildTable turns raw rows into a table using the header and data start
// settings. The XLSX reader shares it so both inputs behave the same.
func BuildTable(allRows [][]string, source string, settings config.InputSettings) (*types.Table, error) {
	if len(allRows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	rows, rowNumbers := extractDataRows(allRows, headers, settings)

	return &types.Table{
		Headers:    headers,
		Rows:       rows,
		RowNumbers: rowNumbers,
		SourceFile: source,
	}, nil
}

// ReadRecords reads every record of a delimited stream without interpreting
// headers. Rows may have differing field counts.
func ReadRecords(r io.Reader, delimiter string) ([][]string, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	configureReader(reader, delimiter)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return rows, nil
}

// configureReader configures the CSV reader for the given delimiter.
func configureReader(reader *csv.Reader, delimiter string) {
	switch delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(delimiter) > 0 {
			reader.Comma = rune(delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Registry exports and spreadsheet dumps are rarely rectangular.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders extracts and merges headers.
//
// MULTI-ROW HEADER HANDLING:
//   Non-empty values from each header row are joined with a space per column.
//
//   Row 1: "Beneficiary", "",     "Beneficiary"
//   Row 2: "Name",        "Ref",  "IBAN"
//   Result: "Beneficiary Name", "Ref", "Beneficiary IBAN"
func extractHeaders(allRows [][]string, settings config.InputSettings) ([]string, error) {
	if settings.HeaderRows <= 0 {
		return nil, fmt.Errorf("header_rows must be at least 1")
	}

	if len(allRows) < settings.HeaderRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if settings.HeaderRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < settings.HeaderRows; i++ {
		maxCols = max(maxCols, len(allRows[i]))
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < settings.HeaderRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders trims headers and names empty ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows converts data rows to header -> value maps and records the
// 1-based source row of each.
func extractDataRows(allRows [][]string, headers []string, settings config.InputSettings) ([]map[string]string, []int) {
	startIndex := settings.DataStartRow - 1
	if startIndex < settings.HeaderRows {
		startIndex = settings.HeaderRows
	}

	if startIndex >= len(allRows) {
		return []map[string]string{}, []int{}
	}

	rows := make([]map[string]string, 0, len(allRows)-startIndex)
	rowNumbers := make([]int, 0, len(allRows)-startIndex)

	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]
		if isRowEmpty(row) {
			continue
		}

		rowMap := make(map[string]string, len(headers))
		for colIndex, header := range headers {
			if colIndex < len(row) {
				rowMap[header] = strings.TrimSpace(row[colIndex])
			} else {
				rowMap[header] = ""
			}
		}

		rows = append(rows, rowMap)
		rowNumbers = append(rowNumbers, rowIndex+1)
	}

	return rows, rowNumbers
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
