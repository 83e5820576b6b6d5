// =============================================================================
// ibankit - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (Table)
//   - validation (Record, RecordResult)
//   - xmlwriter / xlsxparser reports (Report)
//   - processor
//
// =============================================================================

package types

import "time"

// =============================================================================
// TABULAR INPUT
// =============================================================================

// Table is the parsed content of a delimited or XLSX input file.
type Table struct {
	// Headers contains the column headers, merged when they span several rows.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// RowNumbers holds the 1-based source row of each entry in Rows.
	RowNumbers []int

	// SourceFile is the path to the source file.
	SourceFile string
}

// RowCount is the number of data rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// ColumnCount is the number of header columns.
func (t *Table) ColumnCount() int { return len(t.Headers) }

// =============================================================================
// RECORDS
// =============================================================================

// Record is one batch entry to validate.
type Record struct {
	// RowNumber is the row in the input file, for error reporting.
	RowNumber int

	// ID is the caller's reference for the row, if the source maps one.
	ID string

	// IBAN and BIC are the normalized raw values. An empty value means the
	// source has no such column.
	IBAN string
	BIC  string
}

// Severity of a finding.
const (
	SeverityError   = "ERROR"
	SeverityWarning = "WARNING"
)

// Finding is a single validation error or warning for a record.
type Finding struct {
	Severity string

	// Field is "iban", "bic" or "record".
	Field string

	// Rule is the violated rule, e.g. "iban_field_length" or "invalid_check_digit".
	Rule string

	Message string
}

// RecordResult is the validation outcome of one record.
type RecordResult struct {
	Record Record

	Valid bool

	// Decomposed IBAN, set when the IBAN is valid.
	IBAN          string
	IBANFormatted string
	Country       string
	CountryName   string
	BankCode      string
	BranchCode    string
	AccountNumber string

	// Decomposed BIC, set when the BIC is valid.
	BIC        string
	BICBank    string
	BICCountry string

	Findings []Finding
}

// Errors returns only the error-severity findings.
func (r *RecordResult) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// REPORT
// =============================================================================

// Summary counts the results of a report.
type Summary struct {
	Total    int
	Valid    int
	Invalid  int
	Warnings int
}

// Report is the validation result for one input file.
type Report struct {
	RunID       string
	SourceFile  string
	SourceCode  string
	GeneratedAt time.Time
	Results     []RecordResult
	Summary     Summary
}

// Summarize recomputes Summary from Results.
func (r *Report) Summarize() {
	s := Summary{Total: len(r.Results)}
	for _, res := range r.Results {
		if res.Valid {
			s.Valid++
		} else {
			s.Invalid++
		}
		for _, f := range res.Findings {
			if f.Severity == SeverityWarning {
				s.Warnings++
			}
		}
	}
	r.Summary = s
}
