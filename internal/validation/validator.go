// =============================================================================
// ibankit - Validation Module
// =============================================================================
//
// This module validates batch records. Each record carries an IBAN, a BIC or
// both; the identifiers are checked with pkg/iban and the outcome is turned
// into a types.RecordResult with decomposed fields and findings.
//
// VALIDATION RULES:
//   Errors (record is invalid):
//     - every iban.Error kind and violation, reported under its rule name
//   Warnings (record stays valid):
//     - country_mismatch  : BIC country differs from IBAN country
//     - test_bic          : BIC location code marks a test address
//     - duplicate_iban    : IBAN already seen earlier in the same batch
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/ibankit/internal/config"
	"github.com/ginjaninja78/ibankit/internal/types"
	"github.com/ginjaninja78/ibankit/pkg/iban"
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Options controls which checks the Validator runs.
type Options struct {
	// CheckIBAN validates Record.IBAN; an empty value is an error.
	CheckIBAN bool

	// CheckBIC validates Record.BIC when it is non-empty.
	CheckBIC bool

	// RequireBIC turns an empty BIC into an error.
	RequireBIC bool

	// IBANFormat is one of the config.IBANFormat* constants.
	IBANFormat string
}

// OptionsFor derives validator options from a source column mapping.
func OptionsFor(columns config.ColumnMapping) Options {
	return Options{
		CheckIBAN:  columns.IBAN != "",
		CheckBIC:   columns.BIC != "",
		IBANFormat: columns.IBANFormat,
	}
}

// Validator validates records. It holds no mutable state and may be shared.
type Validator struct {
	options Options
}

// New creates a Validator.
func New(options Options) *Validator {
	if options.IBANFormat == "" {
		options.IBANFormat = config.IBANFormatAny
	}
	return &Validator{options: options}
}

// ValidateAll validates records in order and flags repeated IBANs.
func (v *Validator) ValidateAll(records []types.Record) []types.RecordResult {
	results := make([]types.RecordResult, 0, len(records))
	firstSeen := make(map[string]int)

	for _, rec := range records {
		res := v.ValidateRecord(rec)

		if res.IBAN != "" {
			if row, seen := firstSeen[res.IBAN]; seen {
				res.Findings = append(res.Findings, warning("iban", "duplicate_iban",
					fmt.Sprintf("IBAN already listed on row %d", row)))
			} else {
				firstSeen[res.IBAN] = rec.RowNumber
			}
		}

		results = append(results, res)
	}

	return results
}

// ValidateRecord validates a single record.
func (v *Validator) ValidateRecord(rec types.Record) types.RecordResult {
	res := types.RecordResult{Record: rec}

	var parsedIBAN iban.IBAN
	if v.options.CheckIBAN {
		parsed, err := v.parseIBAN(rec.IBAN)
		if err != nil {
			res.Findings = append(res.Findings, failure("iban", err))
		} else {
			parsedIBAN = parsed
			fillIBAN(&res, parsed)
		}
	}

	var parsedBIC iban.BIC
	if (v.options.CheckBIC && rec.BIC != "") || v.options.RequireBIC {
		parsed, err := iban.ParseBIC(rec.BIC)
		if err != nil {
			res.Findings = append(res.Findings, failure("bic", err))
		} else {
			parsedBIC = parsed
			res.BIC = parsed.String()
			res.BICBank = parsed.BankCode()
			res.BICCountry = string(parsed.CountryCode())
		}
	}

	if !parsedBIC.IsZero() {
		if parsedBIC.IsTestBIC() {
			res.Findings = append(res.Findings, warning("bic", "test_bic",
				fmt.Sprintf("BIC %s is a test and training address", parsedBIC)))
		}
		if !parsedIBAN.IsZero() && parsedBIC.CountryCode() != parsedIBAN.CountryCode() {
			res.Findings = append(res.Findings, warning("record", "country_mismatch",
				fmt.Sprintf("BIC country %s differs from IBAN country %s",
					parsedBIC.CountryCode(), parsedIBAN.CountryCode())))
		}
	}

	res.Valid = len(res.Errors()) == 0
	return res
}

// parseIBAN applies the configured input form.
func (v *Validator) parseIBAN(raw string) (iban.IBAN, error) {
	switch v.options.IBANFormat {
	case config.IBANFormatElectronic:
		return iban.Parse(raw)
	case config.IBANFormatPrint:
		return iban.ParseFormatted(raw)
	default:
		return iban.Parse(strings.ReplaceAll(raw, " ", ""))
	}
}

func fillIBAN(res *types.RecordResult, v iban.IBAN) {
	res.IBAN = v.String()
	res.IBANFormatted = v.Formatted()
	res.Country = string(v.CountryCode())
	res.CountryName = v.CountryCode().Name()
	res.BankCode = v.BankCode()
	res.BranchCode, _ = v.BranchCode()
	res.AccountNumber = v.AccountNumber()
}

// =============================================================================
// FINDINGS
// =============================================================================

// RuleName maps an identifier error to a stable rule name for reports and
// metrics labels.
func RuleName(err error) string {
	var ierr *iban.Error
	if !errors.As(err, &ierr) {
		return "unknown"
	}
	if ierr.Violation != iban.ViolationNone {
		return ierr.Violation.String()
	}
	return strings.ReplaceAll(ierr.Kind.String(), " ", "_")
}

func failure(field string, err error) types.Finding {
	return types.Finding{
		Severity: types.SeverityError,
		Field:    field,
		Rule:     RuleName(err),
		Message:  err.Error(),
	}
}

func warning(field, rule, message string) types.Finding {
	return types.Finding{
		Severity: types.SeverityWarning,
		Field:    field,
		Rule:     rule,
		Message:  message,
	}
}

// FormatFindings renders the findings of every result for display or logging.
func FormatFindings(results []types.RecordResult) string {
	var builder strings.Builder
	count := 0

	for _, res := range results {
		for _, f := range res.Findings {
			count++
			fmt.Fprintf(&builder, "%d. [%s] row %d, %s: %s (%s)\n",
				count, f.Severity, res.Record.RowNumber, f.Field, f.Message, f.Rule)
		}
	}

	if count == 0 {
		return "No validation findings."
	}

	return fmt.Sprintf("Validation completed with %d finding(s):\n\n", count) + builder.String()
}
