package iban

import (
	"fmt"
	"strconv"
)

// Kind is the top-level category of an *Error.
type Kind int

const (
	// KindUnsupportedCountry means the country code has no registry entry.
	KindUnsupportedCountry Kind = iota + 1

	// KindInvalidIBANFormat means the IBAN breaks one of the structural
	// rules; Violation names which one.
	KindInvalidIBANFormat

	// KindInvalidBICFormat means the BIC breaks one of the structural
	// rules; Violation names which one.
	KindInvalidBICFormat

	// KindInvalidCheckDigit means the IBAN check digits do not match the
	// MOD97-10 value computed from the rest of the IBAN.
	KindInvalidCheckDigit

	// KindMissingRequiredField means a builder field the country layout
	// requires was not set.
	KindMissingRequiredField
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedCountry:
		return "unsupported country"
	case KindInvalidIBANFormat:
		return "invalid IBAN format"
	case KindInvalidBICFormat:
		return "invalid BIC format"
	case KindInvalidCheckDigit:
		return "invalid check digit"
	case KindMissingRequiredField:
		return "missing required field"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Violation narrows an InvalidIBANFormat or InvalidBICFormat error down to
// the rule that failed.
type Violation int

const (
	ViolationNone Violation = iota

	// IBAN rules, in the order Validate checks them.
	ViolationIBANEmpty
	ViolationIBANInvalidCharacters
	ViolationIBANMinLength
	ViolationIBANCountryCode
	ViolationIBANCheckDigitFormat
	ViolationIBANFieldLength
	ViolationIBANFieldCharacters
	ViolationIBANFormatting

	// BIC rules, in the order ValidateBIC checks them.
	ViolationBICEmpty
	ViolationBICInvalidCharacters
	ViolationBICLength
	ViolationBICBankCode
	ViolationBICCountryCode
	ViolationBICLocationCode
	ViolationBICBranchCode
)

var violationNames = map[Violation]string{
	ViolationIBANEmpty:             "iban_empty",
	ViolationIBANInvalidCharacters: "iban_invalid_characters",
	ViolationIBANMinLength:         "iban_min_length",
	ViolationIBANCountryCode:       "iban_country_code",
	ViolationIBANCheckDigitFormat:  "iban_check_digit_format",
	ViolationIBANFieldLength:       "iban_field_length",
	ViolationIBANFieldCharacters:   "iban_field_characters",
	ViolationIBANFormatting:        "iban_formatting",
	ViolationBICEmpty:              "bic_empty",
	ViolationBICInvalidCharacters:  "bic_invalid_characters",
	ViolationBICLength:             "bic_length",
	ViolationBICBankCode:           "bic_bank_code",
	ViolationBICCountryCode:        "bic_country_code",
	ViolationBICLocationCode:       "bic_location_code",
	ViolationBICBranchCode:         "bic_branch_code",
}

func (v Violation) String() string {
	if name, ok := violationNames[v]; ok {
		return name
	}
	return "none"
}

// Error is the single error type returned by parsing, validation and
// building. Only the fields relevant to Kind and Violation are populated.
type Error struct {
	Kind      Kind
	Violation Violation

	// Expected and Actual carry lengths, check digits or character classes
	// depending on the violation.
	Expected string
	Actual   string

	// Field is set for BBAN field violations and MissingRequiredField.
	Field FieldType
	// Char is the first offending character, 0 when not applicable.
	Char byte

	Country CountryCode
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrUnsupportedCountry   = &Error{Kind: KindUnsupportedCountry}
	ErrInvalidIBANFormat    = &Error{Kind: KindInvalidIBANFormat}
	ErrInvalidBICFormat     = &Error{Kind: KindInvalidBICFormat}
	ErrInvalidCheckDigit    = &Error{Kind: KindInvalidCheckDigit}
	ErrMissingRequiredField = &Error{Kind: KindMissingRequiredField}
)

// Is matches on Kind, and on Violation when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Violation == ViolationNone || t.Violation == e.Violation
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedCountry:
		return fmt.Sprintf("country code %q is not supported", string(e.Country))
	case KindInvalidCheckDigit:
		return fmt.Sprintf("invalid check digit: expected %s, got %s", e.Expected, e.Actual)
	case KindMissingRequiredField:
		if e.Field == 0 {
			return "missing required field country_code"
		}
		return fmt.Sprintf("missing required field %s", e.Field)
	}

	switch e.Violation {
	case ViolationIBANEmpty, ViolationBICEmpty:
		return fmt.Sprintf("%s: empty or null input", e.Kind)
	case ViolationIBANInvalidCharacters, ViolationBICInvalidCharacters:
		return fmt.Sprintf("%s: invalid character %q", e.Kind, e.Char)
	case ViolationIBANMinLength:
		return fmt.Sprintf("%s: length %s is shorter than the minimum %s", e.Kind, e.Actual, e.Expected)
	case ViolationBICLength:
		return fmt.Sprintf("%s: length must be %s, got %s", e.Kind, e.Expected, e.Actual)
	case ViolationIBANCountryCode, ViolationBICCountryCode:
		return fmt.Sprintf("%s: country code %q must be two uppercase letters", e.Kind, e.Actual)
	case ViolationIBANCheckDigitFormat:
		return fmt.Sprintf("%s: check digit %q must be two digits", e.Kind, e.Actual)
	case ViolationIBANFieldLength:
		return fmt.Sprintf("%s: %s %s length must be %s, got %s", e.Kind, e.Country, e.Field, e.Expected, e.Actual)
	case ViolationIBANFieldCharacters:
		return fmt.Sprintf("%s: %s %s must contain only %s, found %q", e.Kind, e.Country, e.Field, e.Expected, e.Char)
	case ViolationIBANFormatting:
		return fmt.Sprintf("%s: %q must be grouped in blocks of 4 characters separated by single spaces", e.Kind, e.Actual)
	case ViolationBICBankCode:
		return fmt.Sprintf("%s: bank code %q must contain only letters", e.Kind, e.Actual)
	case ViolationBICLocationCode:
		return fmt.Sprintf("%s: location code %q must contain only letters or digits", e.Kind, e.Actual)
	case ViolationBICBranchCode:
		return fmt.Sprintf("%s: branch code %q must contain only letters or digits", e.Kind, e.Actual)
	}
	return e.Kind.String()
}

func formatError(v Violation, actual string) *Error {
	return &Error{Kind: KindInvalidIBANFormat, Violation: v, Actual: actual}
}

func bicError(v Violation, actual string) *Error {
	return &Error{Kind: KindInvalidBICFormat, Violation: v, Actual: actual}
}
