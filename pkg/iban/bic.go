package iban

import "strconv"

const (
	bicLength       = 8
	bicBranchLength = 11
)

// BIC is a validated Business Identifier Code (SWIFT code).
type BIC struct {
	value string
}

// ParseBIC validates raw and returns it as a BIC.
func ParseBIC(raw string) (BIC, error) {
	if err := ValidateBIC(raw); err != nil {
		return BIC{}, err
	}
	return BIC{value: raw}, nil
}

// ValidateBIC checks raw against the BIC rules and returns the first
// violation found. Lowercase input is rejected rather than normalised.
func ValidateBIC(raw string) error {
	if err := validateBIC(raw); err != nil {
		return err
	}
	return nil
}

func validateBIC(raw string) *Error {
	if raw == "" {
		return bicError(ViolationBICEmpty, "")
	}
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; !isDigit(c) && !isUpper(c) {
			e := bicError(ViolationBICInvalidCharacters, raw)
			e.Char = c
			return e
		}
	}
	if len(raw) != bicLength && len(raw) != bicBranchLength {
		e := bicError(ViolationBICLength, strconv.Itoa(len(raw)))
		e.Expected = "8 or 11"
		return e
	}
	if bank := raw[0:4]; allMatch(UppercaseLetters, bank) >= 0 {
		return bicError(ViolationBICBankCode, bank)
	}
	country := raw[4:6]
	if allMatch(UppercaseLetters, country) >= 0 {
		return bicError(ViolationBICCountryCode, country)
	}
	if _, ok := LookupCountry(country); !ok {
		return &Error{Kind: KindUnsupportedCountry, Country: CountryCode(country), Actual: country}
	}
	if location := raw[6:8]; allMatch(Alphanumeric, location) >= 0 {
		return bicError(ViolationBICLocationCode, location)
	}
	if len(raw) == bicBranchLength {
		if branch := raw[8:11]; allMatch(Alphanumeric, branch) >= 0 {
			return bicError(ViolationBICBranchCode, branch)
		}
	}
	return nil
}

func (b BIC) String() string { return b.value }

func (b BIC) IsZero() bool { return b.value == "" }

// BankCode is the four-letter institution code.
func (b BIC) BankCode() string {
	if len(b.value) < bicLength {
		return ""
	}
	return b.value[0:4]
}

func (b BIC) CountryCode() CountryCode {
	if len(b.value) < bicLength {
		return ""
	}
	return CountryCode(b.value[4:6])
}

func (b BIC) LocationCode() string {
	if len(b.value) < bicLength {
		return ""
	}
	return b.value[6:8]
}

// BranchCode is only present on 11-character BICs.
func (b BIC) BranchCode() (string, bool) {
	if len(b.value) != bicBranchLength {
		return "", false
	}
	return b.value[8:11], true
}

// IsTestBIC reports whether the location code marks a test and training
// address ('0' in its second position).
func (b BIC) IsTestBIC() bool {
	return len(b.value) >= bicLength && b.value[7] == '0'
}

func (b BIC) MarshalText() ([]byte, error) {
	return []byte(b.value), nil
}

func (b *BIC) UnmarshalText(text []byte) error {
	v, err := ParseBIC(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
