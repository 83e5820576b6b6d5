package iban

import "strconv"

// Validate checks raw against the IBAN rules and returns the first violation
// found, as an *Error. The checks run in a fixed order: emptiness, character
// set, minimum length, country code shape, check digit shape, country
// support, BBAN structure, and finally the MOD97-10 checksum.
func Validate(raw string) error {
	if err := validate(raw); err != nil {
		return err
	}
	return nil
}

func validate(raw string) *Error {
	if raw == "" {
		return formatError(ViolationIBANEmpty, "")
	}
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; !isDigit(c) && !isUpper(c) {
			e := formatError(ViolationIBANInvalidCharacters, raw)
			e.Char = c
			return e
		}
	}
	if len(raw) < MinLength() {
		e := formatError(ViolationIBANMinLength, strconv.Itoa(len(raw)))
		e.Expected = strconv.Itoa(MinLength())
		return e
	}

	country := raw[:2]
	if !isUpper(country[0]) || !isUpper(country[1]) {
		return formatError(ViolationIBANCountryCode, country)
	}
	if check := raw[2:4]; !isDigit(check[0]) || !isDigit(check[1]) {
		return formatError(ViolationIBANCheckDigitFormat, check)
	}

	code := CountryCode(country)
	structure, ok := StructureFor(code)
	if !ok {
		return &Error{Kind: KindUnsupportedCountry, Country: code, Actual: country}
	}
	if err := validateBBAN(code, structure, raw[4:]); err != nil {
		return err
	}

	if !IsValidChecksum(raw) {
		expected, _ := CalculateCheckDigit(raw)
		return &Error{
			Kind:     KindInvalidCheckDigit,
			Expected: expected,
			Actual:   raw[2:4],
			Country:  code,
		}
	}
	return nil
}

// validateBBAN walks the structure in order. A length mismatch names the
// first field the BBAN cannot fill, or the last field when it overflows.
func validateBBAN(country CountryCode, s *Structure, bban string) *Error {
	if len(bban) != s.length {
		pos := 0
		for _, f := range s.fields {
			if pos+f.Length > len(bban) {
				return fieldLengthError(country, f, max(len(bban)-pos, 0))
			}
			pos += f.Length
		}
		last := s.fields[len(s.fields)-1]
		return fieldLengthError(country, last, last.Length+len(bban)-s.length)
	}

	pos := 0
	for _, f := range s.fields {
		segment := bban[pos : pos+f.Length]
		if i := allMatch(f.Class, segment); i >= 0 {
			return &Error{
				Kind:      KindInvalidIBANFormat,
				Violation: ViolationIBANFieldCharacters,
				Field:     f.Type,
				Char:      segment[i],
				Expected:  f.Class.String(),
				Actual:    segment,
				Country:   country,
			}
		}
		pos += f.Length
	}
	return nil
}

func fieldLengthError(country CountryCode, f FieldDescriptor, actual int) *Error {
	return &Error{
		Kind:      KindInvalidIBANFormat,
		Violation: ViolationIBANFieldLength,
		Field:     f.Type,
		Expected:  strconv.Itoa(f.Length),
		Actual:    strconv.Itoa(actual),
		Country:   country,
	}
}
