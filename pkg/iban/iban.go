// Package iban parses, validates, formats and builds International Bank
// Account Numbers (ISO 13616) and Business Identifier Codes (ISO 9362).
//
// BBAN layouts are held in a static per-country registry; fields of a parsed
// IBAN are extracted by walking that registry, so no country needs special
// handling in code.
package iban

import "strings"

// IBAN is a validated International Bank Account Number. The zero value is
// not a valid IBAN; obtain one from Parse, ParseFormatted, Random or a Builder.
type IBAN struct {
	value string
}

// Parse validates raw and returns it as an IBAN. raw must be in electronic
// form: no spaces, uppercase.
func Parse(raw string) (IBAN, error) {
	if err := Validate(raw); err != nil {
		return IBAN{}, err
	}
	return IBAN{value: raw}, nil
}

// ParseFormatted accepts only the print form produced by Formatted: groups of
// four characters separated by single spaces. A valid IBAN with any other
// spacing is rejected with ViolationIBANFormatting.
func ParseFormatted(raw string) (IBAN, error) {
	v, err := Parse(strings.ReplaceAll(raw, " ", ""))
	if err != nil {
		return IBAN{}, err
	}
	if v.Formatted() != raw {
		return IBAN{}, formatError(ViolationIBANFormatting, raw)
	}
	return v, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level literals.
func MustParse(raw string) IBAN {
	v, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// Random returns a valid random IBAN. A nil src uses DefaultRandom; an empty
// country picks one of SupportedCountries uniformly.
func Random(src RandomSource, country CountryCode) (IBAN, error) {
	b := NewBuilder(WithRandom(src))
	if country != "" {
		b.CountryCode(country)
	}
	return b.BuildRandom()
}

func (i IBAN) String() string { return i.value }

// IsZero reports whether i was never assigned a parsed value.
func (i IBAN) IsZero() bool { return i.value == "" }

func (i IBAN) CountryCode() CountryCode {
	if len(i.value) < 2 {
		return ""
	}
	return CountryCode(i.value[:2])
}

func (i IBAN) CheckDigit() string {
	if len(i.value) < 4 {
		return ""
	}
	return i.value[2:4]
}

func (i IBAN) BBAN() string {
	if len(i.value) < 4 {
		return ""
	}
	return i.value[4:]
}

// Field extracts the field of type t. ok is false when the country's layout
// has no such field.
func (i IBAN) Field(t FieldType) (value string, ok bool) {
	s, found := StructureFor(i.CountryCode())
	if !found {
		return "", false
	}
	pos, f, found := s.offset(t)
	if !found {
		return "", false
	}
	bban := i.BBAN()
	if pos+f.Length > len(bban) {
		return "", false
	}
	return bban[pos : pos+f.Length], true
}

// BankCode is present in every supported layout.
func (i IBAN) BankCode() string {
	v, _ := i.Field(BankCode)
	return v
}

// AccountNumber is present in every supported layout.
func (i IBAN) AccountNumber() string {
	v, _ := i.Field(AccountNumber)
	return v
}

func (i IBAN) BranchCode() (string, bool)           { return i.Field(BranchCode) }
func (i IBAN) NationalCheckDigit() (string, bool)   { return i.Field(NationalCheckDigit) }
func (i IBAN) AccountType() (string, bool)          { return i.Field(AccountType) }
func (i IBAN) OwnerAccountNumber() (string, bool)   { return i.Field(OwnerAccountNumber) }
func (i IBAN) IdentificationNumber() (string, bool) { return i.Field(IdentificationNumber) }

// Fields returns every field the country defines, keyed by type.
func (i IBAN) Fields() map[FieldType]string {
	out := make(map[FieldType]string)
	for _, t := range FieldTypes() {
		if v, ok := i.Field(t); ok {
			out[t] = v
		}
	}
	return out
}

// Formatted returns the print form: blocks of four characters separated by
// single spaces, e.g. "DE89 3704 0044 0532 0130 00".
func (i IBAN) Formatted() string {
	return group(i.value, 4)
}

func (i IBAN) MarshalText() ([]byte, error) {
	return []byte(i.value), nil
}

// UnmarshalText accepts both the electronic and the print form.
func (i *IBAN) UnmarshalText(text []byte) error {
	v, err := Parse(strings.ReplaceAll(string(text), " ", ""))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

func group(s string, n int) string {
	var sb strings.Builder
	sb.Grow(len(s) + len(s)/n)
	for i := 0; i < len(s); i++ {
		if i > 0 && i%n == 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
