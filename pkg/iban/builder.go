package iban

import (
	"maps"
	"strings"
)

// Builder assembles an IBAN from its BBAN fields and computes the check
// digit. A Builder is owned by one caller and must not be shared between
// goroutines.
type Builder struct {
	country CountryCode
	fields  map[FieldType]string
	random  RandomSource
}

// Option configures a Builder.
type Option func(*Builder)

// WithRandom sets the source used by BuildRandom. nil keeps DefaultRandom.
func WithRandom(src RandomSource) Option {
	return func(b *Builder) {
		if src != nil {
			b.random = src
		}
	}
}

// NewBuilder returns an empty Builder that draws random field values from
// DefaultRandom unless an Option overrides it.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		fields: make(map[FieldType]string),
		random: DefaultRandom,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CountryCode sets the country whose BBAN layout the IBAN follows.
func (b *Builder) CountryCode(c CountryCode) *Builder {
	b.country = c
	return b
}

// BankCode sets the bank code field.
func (b *Builder) BankCode(v string) *Builder { return b.Set(BankCode, v) }

// BranchCode sets the branch code field.
func (b *Builder) BranchCode(v string) *Builder { return b.Set(BranchCode, v) }

// AccountNumber sets the account number field.
func (b *Builder) AccountNumber(v string) *Builder { return b.Set(AccountNumber, v) }

// NationalCheckDigit sets the national check digit field.
func (b *Builder) NationalCheckDigit(v string) *Builder { return b.Set(NationalCheckDigit, v) }

// AccountType sets the account type field.
func (b *Builder) AccountType(v string) *Builder { return b.Set(AccountType, v) }

// OwnerAccountNumber sets the owner account number field.
func (b *Builder) OwnerAccountNumber(v string) *Builder { return b.Set(OwnerAccountNumber, v) }

// IdentificationNumber sets the identification number field.
func (b *Builder) IdentificationNumber(v string) *Builder { return b.Set(IdentificationNumber, v) }

// Set stores the value for field t.
func (b *Builder) Set(t FieldType, v string) *Builder {
	b.fields[t] = v
	return b
}

// Build assembles the IBAN and runs the full validation on the result.
func (b *Builder) Build() (IBAN, error) {
	return b.build(b.country, b.fields, true)
}

// BuildUnchecked assembles the IBAN without validating it. Required fields
// and country support are still enforced; field lengths and classes are not.
func (b *Builder) BuildUnchecked() (IBAN, error) {
	return b.build(b.country, b.fields, false)
}

// BuildRandom fills every unset field with random characters of the right
// class and length, picking a supported country first when none was set.
// The builder's own fields are left untouched.
func (b *Builder) BuildRandom() (IBAN, error) {
	country := b.country
	if country == "" {
		country = supportedCountries[b.random.IntN(len(supportedCountries))]
	}
	structure, ok := StructureFor(country)
	if !ok {
		return IBAN{}, &Error{Kind: KindUnsupportedCountry, Country: country, Actual: string(country)}
	}

	fields := maps.Clone(b.fields)
	for _, f := range structure.fields {
		if _, set := fields[f.Type]; !set {
			fields[f.Type] = f.Random(b.random)
		}
	}
	return b.build(country, fields, true)
}

func (b *Builder) build(country CountryCode, fields map[FieldType]string, validateAfter bool) (IBAN, error) {
	if country == "" {
		return IBAN{}, &Error{Kind: KindMissingRequiredField}
	}
	for _, required := range []FieldType{BankCode, AccountNumber} {
		if _, ok := fields[required]; !ok {
			return IBAN{}, &Error{Kind: KindMissingRequiredField, Field: required, Country: country}
		}
	}
	structure, ok := StructureFor(country)
	if !ok {
		return IBAN{}, &Error{Kind: KindUnsupportedCountry, Country: country, Actual: string(country)}
	}

	if validateAfter {
		// A wrong-length field would otherwise shift its neighbours and be
		// reported under whichever field ends up misaligned.
		for _, f := range structure.fields {
			if v, set := fields[f.Type]; set && len(v) != f.Length {
				return IBAN{}, fieldLengthError(country, f, len(v))
			}
		}
	}

	var bban strings.Builder
	bban.Grow(structure.length)
	for _, f := range structure.fields {
		bban.WriteString(fields[f.Type])
	}

	check, err := ComputeCheckDigit(country, bban.String())
	if err != nil {
		return IBAN{}, err
	}
	value := string(country) + check + bban.String()

	if validateAfter {
		if err := Validate(value); err != nil {
			return IBAN{}, err
		}
	}
	return IBAN{value: value}, nil
}
