package iban_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/ibankit/pkg/iban"
)

func TestBuilder_Build(t *testing.T) {
	v, err := iban.NewBuilder().
		CountryCode("DE").
		BankCode("37040044").
		AccountNumber("0532013000").
		Build()
	require.NoError(t, err)
	assert.Equal(t, iban.MustParse("DE89370400440532013000"), v)

	v, err = iban.NewBuilder().
		CountryCode("GB").
		BankCode("WEST").
		BranchCode("123456").
		AccountNumber("98765432").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "GB82WEST12345698765432", v.String())
}

func TestBuilder_NamedSettersMatchSet(t *testing.T) {
	named, err := iban.NewBuilder().
		CountryCode("FR").
		BankCode("20041").
		BranchCode("01005").
		AccountNumber("0500013M026").
		NationalCheckDigit("06").
		Build()
	require.NoError(t, err)
	assert.Equal(t, iban.MustParse("FR1420041010050500013M02606"), named)

	generic, err := iban.NewBuilder().
		CountryCode("FR").
		Set(iban.BankCode, "20041").
		Set(iban.BranchCode, "01005").
		Set(iban.AccountNumber, "0500013M026").
		Set(iban.NationalCheckDigit, "06").
		Build()
	require.NoError(t, err)
	assert.Equal(t, named, generic)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "unsupported country", iban.KindUnsupportedCountry.String())
	assert.Equal(t, "invalid IBAN format", iban.KindInvalidIBANFormat.String())
	assert.Equal(t, "invalid BIC format", iban.KindInvalidBICFormat.String())
	assert.Equal(t, "invalid check digit", iban.KindInvalidCheckDigit.String())
	assert.Equal(t, "missing required field", iban.KindMissingRequiredField.String())
	assert.Equal(t, "Kind(0)", iban.Kind(0).String())
}

func TestBuilder_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		builder *iban.Builder
		field   iban.FieldType
	}{
		{"country", iban.NewBuilder().BankCode("37040044").AccountNumber("0532013000"), 0},
		{"bank code", iban.NewBuilder().CountryCode("DE").AccountNumber("0532013000"), iban.BankCode},
		{"account number", iban.NewBuilder().CountryCode("DE").BankCode("37040044"), iban.AccountNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			var ierr *iban.Error
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, iban.KindMissingRequiredField, ierr.Kind)
			assert.Equal(t, tt.field, ierr.Field)

			_, err = tt.builder.BuildUnchecked()
			assert.ErrorIs(t, err, iban.ErrMissingRequiredField)
		})
	}
}

func TestBuilder_UnsupportedCountry(t *testing.T) {
	_, err := iban.NewBuilder().CountryCode("US").BankCode("1").AccountNumber("2").Build()
	assert.ErrorIs(t, err, iban.ErrUnsupportedCountry)
}

func TestBuilder_WrongFieldLengthNamesField(t *testing.T) {
	src := iban.NewSeededSource(11)
	for _, country := range iban.SupportedCountries() {
		structure, ok := iban.StructureFor(country)
		require.True(t, ok)

		for _, target := range structure.Fields() {
			for _, delta := range []int{-1, 1} {
				b := iban.NewBuilder().CountryCode(country)
				for _, f := range structure.Fields() {
					b.Set(f.Type, f.Random(src))
				}
				value := target.Random(src)
				if delta < 0 {
					value = value[:len(value)-1]
				} else {
					value += value[:1]
				}
				b.Set(target.Type, value)

				_, err := b.Build()
				var ierr *iban.Error
				require.ErrorAs(t, err, &ierr, "%s %s", country, target.Type)
				assert.Equal(t, iban.ViolationIBANFieldLength, ierr.Violation)
				assert.Equal(t, target.Type, ierr.Field, "%s", country)
			}
		}
	}
}

func TestBuilder_WrongFieldClass(t *testing.T) {
	_, err := iban.NewBuilder().
		CountryCode("GB").
		BankCode("W3ST").
		BranchCode("123456").
		AccountNumber("98765432").
		Build()
	var ierr *iban.Error
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, iban.ViolationIBANFieldCharacters, ierr.Violation)
	assert.Equal(t, iban.BankCode, ierr.Field)
}

func TestBuilder_BuildUncheckedSkipsValidation(t *testing.T) {
	v, err := iban.NewBuilder().
		CountryCode("DE").
		BankCode("370400").
		AccountNumber("0532013000").
		BuildUnchecked()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(v.String(), "3704000532013000"))
	assert.True(t, iban.IsValidChecksum(v.String()))
	assert.Error(t, iban.Validate(v.String()))
}

func TestBuilder_BuildRandomKeepsSuppliedFields(t *testing.T) {
	b := iban.NewBuilder(iban.WithRandom(iban.NewSeededSource(5))).
		CountryCode("GB").
		BankCode("WEST")

	first, err := b.BuildRandom()
	require.NoError(t, err)
	assert.Equal(t, "WEST", first.BankCode())

	second, err := b.BuildRandom()
	require.NoError(t, err)
	assert.Equal(t, "WEST", second.BankCode())
	assert.NotEqual(t, first.AccountNumber(), second.AccountNumber())

	_, err = b.Build()
	assert.ErrorIs(t, err, iban.ErrMissingRequiredField)
}

func TestBuilder_BuildRandomPicksCountry(t *testing.T) {
	seen := make(map[iban.CountryCode]bool)
	b := iban.NewBuilder(iban.WithRandom(iban.NewSeededSource(1)))
	for range 200 {
		v, err := b.BuildRandom()
		require.NoError(t, err)
		assert.True(t, v.CountryCode().Supported())
		seen[v.CountryCode()] = true
	}
	assert.Greater(t, len(seen), 20)
}
