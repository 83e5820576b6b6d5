package iban_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/ibankit/pkg/iban"
)

func TestSupportedCountries(t *testing.T) {
	countries := iban.SupportedCountries()
	assert.Len(t, countries, 88)
	assert.True(t, slices.IsSorted(countries))
	assert.Contains(t, countries, iban.CountryCode("DE"))
	assert.NotContains(t, countries, iban.CountryCode("US"))

	countries[0] = "ZZ"
	assert.NotEqual(t, iban.CountryCode("ZZ"), iban.SupportedCountries()[0])
}

func TestStructureFor(t *testing.T) {
	de, ok := iban.StructureFor("DE")
	require.True(t, ok)
	assert.Equal(t, 18, de.Length())
	assert.Equal(t, "8!n10!n", de.Notation())
	assert.Equal(t, []iban.FieldDescriptor{
		{Type: iban.BankCode, Class: iban.Digits, Length: 8},
		{Type: iban.AccountNumber, Class: iban.Digits, Length: 10},
	}, de.Fields())

	gb, ok := iban.StructureFor("GB")
	require.True(t, ok)
	assert.Equal(t, "4!a6!n8!n", gb.Notation())

	_, ok = iban.StructureFor("US")
	assert.False(t, ok)
}

func TestStructureFor_FrenchTerritoriesShareLayout(t *testing.T) {
	fr, ok := iban.StructureFor("FR")
	require.True(t, ok)
	for _, code := range []iban.CountryCode{"BL", "GF", "GP", "MC", "MF", "MQ", "NC", "PF", "PM", "RE", "TF", "WF", "YT"} {
		s, ok := iban.StructureFor(code)
		require.True(t, ok, code)
		assert.Same(t, fr, s, code)
	}
}

func TestStructure_EveryCountryHasRequiredFields(t *testing.T) {
	for _, code := range iban.SupportedCountries() {
		s, _ := iban.StructureFor(code)
		_, ok := s.Descriptor(iban.BankCode)
		assert.True(t, ok, code)
		_, ok = s.Descriptor(iban.AccountNumber)
		assert.True(t, ok, code)
		assert.LessOrEqual(t, s.Length()+4, 34, code)
	}
}

func TestMinLength(t *testing.T) {
	assert.Equal(t, 15, iban.MinLength())
}

func TestFieldDescriptor_Random(t *testing.T) {
	src := iban.NewSeededSource(9)
	for _, d := range []iban.FieldDescriptor{
		{Type: iban.BankCode, Class: iban.Digits, Length: 8},
		{Type: iban.BankCode, Class: iban.UppercaseLetters, Length: 4},
		{Type: iban.AccountNumber, Class: iban.Alphanumeric, Length: 24},
	} {
		for range 50 {
			v := d.Random(src)
			assert.Len(t, v, d.Length)
			assert.True(t, d.Matches(v), v)
		}
	}
}

func TestFieldType_String(t *testing.T) {
	for _, ft := range iban.FieldTypes() {
		parsed, ok := iban.ParseFieldType(ft.String())
		require.True(t, ok)
		assert.Equal(t, ft, parsed)
	}
	_, ok := iban.ParseFieldType("country")
	assert.False(t, ok)
}
