package iban_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/ibankit/pkg/iban"
)

func TestLookupCountry(t *testing.T) {
	tests := []struct {
		code string
		ok   bool
	}{
		{"DE", true},
		{"XK", true},
		{"US", true},
		{"JP", true},
		{"de", false},
		{"D", false},
		{"DEU", false},
		{"QQ", false},
		{"ZZ", false},
		{"12", false},
	}
	for _, tt := range tests {
		code, ok := iban.LookupCountry(tt.code)
		assert.Equal(t, tt.ok, ok, tt.code)
		if tt.ok {
			assert.Equal(t, iban.CountryCode(tt.code), code)
		}
	}
}

func TestLookupCountry_CoversRegistry(t *testing.T) {
	for _, code := range iban.SupportedCountries() {
		_, ok := iban.LookupCountry(string(code))
		assert.True(t, ok, code)
	}
}

func TestCountryCode_Metadata(t *testing.T) {
	assert.Equal(t, "Germany", iban.CountryCode("DE").Name())
	assert.Equal(t, "DEU", iban.CountryCode("DE").Alpha3())
	assert.Equal(t, "GBR", iban.CountryCode("GB").Alpha3())
	assert.True(t, iban.CountryCode("FR").Supported())
	assert.False(t, iban.CountryCode("US").Supported())
}
