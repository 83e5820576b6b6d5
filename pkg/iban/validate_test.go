package iban_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/ibankit/pkg/iban"
)

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		kind      iban.Kind
		violation iban.Violation
		field     iban.FieldType
		char      byte
		expected  string
		actual    string
	}{
		{name: "empty", raw: "", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANEmpty},
		{name: "space", raw: "DE89 370400440532013000", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANInvalidCharacters, char: ' '},
		{name: "lowercase", raw: "de89370400440532013000", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANInvalidCharacters, char: 'd'},
		{name: "invalid chars win over length", raw: "de8", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANInvalidCharacters, char: 'd'},
		{name: "too short", raw: "DE8937040044", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANMinLength, expected: "15", actual: "12"},
		{name: "numeric country", raw: "1289370400440532013000", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANCountryCode, actual: "12"},
		{name: "letter check digit", raw: "DEAB370400440532013000", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANCheckDigitFormat, actual: "AB"},
		{name: "unsupported country", raw: "US89370400440532013000", kind: iban.KindUnsupportedCountry},
		{name: "account too short", raw: "DE8937040044053201300", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANFieldLength, field: iban.AccountNumber, expected: "10", actual: "9"},
		{name: "account barely started", raw: "DE8937040044053", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANFieldLength, field: iban.AccountNumber, expected: "10", actual: "3"},
		{name: "too long", raw: "DE893704004405320130000", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANFieldLength, field: iban.AccountNumber, expected: "10", actual: "11"},
		{name: "gb one extra digit", raw: "GB82WEST123456987654321", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANFieldLength, field: iban.AccountNumber, expected: "8", actual: "9"},
		{name: "bank code class", raw: "GB82W3ST12345698765432", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANFieldCharacters, field: iban.BankCode, char: '3', expected: "uppercase letters", actual: "W3ST"},
		{name: "account class", raw: "DE8937040044053201300A", kind: iban.KindInvalidIBANFormat, violation: iban.ViolationIBANFieldCharacters, field: iban.AccountNumber, char: 'A', expected: "digits", actual: "053201300A"},
		{name: "checksum", raw: "GB82WEST12345698765431", kind: iban.KindInvalidCheckDigit, expected: "12", actual: "82"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := iban.Validate(tt.raw)
			var ierr *iban.Error
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tt.kind, ierr.Kind)
			assert.Equal(t, tt.violation, ierr.Violation)
			assert.Equal(t, tt.field, ierr.Field)
			assert.Equal(t, tt.char, ierr.Char)
			if tt.expected != "" {
				assert.Equal(t, tt.expected, ierr.Expected)
			}
			if tt.actual != "" {
				assert.Equal(t, tt.actual, ierr.Actual)
			}
			assert.NotEmpty(t, ierr.Error())
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	for _, raw := range []string{
		"DE89370400440532013000",
		"GB82WEST12345698765432",
		"XK051212012345678906",
		"BR1800360305000010009795493C1",
	} {
		assert.NoError(t, iban.Validate(raw), raw)
	}
}

func TestValidate_NilInterfaceOnSuccess(t *testing.T) {
	err := iban.Validate("DE89370400440532013000")
	assert.True(t, err == nil)
}

func TestValidate_ErrorsIs(t *testing.T) {
	err := iban.Validate("US89370400440532013000")
	assert.ErrorIs(t, err, iban.ErrUnsupportedCountry)
	assert.NotErrorIs(t, err, iban.ErrInvalidIBANFormat)

	err = iban.Validate("DE8937040044053201300")
	assert.ErrorIs(t, err, iban.ErrInvalidIBANFormat)
	assert.ErrorIs(t, err, &iban.Error{Kind: iban.KindInvalidIBANFormat, Violation: iban.ViolationIBANFieldLength})
	assert.NotErrorIs(t, err, &iban.Error{Kind: iban.KindInvalidIBANFormat, Violation: iban.ViolationIBANFieldCharacters})
}
