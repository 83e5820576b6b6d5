package swiftregistry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/ibankit/pkg/iban"
)

// registryTSV mimics the SWIFT export: one row per data element, one
// column per country.
var registryTSV = strings.Join([]string{
	"Data element\tAndorra\tAustria\tGermany\tUnited Kingdom\tNowhere",
	"Name of country\tAndorra\tAustria\tGermany\tUnited Kingdom\tNowhere",
	"IBAN prefix country code (ISO 3166)\tAD\tAT\tDE\tGB\tZZ",
	"BBAN\t\t\t\t\t",
	"BBAN structure\t4!n4!n12!c\t5!n11!c\t8!n10!n\t4!a6!n8!n\t4!n",
	"BBAN length\t20\t16\t19\t18\t4",
	"Bank identifier position within the BBAN\t1-4\t1-5\t1-8\t1-4\t1-4",
	"IBAN structure\tAD2!n4!n4!n12!c\tAT2!n5!n11!n\tDE2!n8!n10!n\tGB2!n4!a6!n8!n\tZZ2!n4!n",
	"IBAN length\t24\t20\t22\t22\t8",
	"IBAN electronic format example\tAD1200012030200359100100\tAT611904300234573201\tDE89370400440532013000\tGB29NWBK60161331926818\t",
}, "\n") + "\n"

func TestParse(t *testing.T) {
	reg, err := Parse(strings.NewReader(registryTSV))
	require.NoError(t, err)
	require.Len(t, reg.Entries, 5)

	ad, ok := reg.Lookup("AD")
	require.True(t, ok)
	assert.Equal(t, Entry{
		Country:       "AD",
		Name:          "Andorra",
		BBANStructure: "4!n4!n12!c",
		BBANLength:    20,
		BankPosition:  "1-4",
		IBANLength:    24,
		Example:       "AD1200012030200359100100",
	}, ad)

	_, ok = reg.Lookup("FR")
	assert.False(t, ok)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader("Data element\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("Data element\tAndorra\nBBAN length\t20\n"))
	assert.ErrorContains(t, err, "no country codes")

	_, err = Parse(strings.NewReader("IBAN prefix country code\tAD\nBBAN length\ttwenty\n"))
	assert.ErrorContains(t, err, "not a number")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.txt")
	require.NoError(t, os.WriteFile(path, []byte(registryTSV), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, reg.Entries, 5)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestParseNotation(t *testing.T) {
	elements, err := ParseNotation("4!a6!n 8!n")
	require.NoError(t, err)
	assert.Equal(t, []Element{
		{Length: 4, Class: iban.UppercaseLetters, Fixed: true},
		{Length: 6, Class: iban.Digits, Fixed: true},
		{Length: 8, Class: iban.Digits, Fixed: true},
	}, elements)
	assert.Equal(t, "aaaannnnnnnnnnnnnn", Layout(elements))

	variable, err := ParseNotation("12c")
	require.NoError(t, err)
	assert.False(t, variable[0].Fixed)

	for _, bad := range []string{"", "4!x", "!n", "4!n-"} {
		_, err := ParseNotation(bad)
		assert.Error(t, err, bad)
	}
}

func TestStructureLayout(t *testing.T) {
	gb, ok := iban.StructureFor("GB")
	require.True(t, ok)

	assert.Equal(t, "aaaannnnnnnnnnnnnn", StructureLayout(gb))
	assert.Equal(t, "1-4", bankPosition(gb))

	elements, err := ParseNotation(gb.Notation())
	require.NoError(t, err)
	assert.Equal(t, StructureLayout(gb), Layout(elements))
}

func TestVerify(t *testing.T) {
	reg, err := Parse(strings.NewReader(registryTSV))
	require.NoError(t, err)

	var found []Discrepancy
	missing := 0
	for _, d := range Verify(reg) {
		if d.Check == "not_in_registry" {
			missing++
			continue
		}
		found = append(found, d)
	}

	assert.Equal(t, len(iban.SupportedCountries())-4, missing)
	require.Len(t, found, 4)

	assert.Equal(t, Discrepancy{Country: "AT", Check: "bban_layout", Expected: "5!n11!c", Actual: "5!n11!n"}, found[0])
	assert.Equal(t, Discrepancy{Country: "DE", Check: "bban_length", Expected: "19", Actual: "18"}, found[1])
	assert.Equal(t, "GB", found[2].Country)
	assert.Equal(t, "example_iban", found[2].Check)
	assert.Contains(t, found[2].Message, "GB29NWBK60161331926818")
	assert.Equal(t, Discrepancy{Country: "ZZ", Check: "unsupported_country", Message: "registry country has no built-in BBAN structure"}, found[3])

	assert.Equal(t, `DE bban_length: registry "19", built-in "18"`, found[1].String())
}
