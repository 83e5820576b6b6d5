package iban

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// CountryCode is an ISO 3166-1 alpha-2 country code such as "DE".
type CountryCode string

// LookupCountry resolves code to a known country. Codes present in the BBAN
// registry always resolve; any other code must be a current ISO 3166 country.
// Lowercase input and region aliases are rejected.
func LookupCountry(code string) (CountryCode, bool) {
	if len(code) != 2 || !isUpper(code[0]) || !isUpper(code[1]) {
		return "", false
	}
	if _, ok := structures[CountryCode(code)]; ok {
		return CountryCode(code), true
	}
	region, err := language.ParseRegion(code)
	if err != nil || !region.IsCountry() || region.String() != code {
		return "", false
	}
	return CountryCode(code), true
}

// Name returns the English display name of the country, or the code itself
// when no name is known.
func (c CountryCode) Name() string {
	region, err := language.ParseRegion(string(c))
	if err != nil {
		return string(c)
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return string(c)
}

// Alpha3 returns the ISO 3166-1 alpha-3 code, or "" when unknown.
func (c CountryCode) Alpha3() string {
	region, err := language.ParseRegion(string(c))
	if err != nil {
		return ""
	}
	iso3 := region.ISO3()
	if iso3 == "ZZZ" {
		return ""
	}
	return iso3
}

// Supported reports whether the country has a BBAN structure.
func (c CountryCode) Supported() bool {
	_, ok := structures[c]
	return ok
}

func (c CountryCode) String() string { return string(c) }
