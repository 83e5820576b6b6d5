package iban

import "fmt"

const (
	defaultCheckDigit = "00"
	mod               = 97
	// Folding once the running total passes nine digits keeps every
	// intermediate value well inside an int64.
	foldThreshold = 999_999_999
)

// CalculateCheckDigit computes the MOD97-10 check digit for iban. The check
// digits already present in positions 3 and 4 are ignored.
func CalculateCheckDigit(iban string) (string, error) {
	if len(iban) < 4 {
		return "", formatError(ViolationIBANMinLength, fmt.Sprint(len(iban)))
	}
	return ComputeCheckDigit(CountryCode(iban[:2]), iban[4:])
}

// ComputeCheckDigit computes the check digit for bban under country.
func ComputeCheckDigit(country CountryCode, bban string) (string, error) {
	rem, err := mod97(bban + string(country) + defaultCheckDigit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d", 98-rem), nil
}

// IsValidChecksum reports whether iban satisfies MOD97-10.
func IsValidChecksum(iban string) bool {
	if len(iban) < 4 {
		return false
	}
	rem, err := mod97(iban[4:] + iban[:4])
	return err == nil && rem == 1
}

// mod97 interprets s with letters expanded to 10..35 and returns it modulo 97.
func mod97(s string) (int, error) {
	var total int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c):
			total = total*10 + int64(c-'0')
		case isUpper(c):
			total = total*100 + int64(c-'A'+10)
		default:
			return 0, &Error{
				Kind:      KindInvalidIBANFormat,
				Violation: ViolationIBANInvalidCharacters,
				Char:      c,
			}
		}
		if total > foldThreshold {
			total %= mod
		}
	}
	return int(total % mod), nil
}
