package iban

import "fmt"

// CharacterClass is the alphabet a BBAN field is drawn from.
type CharacterClass int

const (
	// Digits accepts '0' through '9' (registry shortcode "n").
	Digits CharacterClass = iota + 1
	// UppercaseLetters accepts 'A' through 'Z' (registry shortcode "a").
	UppercaseLetters
	// Alphanumeric accepts the union of Digits and UppercaseLetters
	// (registry shortcode "c").
	Alphanumeric
)

const (
	digitAlphabet  = "0123456789"
	letterAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Matches reports whether c belongs to the class.
func (cc CharacterClass) Matches(c byte) bool {
	switch cc {
	case Digits:
		return isDigit(c)
	case UppercaseLetters:
		return isUpper(c)
	case Alphanumeric:
		return isDigit(c) || isUpper(c)
	}
	return false
}

// Alphabet returns the characters random generation may choose from.
func (cc CharacterClass) Alphabet() string {
	switch cc {
	case Digits:
		return digitAlphabet
	case UppercaseLetters:
		return letterAlphabet
	case Alphanumeric:
		return digitAlphabet + letterAlphabet
	}
	return ""
}

// Shortcode returns the single-letter SWIFT registry notation for the class.
func (cc CharacterClass) Shortcode() string {
	switch cc {
	case Digits:
		return "n"
	case UppercaseLetters:
		return "a"
	case Alphanumeric:
		return "c"
	}
	return "?"
}

func (cc CharacterClass) String() string {
	switch cc {
	case Digits:
		return "digits"
	case UppercaseLetters:
		return "uppercase letters"
	case Alphanumeric:
		return "alphanumeric"
	}
	return fmt.Sprintf("CharacterClass(%d)", int(cc))
}

// ParseCharacterClass maps a registry shortcode ("n", "a" or "c") to its class.
func ParseCharacterClass(shortcode string) (CharacterClass, error) {
	switch shortcode {
	case "n":
		return Digits, nil
	case "a":
		return UppercaseLetters, nil
	case "c":
		return Alphanumeric, nil
	}
	return 0, fmt.Errorf("unknown character class %q", shortcode)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// allMatch returns the index of the first character of s outside cc, or -1.
func allMatch(cc CharacterClass, s string) int {
	for i := 0; i < len(s); i++ {
		if !cc.Matches(s[i]) {
			return i
		}
	}
	return -1
}
