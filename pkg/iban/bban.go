package iban

import (
	"slices"
	"strconv"
	"strings"
)

// FieldType identifies a component of a BBAN.
type FieldType int

const (
	BankCode FieldType = iota + 1
	BranchCode
	AccountNumber
	NationalCheckDigit
	AccountType
	OwnerAccountNumber
	IdentificationNumber
)

var fieldTypeNames = map[FieldType]string{
	BankCode:             "bank_code",
	BranchCode:           "branch_code",
	AccountNumber:        "account_number",
	NationalCheckDigit:   "national_check_digit",
	AccountType:          "account_type",
	OwnerAccountNumber:   "owner_account_number",
	IdentificationNumber: "identification_number",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return "unknown_field"
}

// FieldTypes lists every field type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		BankCode, BranchCode, AccountNumber, NationalCheckDigit,
		AccountType, OwnerAccountNumber, IdentificationNumber,
	}
}

// ParseFieldType is the inverse of FieldType.String.
func ParseFieldType(name string) (FieldType, bool) {
	for t, n := range fieldTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// FieldDescriptor describes one fixed-length BBAN field.
type FieldDescriptor struct {
	Type   FieldType
	Class  CharacterClass
	Length int
}

// Matches reports whether value has the descriptor's length and class.
func (d FieldDescriptor) Matches(value string) bool {
	return len(value) == d.Length && allMatch(d.Class, value) < 0
}

// Random returns Length characters drawn uniformly from the descriptor's class.
func (d FieldDescriptor) Random(src RandomSource) string {
	alphabet := d.Class.Alphabet()
	var sb strings.Builder
	sb.Grow(d.Length)
	for range d.Length {
		sb.WriteByte(alphabet[src.IntN(len(alphabet))])
	}
	return sb.String()
}

// Notation renders the descriptor in SWIFT registry form, e.g. "8!n".
func (d FieldDescriptor) Notation() string {
	return strconv.Itoa(d.Length) + "!" + d.Class.Shortcode()
}

// Structure is the ordered field layout of a country's BBAN.
type Structure struct {
	fields []FieldDescriptor
	length int
}

func newStructure(fields ...FieldDescriptor) *Structure {
	s := &Structure{fields: fields}
	for _, f := range fields {
		s.length += f.Length
	}
	return s
}

// Fields returns a copy of the descriptors in BBAN order.
func (s *Structure) Fields() []FieldDescriptor {
	return slices.Clone(s.fields)
}

// Length is the total BBAN length.
func (s *Structure) Length() int { return s.length }

// Descriptor returns the descriptor for t, if the structure uses it.
func (s *Structure) Descriptor(t FieldType) (FieldDescriptor, bool) {
	for _, f := range s.fields {
		if f.Type == t {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Notation renders the whole layout, e.g. "8!n10!n" for Germany.
func (s *Structure) Notation() string {
	var sb strings.Builder
	for _, f := range s.fields {
		sb.WriteString(f.Notation())
	}
	return sb.String()
}

// offset returns where t starts inside the BBAN.
func (s *Structure) offset(t FieldType) (int, FieldDescriptor, bool) {
	pos := 0
	for _, f := range s.fields {
		if f.Type == t {
			return pos, f, true
		}
		pos += f.Length
	}
	return 0, FieldDescriptor{}, false
}

func bankCode(n int, cc CharacterClass) FieldDescriptor {
	return FieldDescriptor{Type: BankCode, Class: cc, Length: n}
}

func branchCode(n int, cc CharacterClass) FieldDescriptor {
	return FieldDescriptor{Type: BranchCode, Class: cc, Length: n}
}

func accountNumber(n int, cc CharacterClass) FieldDescriptor {
	return FieldDescriptor{Type: AccountNumber, Class: cc, Length: n}
}

func nationalCheckDigit(n int, cc CharacterClass) FieldDescriptor {
	return FieldDescriptor{Type: NationalCheckDigit, Class: cc, Length: n}
}

func accountType(n int, cc CharacterClass) FieldDescriptor {
	return FieldDescriptor{Type: AccountType, Class: cc, Length: n}
}

func ownerAccountNumber(n int, cc CharacterClass) FieldDescriptor {
	return FieldDescriptor{Type: OwnerAccountNumber, Class: cc, Length: n}
}

func identificationNumber(n int, cc CharacterClass) FieldDescriptor {
	return FieldDescriptor{Type: IdentificationNumber, Class: cc, Length: n}
}

// French overseas territories and Monaco may use their own country code or FR.
// The layout is identical; only the check digits differ.
var frenchStructure = newStructure(
	bankCode(5, Digits),
	branchCode(5, Digits),
	accountNumber(11, Alphanumeric),
	nationalCheckDigit(2, Digits),
)

var structures = map[CountryCode]*Structure{
	"AD": newStructure(bankCode(4, Digits), branchCode(4, Digits), accountNumber(12, Alphanumeric)),
	"AE": newStructure(bankCode(3, Digits), accountNumber(16, Alphanumeric)),
	"AL": newStructure(bankCode(3, Digits), branchCode(4, Digits), nationalCheckDigit(1, Digits), accountNumber(16, Alphanumeric)),
	"AT": newStructure(bankCode(5, Digits), accountNumber(11, Digits)),
	"AZ": newStructure(bankCode(4, UppercaseLetters), accountNumber(20, Alphanumeric)),
	"BA": newStructure(bankCode(3, Digits), branchCode(3, Digits), accountNumber(8, Digits), nationalCheckDigit(2, Digits)),
	"BE": newStructure(bankCode(3, Digits), accountNumber(7, Digits), nationalCheckDigit(2, Digits)),
	"BG": newStructure(bankCode(4, UppercaseLetters), branchCode(4, Digits), accountType(2, Digits), accountNumber(8, Alphanumeric)),
	"BH": newStructure(bankCode(4, UppercaseLetters), accountNumber(14, Alphanumeric)),
	"BL": frenchStructure,
	"BR": newStructure(bankCode(8, Digits), branchCode(5, Digits), accountNumber(10, Digits), accountType(1, UppercaseLetters), ownerAccountNumber(1, Alphanumeric)),
	"BY": newStructure(bankCode(4, Alphanumeric), branchCode(4, Digits), accountNumber(16, Alphanumeric)),
	"CH": newStructure(bankCode(5, Digits), accountNumber(12, Alphanumeric)),
	"CR": newStructure(bankCode(4, Digits), accountNumber(14, Digits)),
	"CY": newStructure(bankCode(3, Digits), branchCode(5, Digits), accountNumber(16, Alphanumeric)),
	"CZ": newStructure(bankCode(4, Digits), accountNumber(16, Digits)),
	"DE": newStructure(bankCode(8, Digits), accountNumber(10, Digits)),
	"DK": newStructure(bankCode(4, Digits), accountNumber(10, Digits)),
	"DO": newStructure(bankCode(4, Alphanumeric), accountNumber(20, Digits)),
	"EE": newStructure(bankCode(2, Digits), branchCode(2, Digits), accountNumber(11, Digits), nationalCheckDigit(1, Digits)),
	"ES": newStructure(bankCode(4, Digits), branchCode(4, Digits), nationalCheckDigit(2, Digits), accountNumber(10, Digits)),
	"FI": newStructure(bankCode(6, Digits), accountNumber(7, Digits), nationalCheckDigit(1, Digits)),
	"FO": newStructure(bankCode(4, Digits), accountNumber(9, Digits), nationalCheckDigit(1, Digits)),
	"FR": frenchStructure,
	"GB": newStructure(bankCode(4, UppercaseLetters), branchCode(6, Digits), accountNumber(8, Digits)),
	"GE": newStructure(bankCode(2, UppercaseLetters), accountNumber(16, Digits)),
	"GF": frenchStructure,
	"GI": newStructure(bankCode(4, UppercaseLetters), accountNumber(15, Alphanumeric)),
	"GL": newStructure(bankCode(4, Digits), accountNumber(10, Digits)),
	"GP": frenchStructure,
	"GR": newStructure(bankCode(3, Digits), branchCode(4, Digits), accountNumber(16, Alphanumeric)),
	"GT": newStructure(bankCode(4, Alphanumeric), accountNumber(20, Alphanumeric)),
	"HR": newStructure(bankCode(7, Digits), accountNumber(10, Digits)),
	"HU": newStructure(bankCode(3, Digits), branchCode(4, Digits), accountNumber(16, Digits), nationalCheckDigit(1, Digits)),
	"IE": newStructure(bankCode(4, UppercaseLetters), branchCode(6, Digits), accountNumber(8, Digits)),
	"IL": newStructure(bankCode(3, Digits), branchCode(3, Digits), accountNumber(13, Digits)),
	"IR": newStructure(bankCode(3, Digits), accountNumber(19, Digits)),
	"IS": newStructure(bankCode(4, Digits), branchCode(2, Digits), accountNumber(6, Digits), identificationNumber(10, Digits)),
	"IT": newStructure(nationalCheckDigit(1, UppercaseLetters), bankCode(5, Digits), branchCode(5, Digits), accountNumber(12, Alphanumeric)),
	"JO": newStructure(bankCode(4, UppercaseLetters), branchCode(4, Digits), accountNumber(18, Alphanumeric)),
	"KW": newStructure(bankCode(4, UppercaseLetters), accountNumber(22, Alphanumeric)),
	"KZ": newStructure(bankCode(3, Digits), accountNumber(13, Alphanumeric)),
	"LB": newStructure(bankCode(4, Digits), accountNumber(20, Alphanumeric)),
	"LC": newStructure(bankCode(4, UppercaseLetters), accountNumber(24, Alphanumeric)),
	"LI": newStructure(bankCode(5, Digits), accountNumber(12, Alphanumeric)),
	"LT": newStructure(bankCode(5, Digits), accountNumber(11, Digits)),
	"LU": newStructure(bankCode(3, Digits), accountNumber(13, Alphanumeric)),
	"LV": newStructure(bankCode(4, UppercaseLetters), accountNumber(13, Alphanumeric)),
	"MC": frenchStructure,
	"MD": newStructure(bankCode(2, Alphanumeric), accountNumber(18, Alphanumeric)),
	"ME": newStructure(bankCode(3, Digits), accountNumber(13, Digits), nationalCheckDigit(2, Digits)),
	"MF": frenchStructure,
	"MK": newStructure(bankCode(3, Digits), accountNumber(10, Alphanumeric), nationalCheckDigit(2, Digits)),
	"MQ": frenchStructure,
	"MR": newStructure(bankCode(5, Digits), branchCode(5, Digits), accountNumber(11, Digits), nationalCheckDigit(2, Digits)),
	"MT": newStructure(bankCode(4, UppercaseLetters), branchCode(5, Digits), accountNumber(18, Alphanumeric)),
	"MU": newStructure(bankCode(6, Alphanumeric), branchCode(2, Digits), accountNumber(18, Alphanumeric)),
	"NC": frenchStructure,
	"NL": newStructure(bankCode(4, UppercaseLetters), accountNumber(10, Digits)),
	"NO": newStructure(bankCode(4, Digits), accountNumber(6, Digits), nationalCheckDigit(1, Digits)),
	"PF": frenchStructure,
	"PK": newStructure(bankCode(4, Alphanumeric), accountNumber(16, Digits)),
	"PL": newStructure(bankCode(3, Digits), branchCode(4, Digits), nationalCheckDigit(1, Digits), accountNumber(16, Digits)),
	"PM": frenchStructure,
	"PS": newStructure(bankCode(4, UppercaseLetters), accountNumber(21, Alphanumeric)),
	"PT": newStructure(bankCode(4, Digits), branchCode(4, Digits), accountNumber(11, Digits), nationalCheckDigit(2, Digits)),
	"QA": newStructure(bankCode(4, UppercaseLetters), accountNumber(21, Alphanumeric)),
	"RE": frenchStructure,
	"RO": newStructure(bankCode(4, UppercaseLetters), accountNumber(16, Alphanumeric)),
	"RS": newStructure(bankCode(3, Digits), accountNumber(13, Digits), nationalCheckDigit(2, Digits)),
	"SA": newStructure(bankCode(2, Digits), accountNumber(18, Alphanumeric)),
	"SC": newStructure(bankCode(4, UppercaseLetters), branchCode(4, Digits), accountNumber(16, Digits), accountType(3, UppercaseLetters)),
	"SE": newStructure(bankCode(3, Digits), accountNumber(17, Digits)),
	"SI": newStructure(bankCode(2, Digits), branchCode(3, Digits), accountNumber(8, Digits), nationalCheckDigit(2, Digits)),
	"SK": newStructure(bankCode(4, Digits), accountNumber(16, Digits)),
	"SM": newStructure(nationalCheckDigit(1, UppercaseLetters), bankCode(5, Digits), branchCode(5, Digits), accountNumber(12, Alphanumeric)),
	"ST": newStructure(bankCode(4, Digits), branchCode(4, Digits), accountNumber(13, Digits)),
	"SV": newStructure(bankCode(4, UppercaseLetters), accountNumber(20, Digits)),
	"TF": frenchStructure,
	"TL": newStructure(bankCode(3, Digits), accountNumber(14, Digits), nationalCheckDigit(2, Digits)),
	"TN": newStructure(bankCode(2, Digits), branchCode(3, Digits), accountNumber(15, Alphanumeric)),
	"TR": newStructure(bankCode(5, Digits), nationalCheckDigit(1, Alphanumeric), accountNumber(16, Alphanumeric)),
	"UA": newStructure(bankCode(6, Digits), accountNumber(19, Digits)),
	"VA": newStructure(bankCode(3, Digits), accountNumber(15, Digits)),
	"VG": newStructure(bankCode(4, UppercaseLetters), accountNumber(16, Digits)),
	"WF": frenchStructure,
	"XK": newStructure(bankCode(2, Digits), branchCode(2, Digits), accountNumber(10, Digits), nationalCheckDigit(2, Digits)),
	"YT": frenchStructure,
}

var (
	supportedCountries = sortedCountries()
	minBBANLength      = shortestBBAN()
)

func sortedCountries() []CountryCode {
	codes := make([]CountryCode, 0, len(structures))
	for code := range structures {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

func shortestBBAN() int {
	shortest := 0
	for _, s := range structures {
		if shortest == 0 || s.length < shortest {
			shortest = s.length
		}
	}
	return shortest
}

// StructureFor returns the BBAN layout registered for code.
func StructureFor(code CountryCode) (*Structure, bool) {
	s, ok := structures[code]
	return s, ok
}

// SupportedCountries returns every country with a BBAN structure, sorted.
func SupportedCountries() []CountryCode {
	return slices.Clone(supportedCountries)
}

// MinLength is the shortest IBAN any supported country can produce.
func MinLength() int { return 4 + minBBANLength }
