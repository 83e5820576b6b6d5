// =============================================================================
// ibankit - SWIFT IBAN Registry
// =============================================================================
//
// This module reads the IBAN registry published by SWIFT and checks the
// built-in BBAN table against it. The registry is distributed as a
// tab-separated text file where rows are data elements and columns are
// countries:
//
//   Data element                              Andorra       Austria
//   IBAN prefix country code (ISO 3166)       AD            AT
//   BBAN structure                            4!n4!n12!c    5!n11!n
//   BBAN length                               20            16
//   Bank identifier position within the BBAN  1-4           1-5
//   IBAN electronic format example            AD12000...    AT61190...
//
// CHECKS (per registry country):
//   - unsupported_country : country missing from the built-in table
//   - bban_length         : BBAN length differs
//   - bban_layout         : character class differs at some position
//   - bank_position       : bank identifier position differs
//   - iban_length         : IBAN length is not BBAN length + 4
//   - example_iban        : the published example does not validate
//   - not_in_registry     : built-in country absent from the file
//
// =============================================================================

package swiftregistry

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ginjaninja78/ibankit/internal/csvparser"
	"github.com/ginjaninja78/ibankit/pkg/iban"
)

// =============================================================================
// REGISTRY ENTRIES
// =============================================================================

// Entry is the registry data for one country.
type Entry struct {
	Country       string
	Name          string
	BBANStructure string
	BBANLength    int
	BankPosition  string
	IBANLength    int
	Example       string
}

// Registry is a parsed registry file, one entry per country column.
type Registry struct {
	Entries []Entry
}

// Lookup returns the entry for a country code.
func (r *Registry) Lookup(country string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Country == country {
			return e, true
		}
	}
	return Entry{}, false
}

// rowKeys maps a data element label prefix to the entry field it fills.
var rowKeys = []struct {
	prefix string
	set    func(e *Entry, v string) error
}{
	{"name of country", func(e *Entry, v string) error { e.Name = v; return nil }},
	{"iban prefix country code", func(e *Entry, v string) error { e.Country = v; return nil }},
	{"bban structure", func(e *Entry, v string) error { e.BBANStructure = v; return nil }},
	{"bban length", func(e *Entry, v string) error { return setInt(&e.BBANLength, v) }},
	{"bank identifier position", func(e *Entry, v string) error { e.BankPosition = v; return nil }},
	{"iban length", func(e *Entry, v string) error { return setInt(&e.IBANLength, v) }},
	{"iban electronic format example", func(e *Entry, v string) error { e.Example = v; return nil }},
}

func setInt(dst *int, v string) error {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("not a number: %q", v)
	}
	*dst = n
	return nil
}

// Load reads a registry file.
func Load(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a registry in SWIFT's tab-separated layout.
//
// RETURNS:
//   - One entry per country column that has a country code.
//   - An error if the stream cannot be read, has no country columns, or a
//     numeric row holds text.
func Parse(r io.Reader) (*Registry, error) {
	rows, err := csvparser.ReadRecords(r, "tab")
	if err != nil {
		return nil, err
	}

	columns := 0
	for _, row := range rows {
		columns = max(columns, len(row)-1)
	}
	if columns == 0 {
		return nil, fmt.Errorf("registry has no country columns")
	}

	entries := make([]Entry, columns)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		label := strings.ToLower(strings.TrimSpace(row[0]))
		for _, key := range rowKeys {
			if !strings.HasPrefix(label, key.prefix) {
				continue
			}
			for col := 1; col < len(row); col++ {
				if err := key.set(&entries[col-1], strings.TrimSpace(row[col])); err != nil {
					return nil, fmt.Errorf("%s, column %d: %w", row[0], col+1, err)
				}
			}
			break
		}
	}

	reg := &Registry{}
	for _, e := range entries {
		if e.Country != "" {
			reg.Entries = append(reg.Entries, e)
		}
	}
	if len(reg.Entries) == 0 {
		return nil, fmt.Errorf("registry has no country codes")
	}

	return reg, nil
}

// =============================================================================
// STRUCTURE NOTATION
// =============================================================================

// Element is one run of a BBAN structure, e.g. "4!n".
type Element struct {
	Length int
	Class  iban.CharacterClass

	// Fixed is true for "!" runs; otherwise Length is a maximum.
	Fixed bool
}

var elementPattern = regexp.MustCompile(`^(\d+)(!?)([a-z])`)

// ParseNotation decodes a structure such as "4!a6!n8!n". Spaces are ignored.
func ParseNotation(notation string) ([]Element, error) {
	s := strings.ReplaceAll(notation, " ", "")
	if s == "" {
		return nil, fmt.Errorf("empty structure")
	}

	var elements []Element
	for s != "" {
		m := elementPattern.FindStringSubmatch(s)
		if m == nil {
			return nil, fmt.Errorf("malformed structure %q at %q", notation, s)
		}

		length, _ := strconv.Atoi(m[1])
		class, err := iban.ParseCharacterClass(m[3])
		if err != nil {
			return nil, fmt.Errorf("structure %q: %w", notation, err)
		}

		elements = append(elements, Element{Length: length, Class: class, Fixed: m[2] == "!"})
		s = s[len(m[0]):]
	}

	return elements, nil
}

// Layout expands elements into one class shortcode per position, e.g.
// "nnnnaa" for 4!n2!a.
func Layout(elements []Element) string {
	var b strings.Builder
	for _, e := range elements {
		b.WriteString(strings.Repeat(e.Class.Shortcode(), e.Length))
	}
	return b.String()
}

// StructureLayout is Layout for a built-in structure.
func StructureLayout(s *iban.Structure) string {
	var b strings.Builder
	for _, f := range s.Fields() {
		b.WriteString(strings.Repeat(f.Class.Shortcode(), f.Length))
	}
	return b.String()
}

// bankPosition renders the 1-based bank code span of s as the registry does.
func bankPosition(s *iban.Structure) string {
	offset := 0
	for _, f := range s.Fields() {
		if f.Type == iban.BankCode {
			return fmt.Sprintf("%d-%d", offset+1, offset+f.Length)
		}
		offset += f.Length
	}
	return ""
}

// =============================================================================
// VERIFICATION
// =============================================================================

// Discrepancy is one difference between the registry and the built-in table.
type Discrepancy struct {
	Country  string
	Check    string
	Expected string
	Actual   string
	Message  string
}

func (d Discrepancy) String() string {
	if d.Message != "" {
		return fmt.Sprintf("%s %s: %s", d.Country, d.Check, d.Message)
	}
	return fmt.Sprintf("%s %s: registry %q, built-in %q", d.Country, d.Check, d.Expected, d.Actual)
}

// Verify compares every registry entry with the built-in table. Expected
// holds the registry value and Actual the built-in one.
//
// RETURNS:
//   - The discrepancies ordered by country, then check. Empty means the
//     built-in table agrees with the registry.
func Verify(reg *Registry) []Discrepancy {
	var out []Discrepancy
	seen := make(map[string]bool, len(reg.Entries))

	for _, e := range reg.Entries {
		seen[e.Country] = true
		out = append(out, verifyEntry(e)...)
	}

	for _, code := range iban.SupportedCountries() {
		if !seen[string(code)] {
			out = append(out, Discrepancy{
				Country: string(code),
				Check:   "not_in_registry",
				Message: "built-in country is not listed in the registry file",
			})
		}
	}

	slices.SortStableFunc(out, func(a, b Discrepancy) int {
		return strings.Compare(a.Country, b.Country)
	})

	return out
}

func verifyEntry(e Entry) []Discrepancy {
	structure, ok := iban.StructureFor(iban.CountryCode(e.Country))
	if !ok {
		return []Discrepancy{{
			Country: e.Country,
			Check:   "unsupported_country",
			Message: "registry country has no built-in BBAN structure",
		}}
	}

	var out []Discrepancy
	add := func(check, expected, actual string) {
		out = append(out, Discrepancy{Country: e.Country, Check: check, Expected: expected, Actual: actual})
	}

	if e.BBANLength != 0 && e.BBANLength != structure.Length() {
		add("bban_length", strconv.Itoa(e.BBANLength), strconv.Itoa(structure.Length()))
	}

	if e.BBANStructure != "" {
		elements, err := ParseNotation(e.BBANStructure)
		if err != nil {
			out = append(out, Discrepancy{Country: e.Country, Check: "bban_layout", Message: err.Error()})
		} else if layout := Layout(elements); layout != StructureLayout(structure) {
			add("bban_layout", e.BBANStructure, structure.Notation())
		}
	}

	if pos := strings.ReplaceAll(e.BankPosition, " ", ""); pos != "" && pos != bankPosition(structure) {
		add("bank_position", pos, bankPosition(structure))
	}

	if e.IBANLength != 0 && e.IBANLength != structure.Length()+4 {
		add("iban_length", strconv.Itoa(e.IBANLength), strconv.Itoa(structure.Length()+4))
	}

	if e.Example != "" {
		if err := iban.Validate(strings.ReplaceAll(e.Example, " ", "")); err != nil {
			out = append(out, Discrepancy{
				Country: e.Country,
				Check:   "example_iban",
				Message: fmt.Sprintf("%s: %v", e.Example, err),
			})
		}
	}

	return out
}
