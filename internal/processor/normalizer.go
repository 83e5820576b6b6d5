// =============================================================================
// ibankit - Normalization Engine
// =============================================================================
//
// This module cleans raw column values before they are validated. Exports
// from banking and ERP systems carry identifiers with stray spaces, lowercase
// letters, separators or truncated leading zeros; each source profile lists
// the actions that repair them.
//
// EXAMPLE (source profile):
//
//   normalization_rules:
//     - field: Beneficiary IBAN
//       actions:
//         - type: remove_chars
//           value: "-."
//         - type: remove_spaces
//         - type: uppercase
//     - field: Bank
//       actions:
//         - type: lookup
//           lookup_table: {"Commerzbank": "COBADEFFXXX"}
//
// =============================================================================

package processor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ginjaninja78/ibankit/internal/config"
)

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer applies the normalization rules of a source profile.
type Normalizer struct {
	rules []config.TransformationRule

	// patterns holds compiled regex_replace patterns keyed by pattern text.
	patterns map[string]*regexp.Regexp
}

// NewNormalizer checks every action and compiles its patterns.
//
// RETURNS:
//   - The normalizer.
//   - An error naming the first unknown action type, bad parameter or
//     invalid pattern.
func NewNormalizer(rules []config.TransformationRule) (*Normalizer, error) {
	n := &Normalizer{
		rules:    rules,
		patterns: make(map[string]*regexp.Regexp),
	}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if err := n.prepare(action); err != nil {
				return nil, fmt.Errorf("field %q: %w", rule.Field, err)
			}
		}
	}

	return n, nil
}

// prepare validates one action ahead of use.
func (n *Normalizer) prepare(action config.TransformationAction) error {
	switch action.Type {
	case "trim", "trim_left", "trim_right", "uppercase", "lowercase",
		"remove_spaces", "remove_chars", "prepend_string", "append_string",
		"replace", "lookup", "lookup_with_default",
		"if_empty_use_default", "if_empty_use_field", "extract_alphanumeric":
		return nil

	case "pad_zeros_to_length":
		if length, err := strconv.Atoi(action.Value); err != nil || length <= 0 {
			return fmt.Errorf("pad_zeros_to_length needs a positive length, got %q", action.Value)
		}
		return nil

	case "regex_replace":
		if action.Find == "" {
			return fmt.Errorf("regex_replace needs a find pattern")
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		n.patterns[action.Find] = re
		return nil

	default:
		return fmt.Errorf("unknown normalization type: %s", action.Type)
	}
}

// Normalize applies the rules for fieldName to value.
//
// PARAMETERS:
//   - fieldName: The input header.
//   - value: The current value.
//   - row: The whole row, for actions that read other fields.
func (n *Normalizer) Normalize(fieldName, value string, row map[string]string) string {
	for _, rule := range n.rules {
		if rule.Field != fieldName {
			continue
		}
		for _, action := range rule.Actions {
			value = n.apply(value, action, row)
		}
	}
	return value
}

// NormalizeRow applies every rule to row in place. Rules whose field is not
// a column of the row are skipped.
func (n *Normalizer) NormalizeRow(row map[string]string) {
	for _, rule := range n.rules {
		value, exists := row[rule.Field]
		if !exists {
			continue
		}
		for _, action := range rule.Actions {
			value = n.apply(value, action, row)
		}
		row[rule.Field] = value
	}
}

// apply performs a single action. Actions were checked by prepare.
func (n *Normalizer) apply(value string, action config.TransformationAction, row map[string]string) string {
	switch action.Type {

	// =========================================================================
	// WHITESPACE AND CASE
	// =========================================================================

	case "trim":
		return strings.TrimSpace(value)

	case "trim_left":
		// Value, when set, lists the characters to strip.
		// Example: "00123" with trim_left "0" becomes "123"
		if action.Value != "" {
			return strings.TrimLeft(value, action.Value)
		}
		return strings.TrimLeft(value, " \t\r\n")

	case "trim_right":
		if action.Value != "" {
			return strings.TrimRight(value, action.Value)
		}
		return strings.TrimRight(value, " \t\r\n")

	case "uppercase":
		return strings.ToUpper(value)

	case "lowercase":
		return strings.ToLower(value)

	case "remove_spaces":
		// Example: "GB82 WEST 1234 5698 7654 32" becomes "GB82WEST12345698765432"
		return strings.Join(strings.Fields(value), "")

	case "remove_chars":
		// Example: "DE89-3704-0044" with remove_chars "-" becomes "DE8937040044"
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune(action.Value, r) {
				return -1
			}
			return r
		}, value)

	case "extract_alphanumeric":
		// Keeps ASCII letters and digits only.
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				return r
			}
			return -1
		}, value)

	// =========================================================================
	// COMPOSITION
	// =========================================================================

	case "prepend_string":
		return action.Value + value

	case "append_string":
		return value + action.Value

	case "pad_zeros_to_length":
		// Example: "532013000" with length 10 becomes "0532013000"
		length, _ := strconv.Atoi(action.Value)
		return padLeft(value, length, '0')

	case "replace":
		if action.Find == "" {
			return value
		}
		return strings.ReplaceAll(value, action.Find, action.Value)

	case "regex_replace":
		return n.patterns[action.Find].ReplaceAllString(value, action.Value)

	// =========================================================================
	// LOOKUPS AND FALLBACKS
	// =========================================================================

	case "lookup":
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement
		}
		return value

	case "lookup_with_default":
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement
		}
		return action.Value

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value
		}
		return value

	case "if_empty_use_field":
		// Value names the column to copy from.
		if strings.TrimSpace(value) == "" {
			if other, exists := row[action.Value]; exists {
				return other
			}
		}
		return value
	}

	return value
}

// padLeft pads a string with a character on the left to reach the target length.
func padLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}
