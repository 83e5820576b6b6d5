package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/ibankit/internal/config"
)

func action(typ, value string) config.TransformationAction {
	return config.TransformationAction{Type: typ, Value: value}
}

func TestNormalizer_Actions(t *testing.T) {
	tests := []struct {
		name   string
		action config.TransformationAction
		in     string
		want   string
	}{
		{"trim", action("trim", ""), "  DE89 ", "DE89"},
		{"trim left chars", action("trim_left", "0"), "00123", "123"},
		{"trim right", action("trim_right", ""), "ab \t", "ab"},
		{"uppercase", action("uppercase", ""), "gb82west", "GB82WEST"},
		{"lowercase", action("lowercase", ""), "ABC", "abc"},
		{"remove spaces", action("remove_spaces", ""), "GB82 WEST 1234\t5698", "GB82WEST12345698"},
		{"remove chars", action("remove_chars", "-."), "DE89-3704.0044", "DE8937040044"},
		{"extract alphanumeric", action("extract_alphanumeric", ""), "NO93 8601-1117_947", "NO9386011117947"},
		{"prepend", action("prepend_string", "DE"), "89", "DE89"},
		{"append", action("append_string", "XXX"), "COBADEFF", "COBADEFFXXX"},
		{"pad zeros", action("pad_zeros_to_length", "10"), "532013000", "0532013000"},
		{"pad zeros long", action("pad_zeros_to_length", "3"), "12345", "12345"},
		{"replace", config.TransformationAction{Type: "replace", Find: "O", Value: "0"}, "DE89O37", "DE89037"},
		{"replace empty find", config.TransformationAction{Type: "replace", Value: "x"}, "abc", "abc"},
		{"regex", config.TransformationAction{Type: "regex_replace", Find: `[^A-Z0-9]+`, Value: ""}, "DE89/3704 0044", "DE8937040044"},
		{"lookup hit", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"Commerzbank": "COBADEFFXXX"}}, "Commerzbank", "COBADEFFXXX"},
		{"lookup miss", config.TransformationAction{Type: "lookup", LookupTable: map[string]string{"a": "b"}}, "c", "c"},
		{"lookup default", config.TransformationAction{Type: "lookup_with_default", Value: "UNKNOWN", LookupTable: map[string]string{"a": "b"}}, "c", "UNKNOWN"},
		{"empty default", action("if_empty_use_default", "N/A"), " ", "N/A"},
		{"not empty", action("if_empty_use_default", "N/A"), "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNormalizer([]config.TransformationRule{{Field: "F", Actions: []config.TransformationAction{tt.action}}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Normalize("F", tt.in, nil))
			assert.Equal(t, tt.in, n.Normalize("Other", tt.in, nil))
		})
	}
}

func TestNormalizer_RowChain(t *testing.T) {
	n, err := NewNormalizer([]config.TransformationRule{
		{Field: "IBAN", Actions: []config.TransformationAction{
			action("remove_spaces", ""),
			action("uppercase", ""),
			action("if_empty_use_field", "Legacy IBAN"),
		}},
		{Field: "Missing", Actions: []config.TransformationAction{action("uppercase", "")}},
	})
	require.NoError(t, err)

	row := map[string]string{"IBAN": " gb82 west 1234 5698 7654 32 ", "Legacy IBAN": "x"}
	n.NormalizeRow(row)
	assert.Equal(t, "GB82WEST12345698765432", row["IBAN"])
	assert.NotContains(t, row, "Missing")

	row = map[string]string{"IBAN": "", "Legacy IBAN": "NO9386011117947"}
	n.NormalizeRow(row)
	assert.Equal(t, "NO9386011117947", row["IBAN"])
}

func TestNewNormalizer_Errors(t *testing.T) {
	tests := map[string]config.TransformationAction{
		"unknown type": action("title_case", ""),
		"bad length":   action("pad_zeros_to_length", "ten"),
		"zero length":  action("pad_zeros_to_length", "0"),
		"bad regex":    {Type: "regex_replace", Find: "["},
		"empty regex":  {Type: "regex_replace"},
	}
	for name, a := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewNormalizer([]config.TransformationRule{{Field: "IBAN", Actions: []config.TransformationAction{a}}})
			assert.Error(t, err)
		})
	}
}
