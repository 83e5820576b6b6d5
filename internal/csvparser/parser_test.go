package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/ibankit/internal/config"
)

func TestParseReader_SingleHeader(t *testing.T) {
	input := "Ref,IBAN,BIC\n" +
		"A1, DE89370400440532013000 ,DEUTDEFF\n" +
		",,\n" +
		"A2,GB82WEST12345698765432\n"

	table, err := ParseReader(strings.NewReader(input), "batch.csv", config.InputSettings{
		Delimiter: ",", HeaderRows: 1, DataStartRow: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Ref", "IBAN", "BIC"}, table.Headers)
	require.Equal(t, 2, table.RowCount())
	assert.Equal(t, 3, table.ColumnCount())
	assert.Equal(t, "DE89370400440532013000", table.Rows[0]["IBAN"])
	assert.Equal(t, "", table.Rows[1]["BIC"])
	assert.Equal(t, []int{2, 4}, table.RowNumbers)
	assert.Equal(t, "batch.csv", table.SourceFile)
}

func TestParseReader_MultiRowHeaderAndBOM(t *testing.T) {
	input := "\xEF\xBB\xBFBeneficiary;;Beneficiary\n" +
		"Name;;IBAN\n" +
		"ACME;x;NO9386011117947\n"

	table, err := ParseReader(strings.NewReader(input), "x", config.InputSettings{
		Delimiter: "semicolon", HeaderRows: 2, DataStartRow: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Beneficiary Name", "Column_2", "Beneficiary IBAN"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "NO9386011117947", table.Rows[0]["Beneficiary IBAN"])
	assert.Equal(t, []int{3}, table.RowNumbers)
}

func TestParseReader_Errors(t *testing.T) {
	_, err := ParseReader(strings.NewReader(""), "x", config.InputSettings{HeaderRows: 1, DataStartRow: 2})
	assert.Error(t, err)

	_, err = ParseReader(strings.NewReader("a\n"), "x", config.InputSettings{HeaderRows: 2, DataStartRow: 3})
	assert.Error(t, err)
}

func TestReadRecords_Tab(t *testing.T) {
	rows, err := ReadRecords(strings.NewReader("Data element\tAndorra\tAustria\nBBAN length\t20\t16\nshort\n"), "tab")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"BBAN length", "20", "16"}, rows[1])
	assert.Equal(t, []string{"short"}, rows[2])
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.tsv")
	require.NoError(t, os.WriteFile(path, []byte("IBAN\nDE89370400440532013000\n"), 0o644))

	table, err := Parse(path, config.InputSettings{Delimiter: "\\t", HeaderRows: 1, DataStartRow: 2})
	require.NoError(t, err)
	assert.Equal(t, path, table.SourceFile)
	assert.Equal(t, "DE89370400440532013000", table.Rows[0]["IBAN"])

	_, err = Parse(filepath.Join(t.TempDir(), "missing.csv"), config.InputSettings{HeaderRows: 1})
	assert.Error(t, err)
}

func TestBuildTable_DataStartAfterGap(t *testing.T) {
	rows := [][]string{
		{"IBAN"},
		{"ignored note"},
		{"NO9386011117947"},
	}

	table, err := BuildTable(rows, "sheet", config.InputSettings{HeaderRows: 1, DataStartRow: 3})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "NO9386011117947", table.Rows[0]["IBAN"])
	assert.Equal(t, []int{3}, table.RowNumbers)
}
