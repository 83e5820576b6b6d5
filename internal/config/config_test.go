package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMainConfig_Defaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "input_dir: ./in\n")

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./in", cfg.InputDir)
	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, []string{"xml"}, cfg.ReportFormats)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "default", cfg.DefaultSource.SourceCode)
	assert.Equal(t, "IBAN", cfg.DefaultSource.Columns.IBAN)
	assert.Equal(t, IBANFormatAny, cfg.DefaultSource.Columns.IBANFormat)
	assert.Equal(t, 2, cfg.DefaultSource.InputSettings.DataStartRow)
}

func TestLoadMainConfig_Full(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
log_level: debug
max_concurrency: 2
fail_on_invalid: true
report_formats: [xml, xlsx]
server:
  addr: 127.0.0.1:9090
default_source:
  input_settings:
    delimiter: ";"
    header_rows: 2
  columns:
    id: Reference
    iban: Account
    bic: Swift
    iban_format: print
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.FailOnInvalid)
	assert.Equal(t, []string{"xml", "xlsx"}, cfg.ReportFormats)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, ";", cfg.DefaultSource.InputSettings.Delimiter)
	assert.Equal(t, 3, cfg.DefaultSource.InputSettings.DataStartRow)
	assert.Equal(t, ColumnMapping{ID: "Reference", IBAN: "Account", BIC: "Swift", IBANFormat: IBANFormatPrint}, cfg.DefaultSource.Columns)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"log level":   "log_level: loud\n",
		"concurrency": "max_concurrency: -1\n",
		"format":      "report_formats: [pdf]\n",
		"iban format": "default_source:\n  columns:\n    iban_format: spaced\n",
		"start row":   "default_source:\n  input_settings:\n    header_rows: 3\n    data_start_row: 2\n",
		"yaml":        "input_dir: [unterminated\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", content)
			_, err := LoadMainConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := writeFile(t, t.TempDir(), "config.yaml", "log_level: nope\n")
	_, err = LoadOrDefault(path)
	assert.Error(t, err)
}

func TestLoadSourceConfigs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "suppliers.yaml", `
source_name: Suppliers
file_matching_patterns: ["suppliers_*.csv", "*.xlsx"]
columns:
  iban: Supplier IBAN
  bic: Supplier BIC
normalization_rules:
  - field: Supplier IBAN
    actions:
      - type: trim
      - type: uppercase
`)
	writeFile(t, dir, "payroll.yml", `
source_code: payroll
file_matching_patterns: ["payroll_*"]
input_settings:
  delimiter: tab
`)
	writeFile(t, dir, "notes.txt", "ignored")

	sources, err := LoadSourceConfigs(dir)
	require.NoError(t, err)
	require.Len(t, sources, 2)

	assert.Equal(t, "payroll", sources[0].SourceCode)
	assert.Equal(t, "tab", sources[0].InputSettings.Delimiter)
	assert.Equal(t, "IBAN", sources[0].Columns.IBAN)

	assert.Equal(t, "suppliers", sources[1].SourceCode)
	assert.Equal(t, "Suppliers", sources[1].SourceName)
	require.Len(t, sources[1].NormalizationRules, 1)
	assert.Len(t, sources[1].NormalizationRules[0].Actions, 2)
}

func TestLoadSourceConfigs_MissingDir(t *testing.T) {
	sources, err := LoadSourceConfigs(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestLoadSourceConfigs_BadPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "file_matching_patterns: [\"[\"]\n")
	_, err := LoadSourceConfigs(dir)
	assert.Error(t, err)
}

func TestFindSource(t *testing.T) {
	suppliers := &SourceConfig{SourceCode: "suppliers", FileMatchingPatterns: []string{"suppliers_*.csv"}}
	payroll := &SourceConfig{SourceCode: "payroll", FileMatchingPatterns: []string{"payroll_*"}}
	fallback := &SourceConfig{SourceCode: "default"}
	sources := []*SourceConfig{payroll, suppliers}

	assert.Same(t, suppliers, FindSource("/data/in/suppliers_2026.csv", sources, fallback))
	assert.Same(t, payroll, FindSource("payroll_march.xlsx", sources, fallback))
	assert.Same(t, fallback, FindSource("other.csv", sources, fallback))
}
