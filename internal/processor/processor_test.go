package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/ibankit/internal/config"
	"github.com/ginjaninja78/ibankit/internal/metrics"
	"github.com/ginjaninja78/ibankit/internal/types"
	"github.com/ginjaninja78/ibankit/pkg/utils"
)

const payeesCSV = "Ref,IBAN,BIC\n" +
	"A1,DE89370400440532013000,COBADEFFXXX\n" +
	"A2,DE00370400440532013000,\n" +
	"A3,gb82 west 1234 5698 7654 32,\n"

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.OutputArchiveDir = filepath.Join(root, "output_archive")
	cfg.ReportFormats = []string{"xml", "xlsx"}
	cfg.ReportNameFormat = "{source}_{input}_{uuid}"

	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	return cfg
}

func payeesSource() *config.SourceConfig {
	return &config.SourceConfig{
		SourceName:           "Payees",
		SourceCode:           "payees",
		FileMatchingPatterns: []string{"payees*.csv"},
		InputSettings:        config.InputSettings{Delimiter: ",", HeaderRows: 1, DataStartRow: 2},
		Columns:              config.ColumnMapping{ID: "Ref", IBAN: "IBAN", BIC: "BIC", IBANFormat: config.IBANFormatElectronic},
		NormalizationRules: []config.TransformationRule{{
			Field: "IBAN",
			Actions: []config.TransformationAction{
				{Type: "remove_spaces"},
				{Type: "uppercase"},
			},
		}},
	}
}

func writeInput(t *testing.T, cfg *config.MainConfig, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	payees := writeInput(t, cfg, "payees_oct.csv", payeesCSV)
	empty := writeInput(t, cfg, "empty.csv", "")
	writeInput(t, cfg, "readme.md", "not an input")

	m := metrics.New(prometheus.NewRegistry())
	p := New(cfg, []*config.SourceConfig{payeesSource()}, WithMetrics(m))

	results, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Discovery is sorted by name.
	failed, ok := results[0], results[1]
	assert.Equal(t, empty, failed.FilePath)
	assert.False(t, failed.Success)
	assert.Nil(t, failed.Report)
	assert.True(t, utils.FileExists(empty))

	assert.Equal(t, payees, ok.FilePath)
	require.True(t, ok.Success, "%v", ok.Error)
	assert.Equal(t, "payees", ok.Source)
	assert.Equal(t, types.Summary{Total: 3, Valid: 2, Invalid: 1}, ok.Report.Summary)
	assert.Equal(t, "A2", ok.Report.Results[1].Record.ID)
	assert.Equal(t, "invalid_check_digit", ok.Report.Results[1].Findings[0].Rule)
	assert.Equal(t, "GB82WEST12345698765432", ok.Report.Results[2].IBAN)

	require.Len(t, ok.Reports, 2)
	for _, report := range ok.Reports {
		assert.True(t, utils.FileExists(report))
		assert.True(t, strings.HasPrefix(filepath.Base(report), "payees_payees_oct_"+ok.Report.RunID))
		assert.True(t, utils.FileExists(filepath.Join(cfg.OutputArchiveDir, filepath.Base(report))))
	}
	assert.Equal(t, ".xml", filepath.Ext(ok.Reports[0]))
	assert.Equal(t, ".xlsx", filepath.Ext(ok.Reports[1]))

	assert.False(t, utils.FileExists(payees))
	assert.Equal(t, filepath.Join(cfg.InputArchiveDir, "payees_oct.csv"), ok.ArchivePath)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Validations.WithLabelValues("iban", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("iban", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Validations.WithLabelValues("bic", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationFailures.WithLabelValues("invalid_check_digit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesProcessed.WithLabelValues("processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FilesProcessed.WithLabelValues("failed")))
}

func TestProcessFile_FailOnInvalid(t *testing.T) {
	cfg := testConfig(t)
	cfg.FailOnInvalid = true
	cfg.ReportFormats = []string{"xml"}
	path := writeInput(t, cfg, "payees_nov.csv", payeesCSV)

	p := New(cfg, []*config.SourceConfig{payeesSource()})
	require.NoError(t, p.Files().EnsureDirectories())

	res := p.ProcessFile(context.Background(), path)
	assert.False(t, res.Success)
	assert.ErrorContains(t, res.Error, "1 of 3 record(s) are invalid")
	require.Len(t, res.Reports, 1)
	assert.True(t, utils.FileExists(res.Reports[0]))
	assert.True(t, utils.FileExists(path))
	assert.Empty(t, res.ArchivePath)
}

func TestProcessFile_DefaultSourceMissingColumn(t *testing.T) {
	cfg := testConfig(t)
	path := writeInput(t, cfg, "other.csv", "Account\nDE89370400440532013000\n")

	p := New(cfg, []*config.SourceConfig{payeesSource()})
	res := p.ProcessFile(context.Background(), path)

	assert.Equal(t, "default", res.Source)
	assert.False(t, res.Success)
	assert.ErrorContains(t, res.Error, `column "IBAN" not found`)
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t)
	writeInput(t, cfg, "payees_a.csv", payeesCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(cfg, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
}

func TestBuildRecords(t *testing.T) {
	table := &types.Table{
		Headers:    []string{"Ref", "IBAN"},
		Rows:       []map[string]string{{"Ref": "A1", "IBAN": "NO9386011117947"}},
		RowNumbers: []int{5},
		SourceFile: "x.csv",
	}

	records, err := BuildRecords(table, config.ColumnMapping{ID: "Ref", IBAN: "IBAN"})
	require.NoError(t, err)
	assert.Equal(t, []types.Record{{RowNumber: 5, ID: "A1", IBAN: "NO9386011117947"}}, records)

	_, err = BuildRecords(table, config.ColumnMapping{IBAN: "IBAN", BIC: "BIC"})
	assert.ErrorContains(t, err, `column "BIC" not found in x.csv`)
}

func TestSummarizeAndErrorLog(t *testing.T) {
	report := &types.Report{Results: []types.RecordResult{
		{Record: types.Record{RowNumber: 2, IBAN: "DE89370400440532013000"}, Valid: true},
		{
			Record: types.Record{RowNumber: 3, IBAN: "DE00370400440532013000", BIC: "deutdeff"},
			Findings: []types.Finding{
				{Severity: types.SeverityError, Field: "iban", Rule: "invalid_check_digit", Message: "m1"},
				{Severity: types.SeverityError, Field: "bic", Rule: "bic_invalid_characters", Message: "m2"},
			},
		},
	}}
	report.Summarize()

	results := []Result{
		{FilePath: "/in/a.csv", Success: true, Report: report, Reports: []string{"/out/a.xml"}},
		{FilePath: "/in/b.csv", Error: assert.AnError},
	}

	start := time.Now()
	summary := Summarize(results, start, start.Add(time.Second))
	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 1, summary.SuccessfulFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 2, summary.TotalRecords)
	assert.Equal(t, 1, summary.InvalidRecords)
	require.Len(t, summary.ProcessedFiles, 1)
	assert.Equal(t, []string{"/out/a.xml"}, summary.ProcessedFiles[0].Reports)

	entries := ErrorLogEntries(results)
	require.Len(t, entries, 3)
	assert.Equal(t, "DE00370400440532013000", entries[0].Value)
	assert.Equal(t, "deutdeff", entries[1].Value)
	assert.Equal(t, "bic_invalid_characters", entries[1].Rule)
	assert.Equal(t, "b.csv", entries[2].FileName)
	assert.Equal(t, assert.AnError.Error(), entries[2].Message)
}

func TestErrorLogEntries_FailureAfterReport(t *testing.T) {
	report := &types.Report{Results: []types.RecordResult{
		{
			Record: types.Record{RowNumber: 4, IBAN: "DE00370400440532013000"},
			Findings: []types.Finding{
				{Severity: types.SeverityError, Field: "iban", Rule: "invalid_check_digit", Message: "bad check digits"},
			},
		},
	}}
	report.Summarize()

	writeErr := errors.New("failed to write report: disk full")
	results := []Result{
		{FilePath: "/in/c.csv", Report: report, Error: writeErr},
	}

	entries := ErrorLogEntries(results)
	require.Len(t, entries, 2)

	assert.Equal(t, "c.csv", entries[0].FileName)
	assert.Zero(t, entries[0].RowNumber)
	assert.Equal(t, writeErr.Error(), entries[0].Message)

	assert.Equal(t, 4, entries[1].RowNumber)
	assert.Equal(t, "invalid_check_digit", entries[1].Rule)
	assert.Equal(t, "DE00370400440532013000", entries[1].Value)
}
