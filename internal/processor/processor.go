// =============================================================================
// ibankit - Batch Processor
// =============================================================================
//
// This module runs the batch validation pipeline. Every input file goes
// through the same steps; files are processed concurrently.
//
// PROCESSING PIPELINE (per file):
//   1. Select the source profile by file name
//   2. Read the file (delimited or XLSX) into a table
//   3. Normalize column values with the profile's rules
//   4. Build records from the mapped columns
//   5. Validate IBANs and BICs
//   6. Write the configured reports (XML, XLSX)
//   7. Archive the reports and, on success, the input file
//
// FAILURE HANDLING:
//   A file fails when it cannot be read, when a mapped column is missing, or
//   when fail_on_invalid is set and a record is invalid. Failed files stay in
//   the input directory. Reports already written are kept.
//
// =============================================================================

package processor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/ibankit/internal/config"
	"github.com/ginjaninja78/ibankit/internal/csvparser"
	"github.com/ginjaninja78/ibankit/internal/logger"
	"github.com/ginjaninja78/ibankit/internal/metrics"
	"github.com/ginjaninja78/ibankit/internal/types"
	"github.com/ginjaninja78/ibankit/internal/validation"
	"github.com/ginjaninja78/ibankit/internal/xlsxparser"
	"github.com/ginjaninja78/ibankit/internal/xmlwriter"
	"github.com/ginjaninja78/ibankit/pkg/utils"
)

// InputExtensions are the file extensions picked up from the input directory.
var InputExtensions = []string{".csv", ".tsv", ".txt", ".xlsx", ".xlsm"}

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the input file as discovered.
	FilePath string

	// Source is the code of the profile that handled the file.
	Source string

	// Report is the validation report. It is nil when the file could not be read.
	Report *types.Report

	// Reports are the paths of the written report files.
	Reports []string

	// ArchivePath is where the input file was moved. Empty when it stayed put.
	ArchivePath string

	// Success is false when Error is set.
	Success bool
	Error   error

	Duration time.Duration
}

// =============================================================================
// PROCESSOR STRUCTURE
// =============================================================================

// Processor validates batch files. It is safe for concurrent use.
type Processor struct {
	cfg     *config.MainConfig
	sources []*config.SourceConfig
	files   *utils.FileManager
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. The default discards output.
func WithLogger(log *slog.Logger) Option {
	return func(p *Processor) { p.log = log }
}

// WithMetrics records validations and file outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// New creates a Processor.
//
// PARAMETERS:
//   - cfg: The main configuration; its directories are used as is.
//   - sources: Source profiles, in matching order.
func New(cfg *config.MainConfig, sources []*config.SourceConfig, opts ...Option) *Processor {
	p := &Processor{
		cfg:     cfg,
		sources: sources,
		files:   utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir),
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Files exposes the processor's file manager.
func (p *Processor) Files() *utils.FileManager {
	return p.files
}

// =============================================================================
// RUN
// =============================================================================

// Run processes every input file with at most MaxConcurrency files in flight.
//
// RETURNS:
//   - One result per discovered file, in discovery order.
//   - An error if the directories cannot be prepared or scanned, or ctx is
//     cancelled. Per-file failures are reported in the results.
func (p *Processor) Run(ctx context.Context) ([]Result, error) {
	if err := p.files.EnsureDirectories(); err != nil {
		return nil, err
	}

	files, err := p.files.DiscoverInputFiles(InputExtensions...)
	if err != nil {
		return nil, err
	}

	p.log.Info("discovered input files", "count", len(files), "dir", p.cfg.InputDir)

	results := make([]Result, len(files))

	var g errgroup.Group
	g.SetLimit(max(p.cfg.MaxConcurrency, 1))

	for i, file := range files {
		g.Go(func() error {
			results[i] = p.ProcessFile(ctx, file)
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}

	return results, nil
}

// ProcessFile runs the pipeline for one file.
func (p *Processor) ProcessFile(ctx context.Context, filePath string) Result {
	start := time.Now()
	result := p.processFile(ctx, filePath)
	result.Duration = time.Since(start)

	status := "processed"
	if !result.Success {
		status = "failed"
		p.log.Error("file failed", "file", filePath, "source", result.Source, "error", result.Error)
	} else {
		p.log.Info("file processed", "file", filePath, "source", result.Source,
			"records", result.Report.Summary.Total,
			"invalid", result.Report.Summary.Invalid,
			"duration", result.Duration)
	}
	p.metrics.RecordFile(status, result.Duration)

	return result
}

func (p *Processor) processFile(ctx context.Context, filePath string) Result {
	result := Result{FilePath: filePath}

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 1: SELECT SOURCE PROFILE
	// =========================================================================

	source := config.FindSource(filePath, p.sources, &p.cfg.DefaultSource)
	result.Source = source.SourceCode

	log := p.log.With("file", filepath.Base(filePath), "source", source.SourceCode)
	log.Debug("processing file")

	// =========================================================================
	// STEP 2: READ INPUT
	// =========================================================================

	table, err := readTable(filePath, source.InputSettings)
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		return result
	}

	log.Debug("read input", "rows", table.RowCount(), "columns", table.ColumnCount())

	// =========================================================================
	// STEP 3: NORMALIZE
	// =========================================================================

	normalizer, err := NewNormalizer(source.NormalizationRules)
	if err != nil {
		result.Error = fmt.Errorf("invalid normalization rules: %w", err)
		return result
	}

	for _, row := range table.Rows {
		normalizer.NormalizeRow(row)
	}

	// =========================================================================
	// STEP 4: BUILD RECORDS
	// =========================================================================

	records, err := BuildRecords(table, source.Columns)
	if err != nil {
		result.Error = err
		return result
	}

	// =========================================================================
	// STEP 5: VALIDATE
	// =========================================================================

	options := validation.OptionsFor(source.Columns)
	results := validation.New(options).ValidateAll(records)
	p.recordMetrics(options, results)

	report := &types.Report{
		RunID:       uuid.NewString(),
		SourceFile:  filepath.Base(filePath),
		SourceCode:  source.SourceCode,
		GeneratedAt: time.Now(),
		Results:     results,
	}
	report.Summarize()
	result.Report = report

	for _, res := range results {
		if !res.Valid {
			log.Warn("invalid record", "row", res.Record.RowNumber, "rules", ruleNames(res.Errors()))
		}
	}

	// =========================================================================
	// STEP 6: WRITE REPORTS
	// =========================================================================

	reports, err := p.writeReports(filePath, source, report)
	result.Reports = reports
	if err != nil {
		result.Error = fmt.Errorf("failed to write report: %w", err)
		return result
	}

	// =========================================================================
	// STEP 7: ARCHIVE
	// =========================================================================
	// Archive failures are logged but do not fail the file.

	for _, path := range reports {
		if _, err := p.files.ArchiveOutputFile(path); err != nil {
			log.Warn("failed to archive report", "report", path, "error", err)
		}
	}

	if p.cfg.FailOnInvalid && report.Summary.Invalid > 0 {
		result.Error = fmt.Errorf("%d of %d record(s) are invalid", report.Summary.Invalid, report.Summary.Total)
		return result
	}

	archived, err := p.files.ArchiveInputFile(filePath)
	if err != nil {
		log.Warn("failed to archive input file", "error", err)
	} else {
		result.ArchivePath = archived
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readTable picks the reader by file extension.
func readTable(filePath string, settings config.InputSettings) (*types.Table, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		return xlsxparser.Parse(filePath, settings)
	default:
		return csvparser.Parse(filePath, settings)
	}
}

// BuildRecords extracts records from a table using the column mapping.
//
// RETURNS:
//   - One record per table row.
//   - An error naming the first mapped column missing from the headers.
func BuildRecords(table *types.Table, columns config.ColumnMapping) ([]types.Record, error) {
	for _, column := range []string{columns.ID, columns.IBAN, columns.BIC} {
		if column != "" && !slices.Contains(table.Headers, column) {
			return nil, fmt.Errorf("column %q not found in %s", column, filepath.Base(table.SourceFile))
		}
	}

	records := make([]types.Record, len(table.Rows))
	for i, row := range table.Rows {
		records[i] = types.Record{
			RowNumber: table.RowNumbers[i],
			ID:        lookup(row, columns.ID),
			IBAN:      lookup(row, columns.IBAN),
			BIC:       lookup(row, columns.BIC),
		}
	}

	return records, nil
}

func lookup(row map[string]string, column string) string {
	if column == "" {
		return ""
	}
	return row[column]
}

// writeReports writes one report per configured format and returns the
// paths written so far.
func (p *Processor) writeReports(filePath string, source *config.SourceConfig, report *types.Report) ([]string, error) {
	input := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	base := utils.GenerateOutputFileName(p.cfg.ReportNameFormat, map[string]string{
		"uuid":   report.RunID,
		"input":  input,
		"source": source.SourceCode,
	}, "")

	var written []string
	for _, format := range p.cfg.ReportFormats {
		path := filepath.Join(p.cfg.OutputDir, base+"."+format)

		switch format {
		case "xml":
			data, err := xmlwriter.Generate(report, xmlwriter.DefaultGenerateOptions())
			if err != nil {
				return written, err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return written, err
			}
		case "xlsx":
			if err := xlsxparser.WriteReport(path, report); err != nil {
				return written, err
			}
		default:
			return written, fmt.Errorf("unknown report format %q", format)
		}

		written = append(written, path)
	}

	return written, nil
}

// recordMetrics counts each checked identifier once.
func (p *Processor) recordMetrics(options validation.Options, results []types.RecordResult) {
	if p.metrics == nil {
		return
	}

	for _, res := range results {
		if options.CheckIBAN {
			p.metrics.RecordValidation("iban", firstRule(res.Findings, "iban"))
		}
		if (options.CheckBIC && res.Record.BIC != "") || options.RequireBIC {
			p.metrics.RecordValidation("bic", firstRule(res.Findings, "bic"))
		}
	}
}

// firstRule returns the rule of the first error on field, or "".
func firstRule(findings []types.Finding, field string) string {
	for _, f := range findings {
		if f.Severity == types.SeverityError && f.Field == field {
			return f.Rule
		}
	}
	return ""
}

func ruleNames(findings []types.Finding) []string {
	names := make([]string, len(findings))
	for i, f := range findings {
		names[i] = f.Rule
	}
	return names
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// Summarize aggregates results into a run summary.
func Summarize(results []Result, start, end time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	for _, res := range results {
		if res.Report != nil {
			summary.TotalRecords += res.Report.Summary.Total
			summary.ValidRecords += res.Report.Summary.Valid
			summary.InvalidRecords += res.Report.Summary.Invalid
			summary.Warnings += res.Report.Summary.Warnings
		}

		if !res.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    res.FilePath,
				ErrorMessage: res.Error.Error(),
			})
			continue
		}

		summary.SuccessfulFiles++
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   res.FilePath,
			Reports:     res.Reports,
			Records:     res.Report.Summary.Total,
			Invalid:     res.Report.Summary.Invalid,
			ProcessTime: res.Duration,
		})
	}

	return summary
}

// ErrorLogEntries lists every failed file and every record error. A file
// that failed after its report was built gets both its file-level entry and
// its record entries.
func ErrorLogEntries(results []Result) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry
	now := time.Now()

	for _, res := range results {
		name := filepath.Base(res.FilePath)

		if !res.Success && res.Error != nil {
			entries = append(entries, utils.ErrorLogEntry{
				Timestamp: now,
				FileName:  name,
				Message:   res.Error.Error(),
			})
		}
		if res.Report == nil {
			continue
		}

		for _, rec := range res.Report.Results {
			for _, f := range rec.Errors() {
				value := rec.Record.IBAN
				if f.Field == "bic" {
					value = rec.Record.BIC
				}
				entries = append(entries, utils.ErrorLogEntry{
					Timestamp: now,
					FileName:  name,
					RowNumber: rec.Record.RowNumber,
					Field:     f.Field,
					Rule:      f.Rule,
					Value:     value,
					Message:   f.Message,
				})
			}
		}
	}

	return entries
}
