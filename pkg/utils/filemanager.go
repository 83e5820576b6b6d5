// =============================================================================
// ibankit - File Manager Utility
// =============================================================================
//
// This module provides the file handling used by batch validation:
//   - Input discovery by extension
//   - Archival of processed inputs and generated reports
//   - Report file naming
//   - Error and run summary logs
//   - Archive retention
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to input_archive once their reports are written
//   - Reports are copied to output_archive for long-term storage
//   - Failed files remain in the input directory for the next run
//   - A name already present in an archive gets a timestamp suffix
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles the directories of a batch run.
type FileManager struct {
	InputDir         string
	OutputDir        string
	InputArchiveDir  string
	OutputArchiveDir string

	// UseDateSubdirs files archives under year/month/day subdirectories.
	// Example: input_archive/2026/10/18/payees.csv
	UseDateSubdirs bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		now:              time.Now,
	}
}

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files of the input directory whose
// extension is one of extensions, compared case-insensitively.
//
// PARAMETERS:
//   - extensions: Extensions with the leading dot, e.g. ".csv", ".xlsx".
//                 None lists every file.
//
// RETURNS:
//   - The file paths sorted by name.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles(extensions ...string) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if len(extensions) > 0 && !slices.ContainsFunc(extensions, func(e string) bool {
			return strings.ToLower(e) == ext
		}) {
			continue
		}

		files = append(files, filepath.Join(fm.InputDir, entry.Name()))
	}

	// ReadDir already sorts by name.
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the input archive directory and
// returns its new path.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath, err := fm.archivePath(fm.InputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies a report to the output archive directory. The
// report stays in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	archivePath, err := fm.archivePath(fm.OutputArchiveDir, filePath)
	if err != nil {
		return "", err
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// archivePath builds the destination for filePath inside archiveDir and
// creates its directory.
func (fm *FileManager) archivePath(archiveDir, filePath string) (string, error) {
	now := fm.clock()

	dir := archiveDir
	if fm.UseDateSubdirs {
		dir = filepath.Join(archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(filePath)
	path := filepath.Join(dir, name)
	if FileExists(path) {
		ext := filepath.Ext(name)
		path = filepath.Join(dir, fmt.Sprintf("%s_%s%s",
			strings.TrimSuffix(name, ext), now.Format("20060102_150405.000000"), ext))
	}

	return path, nil
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// =============================================================================
// REPORT FILE NAMING
// =============================================================================

// GenerateOutputFileName builds a report file name.
//
// PARAMETERS:
//   - format: The name format. Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//             plus one {key} per entry of params. params may override
//             the built-in placeholders, e.g. to reuse a run ID as {uuid}.
//   - params: Additional placeholder values, e.g. {"source": "payroll"}.
//   - extension: Appended unless the name already ends with it, e.g. ".xml".
//
// EXAMPLE:
//   format: "{source}_{timestamp}_{uuid}"
//   params: {"source": "payroll"}
//   output: "payroll_20261018_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.xml"
func GenerateOutputFileName(format string, params map[string]string, extension string) string {
	now := time.Now()

	values := map[string]string{
		"uuid":      uuid.New().String(),
		"timestamp": now.Format("20060102_150405"),
		"date":      now.Format("20060102"),
		"time":      now.Format("150405"),
	}
	for key, value := range params {
		values[key] = sanitizeFileName(value)
	}

	replacements := make([]string, 0, 2*len(values))
	for key, value := range values {
		replacements = append(replacements, "{"+key+"}", value)
	}

	result := strings.NewReplacer(replacements...).Replace(format)

	if extension != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(extension)) {
		result += extension
	}

	return result
}

// sanitizeFileName replaces path separators and other characters that are
// unsafe in file names.
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one invalid record or failed file in the error log.
type ErrorLogEntry struct {
	Timestamp time.Time
	FileName  string
	RowNumber int
	Field     string
	Rule      string
	Value     string
	Message   string
}

// WriteErrorLog writes error entries to a timestamped log file in outputDir.
//
// RETURNS:
//   - The path to the error log file, or "" when there are no entries.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := time.Now()
	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "ibankit - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"), len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n", i+1)
		fmt.Fprintf(writer, "  Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(writer, "  File:       %s\n", entry.FileName)
		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number: %d\n", entry.RowNumber)
		}
		if entry.Field != "" {
			fmt.Fprintf(writer, "  Field:      %s\n", entry.Field)
		}
		if entry.Value != "" {
			fmt.Fprintf(writer, "  Value:      %s\n", entry.Value)
		}
		if entry.Rule != "" {
			fmt.Fprintf(writer, "  Rule:       %s\n", entry.Rule)
		}
		fmt.Fprintf(writer, "  Message:    %s\n\n", entry.Message)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes one batch run.
type ProcessingSummary struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalRecords    int
	ValidRecords    int
	InvalidRecords  int
	Warnings        int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes a file whose reports were written.
type ProcessedFileInfo struct {
	InputFile   string
	Reports     []string
	Records     int
	Invalid     int
	ProcessTime time.Duration
}

// FailedFileInfo describes a file that could not be processed.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a run summary to a timestamped file in outputDir and
// returns its path.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("processing_summary_%s.txt", time.Now().Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "ibankit - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:      %s\n"+
		"  End Time:        %s\n"+
		"  Duration:        %s\n\n"+
		"Statistics:\n"+
		"  Total Files:     %d\n"+
		"  Successful:      %d\n"+
		"  Failed:          %d\n"+
		"  Total Records:   %d\n"+
		"  Valid Records:   %d\n"+
		"  Invalid Records: %d\n"+
		"  Warnings:        %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRecords,
		summary.ValidRecords,
		summary.InvalidRecords,
		summary.Warnings)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			for _, report := range pf.Reports {
				fmt.Fprintf(writer, "  Report:       %s\n", report)
			}
			fmt.Fprintf(writer, "  Records:      %d (%d invalid)\n", pf.Records, pf.Invalid)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CleanOldArchives removes archived files last modified more than maxAge ago.
//
// RETURNS:
//   - The number of files removed.
//   - An error if the directory walk or a removal fails.
func CleanOldArchives(archiveDir string, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	err := filepath.WalkDir(archiveDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}

		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to clean archives: %w", err)
	}

	return removed, nil
}
