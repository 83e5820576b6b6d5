// =============================================================================
// ibankit - Process Command
// =============================================================================
//
// This file defines the 'process' command, which validates every batch file
// in the input directory and writes one report per file.
//
// COMMAND USAGE:
//   ibankit process [flags]
//
// FLAGS:
//   --file                       : Process a single file instead of the input directory
//   --clean-archives-older-than  : Remove archived files older than this age first
//
// PROCESSING PIPELINE:
//   1. Load the main configuration and the source profiles
//   2. Discover input files (.csv, .tsv, .txt, .xlsx, .xlsm)
//   3. For each file (concurrently):
//      a. Match it to a source profile
//      b. Read the table and normalize the values
//      c. Validate every IBAN and BIC
//      d. Write the XML and/or XLSX reports
//      e. Archive the input and the reports
//   4. Write the summary log and, if needed, the error log
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ibankit/internal/config"
	"github.com/ginjaninja78/ibankit/internal/metrics"
	"github.com/ginjaninja78/ibankit/internal/processor"
	"github.com/ginjaninja78/ibankit/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processFilePath processes one file instead of the whole input directory.
var processFilePath string

// archiveMaxAge removes archived files older than this before processing.
var archiveMaxAge time.Duration

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Validate the IBANs and BICs in batch files",
	Long: `The process command scans the input directory for CSV and XLSX files,
matches each to a source profile, and validates the IBAN and BIC columns.

Files are processed concurrently. Each file is handled independently, and a
failure in one file does not affect the others.

On success:
  - The validation report is placed in the output directory
  - A copy of the report goes to the output archive
  - The input file is moved to the input archive

On error:
  - The failure is recorded in the error log
  - The input file remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return runProcess(ctx)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&processFilePath,
		"file",
		"",
		"Path to a single file to process",
	)

	processCmd.Flags().DurationVar(
		&archiveMaxAge,
		"clean-archives-older-than",
		0,
		"Remove archived files older than this age before processing (e.g. 720h)",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the batch pipeline.
func runProcess(ctx context.Context) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	mainConfig, err := loadConfig()
	if err != nil {
		return err
	}

	log, closeLog, err := openLogger(mainConfig)
	if err != nil {
		return err
	}
	defer closeLog()

	sources, err := config.LoadSourceConfigs(mainConfig.SourcesDir)
	if err != nil {
		return fmt.Errorf("failed to load source configs: %w", err)
	}

	fmt.Println("=== ibankit batch validation ===")
	fmt.Printf("Loaded %d source profile(s)\n", len(sources))

	proc := processor.New(mainConfig, sources,
		processor.WithLogger(log),
		processor.WithMetrics(metrics.New(prometheus.NewRegistry())),
	)

	// =========================================================================
	// STEP 2: HOUSEKEEPING
	// =========================================================================

	if err := proc.Files().EnsureDirectories(); err != nil {
		return err
	}

	if archiveMaxAge > 0 {
		for _, dir := range []string{mainConfig.InputArchiveDir, mainConfig.OutputArchiveDir} {
			removed, err := utils.CleanOldArchives(dir, archiveMaxAge)
			if err != nil {
				return fmt.Errorf("failed to clean %s: %w", dir, err)
			}
			log.Info("cleaned archive", "dir", dir, "removed", removed)
		}
	}

	// =========================================================================
	// STEP 3: PROCESS FILES
	// =========================================================================

	var results []processor.Result
	if processFilePath != "" {
		results = []processor.Result{proc.ProcessFile(ctx, processFilePath)}
	} else {
		results, err = proc.Run(ctx)
		if err != nil {
			return fmt.Errorf("processing stopped: %w", err)
		}
	}

	if len(results) == 0 {
		fmt.Println("No input files found in the input directory.")
		return nil
	}

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Success {
			fmt.Printf("  ✓ %s: %d record(s), %d invalid\n",
				name, result.Report.Summary.Total, result.Report.Summary.Invalid)
			for _, report := range result.Reports {
				fmt.Printf("      -> %s\n", report)
			}
		} else {
			fmt.Printf("  ✗ %s: %v\n", name, result.Error)
		}
	}

	// =========================================================================
	// STEP 4: WRITE LOGS AND PRINT SUMMARY
	// =========================================================================

	summary := processor.Summarize(results, startTime, time.Now())

	summaryPath, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to write summary log: %w", err)
	}

	errorLogPath, err := utils.WriteErrorLog(processor.ErrorLogEntries(results), mainConfig.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}

	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Failed:          %d\n", summary.FailedFiles)
	fmt.Printf("Records:         %d (%d invalid, %d warning(s))\n",
		summary.TotalRecords, summary.InvalidRecords, summary.Warnings)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))
	fmt.Printf("Summary log:     %s\n", summaryPath)
	if errorLogPath != "" {
		fmt.Printf("Error log:       %s\n", errorLogPath)
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d file(s) failed", summary.FailedFiles)
	}

	return nil
}
