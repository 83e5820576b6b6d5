// =============================================================================
// ibankit - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ibankit)
//   ├── validateCmd  (ibankit validate)
//   ├── generateCmd  (ibankit generate)
//   ├── processCmd   (ibankit process)
//   ├── registryCmd  (ibankit registry verify|list)
//   ├── serveCmd     (ibankit serve)
//   ├── schemaCmd    (ibankit schema)
//   └── versionCmd   (ibankit version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose). Commands
//   that need configuration call loadConfig, which falls back to built-in
//   defaults when the config file does not exist.
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/ibankit/internal/config"
	"github.com/ginjaninja78/ibankit/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "ibankit",
	Short: "ibankit - IBAN and BIC validation, generation and batch checking",
	Long: `ibankit validates, decomposes and generates International Bank Account
Numbers (IBAN) and Business Identifier Codes (BIC).

Key Features:
  - IBAN validation with MOD97-10 check digits and per-country BBAN layouts
  - BIC validation and decomposition
  - Random and builder-based IBAN generation
  - Batch validation of CSV and XLSX files with XML and XLSX reports
  - Verification of the built-in country table against the SWIFT registry
  - HTTP API with Prometheus metrics

Example Usage:
  ibankit validate DE89370400440532013000
  ibankit generate --country GB --count 5
  ibankit process --config ./config.yaml
  ibankit serve`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig reads --config, or the defaults when the file is absent.
func loadConfig() (*config.MainConfig, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	return cfg, nil
}

// openLogger builds the application logger from the config.
//
// RETURNS:
//   - The logger.
//   - A close function for the log file; always safe to call.
//   - An error if the level is unknown or the log file cannot be opened.
func openLogger(cfg *config.MainConfig) (*slog.Logger, func() error, error) {
	log, closeFn, err := logger.Open(cfg.LogLevel, cfg.LogFile, verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return log, closeFn, nil
}
