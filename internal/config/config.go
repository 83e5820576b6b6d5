// =============================================================================
// ibankit - Configuration Module
// =============================================================================
//
// This module loads the main application configuration and the per-source
// input profiles used by the batch processor.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, reports, HTTP server
//   2. Source Profiles (sources/*.yaml): column mapping and normalization
//      rules for one family of input files
//
// A file that matches no source profile is processed with the main config's
// default_source profile.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for batch files to validate.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated validation reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input files once they are processed.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir keeps a copy of every generated report.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// SourcesDir holds the source profile YAML files.
	// Default: "./sources"
	SourcesDir string `yaml:"sources_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path to the application log file. Empty logs to stderr only.
	LogFile string `yaml:"log_file"`

	// LogLevel is one of "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// ReportNameFormat names report files. Placeholders:
	//   {uuid}      - a random UUID
	//   {timestamp} - current time (YYYYMMDD_HHMMSS)
	//   {source}    - source profile code
	//   {input}     - input file name without extension
	// The extension is appended per report format.
	// Default: "{input}_{timestamp}_{uuid}"
	ReportNameFormat string `yaml:"report_name_format"`

	// ReportFormats lists the report files written per input: "xml", "xlsx".
	// Default: ["xml"]
	ReportFormats []string `yaml:"report_formats"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// FailOnInvalid marks a file as failed, and leaves it in the input
	// directory, when any of its records is invalid.
	FailOnInvalid bool `yaml:"fail_on_invalid"`

	// DefaultSource is used for input files no source profile claims.
	DefaultSource SourceConfig `yaml:"default_source"`

	// =========================================================================
	// REGISTRY AND SERVER SETTINGS
	// =========================================================================

	Registry RegistryConfig `yaml:"registry"`
	Server   ServerConfig   `yaml:"server"`
}

// RegistryConfig points at an offline copy of the SWIFT IBAN registry.
type RegistryConfig struct {
	// File is the tab-separated registry export used by "registry verify".
	File string `yaml:"file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// MetricsPath exposes Prometheus metrics.
	// Default: "/metrics"
	MetricsPath string `yaml:"metrics_path"`
}

// =============================================================================
// SOURCE PROFILE STRUCTURE
// =============================================================================

// SourceConfig describes one family of batch files: how to read them, which
// columns hold the identifiers, and how to normalize values first.
type SourceConfig struct {
	// SourceName is the human-readable name used in logs and reports.
	SourceName string `yaml:"source_name"`

	// SourceCode is a short code used in report names.
	SourceCode string `yaml:"source_code"`

	// FileMatchingPatterns are glob patterns matched against the file name.
	// Examples: "payees_*.csv", "*_suppliers.xlsx"
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// InputSettings controls how the file is read.
	InputSettings InputSettings `yaml:"input_settings"`

	// Columns maps record fields to input headers.
	Columns ColumnMapping `yaml:"columns"`

	// NormalizationRules are applied to the raw values before validation.
	NormalizationRules []TransformationRule `yaml:"normalization_rules"`
}

// InputSettings contains settings for reading delimited and XLSX input.
type InputSettings struct {
	// Delimiter separates fields in delimited files: ",", ";", "|", "tab".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows; multi-row headers are merged.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row where records begin.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`

	// Sheet is the worksheet read from XLSX input. Empty reads the first sheet.
	Sheet string `yaml:"sheet"`
}

// IBAN input forms accepted by ColumnMapping.IBANFormat.
const (
	IBANFormatAny        = "any"
	IBANFormatElectronic = "electronic"
	IBANFormatPrint      = "print"
)

// ColumnMapping names the input headers holding each record field.
type ColumnMapping struct {
	// ID is an optional caller reference copied into the report.
	ID string `yaml:"id"`

	// IBAN is the header of the IBAN column. Empty skips IBAN validation.
	// Default: "IBAN"
	IBAN string `yaml:"iban"`

	// BIC is the header of the BIC column. Empty skips BIC validation.
	BIC string `yaml:"bic"`

	// IBANFormat selects the accepted IBAN form:
	//   "electronic" - no spaces
	//   "print"      - four-character groups separated by single spaces
	//   "any"        - spaces are removed before validation
	// Default: "any"
	IBANFormat string `yaml:"iban_format"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines the actions applied to one field.
type TransformationRule struct {
	// Field is the input header the rule applies to.
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single normalization step.
type TransformationAction struct {
	// Type is one of:
	//   "trim", "trim_left", "trim_right", "uppercase", "lowercase",
	//   "remove_spaces", "remove_chars", "extract_alphanumeric",
	//   "prepend_string", "append_string", "pad_zeros_to_length",
	//   "replace", "regex_replace", "lookup", "lookup_with_default",
	//   "if_empty_use_default", "if_empty_use_field"
	Type string `yaml:"type"`

	// Value is the action parameter: the string to add, the target length,
	// the replacement, or the characters to remove.
	Value string `yaml:"value"`

	// Find is the substring or pattern for "replace" and "regex_replace".
	Find string `yaml:"find,omitempty"`

	// LookupTable maps input values to output values for "lookup".
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no config file exists.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg MainConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&cfg)

	if err := validateMainConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configPath, falling back to Default when the file does
// not exist. Any other error is returned.
func LoadOrDefault(configPath string) (*MainConfig, error) {
	cfg, err := LoadMainConfig(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(cfg *MainConfig) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.OutputArchiveDir == "" {
		cfg.OutputArchiveDir = "./output_archive"
	}
	if cfg.SourcesDir == "" {
		cfg.SourcesDir = "./sources"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ReportNameFormat == "" {
		cfg.ReportNameFormat = "{input}_{timestamp}_{uuid}"
	}
	if len(cfg.ReportFormats) == 0 {
		cfg.ReportFormats = []string{"xml"}
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = "/metrics"
	}
	if cfg.DefaultSource.SourceCode == "" {
		cfg.DefaultSource.SourceCode = "default"
	}
	if cfg.DefaultSource.SourceName == "" {
		cfg.DefaultSource.SourceName = "Default"
	}
	applySourceConfigDefaults(&cfg.DefaultSource)
}

// validateMainConfig rejects values the processor cannot act on.
func validateMainConfig(cfg *MainConfig) error {
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	if cfg.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", cfg.MaxConcurrency)
	}

	for _, format := range cfg.ReportFormats {
		if !slices.Contains([]string{"xml", "xlsx"}, format) {
			return fmt.Errorf("unknown report format %q", format)
		}
	}

	return validateSourceConfig(&cfg.DefaultSource)
}

// LoadSourceConfigs loads all source profiles from a directory. A missing
// directory yields no profiles.
//
// RETURNS:
//   - The profiles sorted by source code, so matching is deterministic.
//   - An error if any file cannot be parsed or is invalid.
func LoadSourceConfigs(sourcesDir string) ([]*SourceConfig, error) {
	files, err := filepath.Glob(filepath.Join(sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list source files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list source files: %w", err)
	}
	files = append(files, ymlFiles...)

	sources := make([]*SourceConfig, 0, len(files))
	for _, file := range files {
		src, err := loadSourceConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		// Use the file name when no code is specified.
		if src.SourceCode == "" {
			src.SourceCode = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		}

		sources = append(sources, src)
	}

	slices.SortFunc(sources, func(a, b *SourceConfig) int {
		return strings.Compare(a.SourceCode, b.SourceCode)
	})

	return sources, nil
}

// loadSourceConfig loads a single source profile.
func loadSourceConfig(filePath string) (*SourceConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var src SourceConfig
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	applySourceConfigDefaults(&src)

	if err := validateSourceConfig(&src); err != nil {
		return nil, err
	}

	return &src, nil
}

// applySourceConfigDefaults sets default values for a source profile.
func applySourceConfigDefaults(src *SourceConfig) {
	if src.InputSettings.Delimiter == "" {
		src.InputSettings.Delimiter = ","
	}
	if src.InputSettings.HeaderRows == 0 {
		src.InputSettings.HeaderRows = 1
	}
	if src.InputSettings.DataStartRow == 0 {
		src.InputSettings.DataStartRow = src.InputSettings.HeaderRows + 1
	}
	if src.Columns.IBAN == "" && src.Columns.BIC == "" {
		src.Columns.IBAN = "IBAN"
	}
	if src.Columns.IBANFormat == "" {
		src.Columns.IBANFormat = IBANFormatAny
	}
	if src.SourceName == "" {
		src.SourceName = src.SourceCode
	}
}

func validateSourceConfig(src *SourceConfig) error {
	if src.InputSettings.DataStartRow <= src.InputSettings.HeaderRows {
		return fmt.Errorf("source %q: data_start_row %d must come after %d header row(s)",
			src.SourceCode, src.InputSettings.DataStartRow, src.InputSettings.HeaderRows)
	}

	switch src.Columns.IBANFormat {
	case IBANFormatAny, IBANFormatElectronic, IBANFormatPrint:
	default:
		return fmt.Errorf("source %q: unknown iban_format %q", src.SourceCode, src.Columns.IBANFormat)
	}

	for _, pattern := range src.FileMatchingPatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("source %q: bad file pattern %q: %w", src.SourceCode, pattern, err)
		}
	}

	return nil
}

// FindSource returns the first profile whose patterns match the file's base
// name, or fallback when none does.
func FindSource(filePath string, sources []*SourceConfig, fallback *SourceConfig) *SourceConfig {
	name := filepath.Base(filePath)
	for _, src := range sources {
		for _, pattern := range src.FileMatchingPatterns {
			if ok, _ := filepath.Match(pattern, name); ok {
				return src
			}
		}
	}
	return fallback
}
