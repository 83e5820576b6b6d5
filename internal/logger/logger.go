// =============================================================================
// ibankit - Logging
// =============================================================================
//
// This module builds the structured logger shared by every command. Records
// go to stderr and, when a log file is configured, are appended to that file
// as well.
//
// =============================================================================

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ParseLevel maps a configuration level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// New creates a text logger writing to w at the given level.
func New(level slog.Level, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Open creates the application logger.
//
// PARAMETERS:
//   - level: The configured level name ("debug", "info", "warn", "error").
//   - logFile: Optional file the log is appended to. Empty logs to stderr only.
//   - verbose: Forces debug level, as the -v flag does.
//
// RETURNS:
//   - The logger.
//   - A close function for the log file. It is safe to call when no file is open.
//   - An error if the level is unknown or the file cannot be opened.
func Open(level, logFile string, verbose bool) (*slog.Logger, func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	if logFile == "" {
		return New(lvl, os.Stderr), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return New(lvl, io.MultiWriter(os.Stderr, file)), file.Close, nil
}
