package probe

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/segview/pkg/logger"
)

// File permission for the optional log file.
const logFilePermission = 0600

// SetupLogging initializes the global logger, writing to stdout and, when
// logFile is set, to that file as well.
func SetupLogging(logFile, format string, verbose bool) (func() error, error) {
	var (
		w       io.Writer = os.Stdout
		closeFn           = func() error { return nil }
	)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, f)
		closeFn = f.Close
	}
	if err := logger.InitWithWriter(w, format); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closeFn, nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	os.Stdout.WriteString(`Segmentation API Probe
======================

Checks a running prediction API: health, a batch of concurrent
predictions, cluster statistics and model info.

Usage:
  go run ./cmd/probe [options]

Options:
  -api string
        Backend API base (default from SEGVIEW_* config, "http://localhost:8000/api/v1")
  -n int
        Number of sample predictions (default 100)
  -workers int
        Concurrent prediction workers (default CPU cores * 2)
  -timeout duration
        Per-request timeout (default from request_timeout_ms)
  -output string
        Save samples as JSON to this file
  -log string
        Also write logs to this file
  -json
        Log as JSON
  -verbose
        Log every prediction
  -help
        Show this help message

Examples:
  go run ./cmd/probe -n 500 -workers 16
  go run ./cmd/probe -api http://models.internal:8000/api/v1 -output samples.json
`)
}
