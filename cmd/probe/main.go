package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/okian/segview/internal/config"
	"github.com/okian/segview/internal/probe"
)

// Default configuration constants.
const (
	defaultPredictions = 100
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultRunTimeout  = 5 * time.Minute
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes one check and returns the process exit code, so deferred
// cleanup finishes before main exits.
func run(args []string, stderr io.Writer) int {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return exitFail
	}

	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		apiBase     = fs.String("api", cfg.APIBase(), "Backend API base")
		predictions = fs.Int("n", defaultPredictions, "Number of sample predictions")
		workers     = fs.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent prediction workers")
		timeout     = fs.Duration("timeout", cfg.RequestTimeout(), "Per-request timeout")
		outputFile  = fs.String("output", "", "Save samples as JSON to this file")
		logFile     = fs.String("log", "", "Also write logs to this file")
		jsonLogs    = fs.Bool("json", false, "Log as JSON")
		verbose     = fs.Bool("verbose", false, "Log every prediction")
		help        = fs.Bool("help", false, "Show help")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *help {
		probe.ShowHelp()
		return exitOK
	}

	format := "text"
	if *jsonLogs {
		format = "json"
	}
	closeLog, err := probe.SetupLogging(*logFile, format, *verbose)
	if err != nil {
		fmt.Fprintf(stderr, "failed to setup logging: %v\n", err)
		return exitFail
	}
	defer func() { _ = closeLog() }()

	if _, err := probe.Run(ctx, &probe.Config{
		APIBase:     *apiBase,
		Predictions: *predictions,
		Workers:     *workers,
		Timeout:     *timeout,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}); err != nil {
		fmt.Fprintf(stderr, "check failed: %v\n", err)
		return exitFail
	}
	return exitOK
}
