package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rowmatrix/core"
)

var (
	rowsFlag     = flag.Int("rows", 4, "Number of rows in the array")
	colsFlag     = flag.Int("cols", 5, "Number of columns in the array")
	backendFlag  = flag.String("backend", "heap", "Row allocator: heap | calloc")
	maxBytesFlag = flag.Uint64("max-bytes", 0, "Cap on live bytes the allocator may hand out (0 = no cap)")
	denseFlag    = flag.Bool("dense", false, "Also show the values as one contiguous block for contrast")
	verboseFlag  = flag.Bool("v", false, "Log every allocation and release to stderr")
)

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func main() {
	flag.Parse()

	logger, err := newLogger(*verboseFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	backend, err := core.ParseBackend(*backendFlag)
	if err != nil {
		logger.Fatal("invalid backend", zap.Error(err))
	}
	cfg := core.DefaultConfig()
	cfg.Rows = *rowsFlag
	cfg.Cols = *colsFlag
	cfg.Backend = backend
	cfg.MaxBytes = *maxBytesFlag
	cfg.Dense = *denseFlag

	if _, err := core.Run(cfg, os.Stdout, logger); err != nil {
		if errors.Is(err, core.ErrAllocation) {
			logger.Fatal("allocation failed", zap.Error(err))
		}
		logger.Fatal("arraymem", zap.Error(err))
	}
}
