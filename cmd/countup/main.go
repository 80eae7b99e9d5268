package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rowmatrix/counter"
)

var (
	limitFlag   = flag.Int64("limit", 1_000_000_000, "Count up to, but not including, this number")
	everyFlag   = flag.Int64("every", 100_000_000, "Print the counter whenever it is a multiple of this")
	verboseFlag = flag.Bool("v", false, "Log timing to stderr")
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

	start := time.Now()
	emitted, err := counter.Count(*limitFlag, *everyFlag, func(i int64) {
		fmt.Println(i)
	})
	if err != nil {
		logger.Fatal("countup", zap.Error(err))
	}
	logger.Debug("done",
		zap.Int64("limit", *limitFlag),
		zap.Int64("emitted", emitted),
		zap.Duration("elapsed", time.Since(start)))
}
