package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/piste/internal/smoke"
	"github.com/okian/piste/pkg/logger"
)

// Default configuration constants.
const (
	defaultAthletes     = 500
	defaultBatchSize    = 100
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 500 * time.Millisecond
	defaultTestTimeout  = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		athletes  = flag.Int("athletes", defaultAthletes, "Number of athletes to generate")
		year      = flag.Int("year", time.Now().Year(), "Piste year of the generated results")
		batchSize = flag.Int("batch", defaultBatchSize, "Rows per upload")
		workers   = flag.Int("workers", runtime.NumCPU(), "Concurrent uploads")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		poll      = flag.Duration("poll", defaultPollInterval, "Run status poll interval")
		outputDir = flag.String("output", "", "Directory to keep the generated CSV files in")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &smoke.Config{
		BaseURL:      *baseURL,
		NumAthletes:  *athletes,
		Year:         *year,
		BatchSize:    *batchSize,
		Workers:      max(1, *workers),
		Timeout:      *timeout,
		PollInterval: *poll,
		OutputDir:    *outputDir,
		Verbose:      *verbose,
	}
	if _, err := smoke.Run(ctx, config); err != nil {
		logger.Get().Error(ctx, "smoke test failed", logger.Error(err))
		os.Exit(1)
	}
}
