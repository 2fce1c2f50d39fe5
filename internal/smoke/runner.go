package smoke

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/pkg/logger"
)

const directoryPermission = 0750

// Run executes the complete smoke test against config.BaseURL.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()
	log.Info(ctx, "starting piste smoke test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("athletes", config.NumAthletes),
		logger.Int("year", config.Year),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := client.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the cohort
	athletes := generateAthletes(config.NumAthletes, config.Year)
	aCols, aRows := athleteRows(athletes)
	pCols, pRows := pisteRows(athletes, config.Year)
	stats.AthletesGenerated = len(aRows)
	stats.ResultsGenerated = len(pRows)
	if err := saveTables(ctx, config, map[string]table{
		"athletes":     {aCols, aRows},
		"pisteresults": {pCols, pRows},
	}); err != nil {
		log.Warn(ctx, "failed to save generated tables", logger.Error(err))
	}

	// Step 3: Upload athletes before their results
	if err := uploadBatches(ctx, client, config, "athletes", aCols, batches(aRows, config.BatchSize), stats); err != nil {
		return stats, err
	}
	if err := uploadBatches(ctx, client, config, "pisteresults", pCols, batches(pRows, config.BatchSize), stats); err != nil {
		return stats, err
	}

	// Step 4: Run the full pipeline and wait for it
	run, err := client.submitRun(ctx, "full", config.Year)
	if err != nil {
		return stats, fmt.Errorf("run submission failed: %w", err)
	}
	if run, err = waitForRun(ctx, client, config, run.ID); err != nil {
		return stats, err
	}
	for _, st := range run.Steps {
		stats.RowsFailed += len(st.Failures)
		log.Info(ctx, "stage finished",
			logger.String("stage", st.Stage),
			logger.Int("processed", st.Processed),
			logger.Int("written", st.Written),
			logger.Int("skipped", st.Skipped),
			logger.Int("failed", len(st.Failures)))
	}

	// Step 5: Verify the talent cards
	cards, err := client.talentCards(ctx, config.Year)
	if err != nil {
		return stats, fmt.Errorf("talent card retrieval failed: %w", err)
	}
	if err := verifyTalentCards(athletes, cards, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	log.Info(ctx, "smoke test completed successfully")
	return stats, nil
}

// waitForRun polls the run until it reaches a terminal state.
func waitForRun(ctx context.Context, client *HTTPClient, config *Config, id string) (*RunStatus, error) {
	ticker := time.NewTicker(config.PollInterval)
	defer ticker.Stop()
	for {
		run, err := client.run(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("run status: %w", err)
		}
		switch run.State {
		case "done":
			return run, nil
		case "failed", "rejected":
			return run, fmt.Errorf("run %s %s: %s", id, run.State, run.Error)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for run %s: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

type table struct {
	cols []string
	rows []model.Row
}

// saveTables keeps the generated CSV files for a later look.
func saveTables(ctx context.Context, config *Config, tables map[string]table) error {
	if config.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(config.OutputDir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for name, t := range tables {
		data, err := encodeCSV(t.cols, t.rows)
		if err != nil {
			return err
		}
		path := filepath.Join(config.OutputDir, name+".csv")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Get().Info(ctx, "table saved", logger.String("path", path))
	}
	return nil
}

// displayFinalStats logs the final statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var rowsPerSecond float64
	if stats.Duration > 0 {
		rowsPerSecond = float64(stats.AthletesStored+stats.ResultsStored) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("athletesGenerated", stats.AthletesGenerated),
		logger.Int("athletesStored", stats.AthletesStored),
		logger.Int("resultsGenerated", stats.ResultsGenerated),
		logger.Int("resultsStored", stats.ResultsStored),
		logger.Int("rowsSkipped", stats.RowsSkipped),
		logger.Int("uploadsFailed", stats.UploadsFailed),
		logger.Int("rowsFailed", stats.RowsFailed),
		logger.Int("talentCards", stats.TalentCards),
		logger.Duration("duration", stats.Duration),
		logger.Float64("rowsPerSecond", rowsPerSecond))
}
