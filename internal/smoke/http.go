package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/pkg/logger"
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends a request and decodes a JSON reply into out when out is not nil.
// Any status other than want is an error carrying the reply body.
func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body []byte, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *HTTPClient) health(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/healthz", "", nil, http.StatusOK, nil)
	return err
}

func (c *HTTPClient) upload(ctx context.Context, kind string, csv []byte) (*ImportResult, error) {
	var res ImportResult
	if err := c.do(ctx, http.MethodPost, "/import/"+kind+"?format=csv", "text/csv", csv, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) submitRun(ctx context.Context, stage string, year int) (*RunStatus, error) {
	body, err := json.Marshal(map[string]any{"stage": stage, "year": year})
	if err != nil {
		return nil, err
	}
	var run RunStatus
	if err := c.do(ctx, http.MethodPost, "/runs", "application/json", body, http.StatusAccepted, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *HTTPClient) run(ctx context.Context, id string) (*RunStatus, error) {
	var run RunStatus
	if err := c.do(ctx, http.MethodGet, "/runs/"+id, "", nil, http.StatusOK, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (c *HTTPClient) talentCards(ctx context.Context, year int) (*TalentCards, error) {
	var tc TalentCards
	if err := c.do(ctx, http.MethodGet, "/talentcards?year="+strconv.Itoa(year), "", nil, http.StatusOK, &tc); err != nil {
		return nil, err
	}
	return &tc, nil
}

// uploadBatches posts the batches concurrently with config.Workers workers.
// A failed upload is counted and logged; the remaining batches still go out.
func uploadBatches(ctx context.Context, client *HTTPClient, config *Config, kind string, cols []string, parts [][]model.Row, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "uploading", logger.String("kind", kind), logger.Int("batches", len(parts)), logger.Int("workers", config.Workers))

	var (
		stored  int64
		skipped int64
		failed  int64
		wg      sync.WaitGroup
	)
	work := make(chan []model.Row, config.Workers*2)
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for part := range work {
				data, err := encodeCSV(cols, part)
				if err == nil {
					var res *ImportResult
					if res, err = client.upload(ctx, kind, data); err == nil {
						atomic.AddInt64(&stored, int64(res.Stored))
						atomic.AddInt64(&skipped, int64(len(res.Skipped)))
						if config.Verbose {
							for _, s := range res.Skipped {
								log.Debug(ctx, "row skipped", logger.String("kind", kind), logger.String("key", s.Key), logger.String("reason", s.Reason))
							}
						}
						continue
					}
				}
				atomic.AddInt64(&failed, 1)
				log.Error(ctx, "upload failed", logger.String("kind", kind), logger.Error(err))
			}
		}()
	}

	go func() {
		defer close(work)
		for _, part := range parts {
			select {
			case <-ctx.Done():
				return
			case work <- part:
			}
		}
	}()
	wg.Wait()

	switch kind {
	case "athletes":
		stats.AthletesStored += int(stored)
	default:
		stats.ResultsStored += int(stored)
	}
	stats.RowsSkipped += int(skipped)
	stats.UploadsFailed += int(failed)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("upload of %s interrupted: %w", kind, err)
	}
	return nil
}
