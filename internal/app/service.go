// Package service ties the store, the pipeline runner, the importer and the
// report builders together and implements the dependencies of the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	runqueue "github.com/okian/piste/internal/adapters/mq/queue"
	"github.com/okian/piste/internal/adapters/mq/worker"
	"github.com/okian/piste/internal/domain/dedupe"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/types"
	"github.com/okian/piste/internal/importer"
	"github.com/okian/piste/internal/pipeline"
	"github.com/okian/piste/internal/reports"
	"github.com/okian/piste/pkg/logger"
	"github.com/okian/piste/pkg/metrics"
)

// Store is the data store behind the service.
type Store interface {
	pipeline.Store
	importer.Store
}

// Service implements the API dependencies for the scoring pipeline.
type Service struct {
	mu sync.RWMutex

	store    Store
	runner   *pipeline.Runner
	importer *importer.Importer
	reports  *reports.Reports
	deduper  dedupe.Deduper
	queue    runqueue.Queue
	pool     *worker.Pool

	runs  map[string]*types.Run
	order []string

	workerCount  int
	queueSize    int
	dedupeSize   int
	historySize  int
	runnerOpts   []pipeline.Option
	importerOpts []importer.Option

	started bool
	logger  logger.Logger
}

// New constructs a Service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		runs:        map[string]*types.Run{},
		workerCount: 1,
		queueSize:   64,
		dedupeSize:  1024,
		historySize: 256,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components and starts the run workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.runner = pipeline.NewRunner(s.store, s.runnerOpts...)
	s.importer = importer.New(s.store, s.importerOpts...)
	s.reports = reports.New(s.store)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = runqueue.NewInMemoryQueue(runqueue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains queued runs and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	pool := s.pool
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping service...")
	if err := pool.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop workers: %w", err)
	}
	s.logger.Info(ctx, "service stopped")
	return nil
}

// Submit queues a run of stage for year. A run of the same stage and year
// that is still queued or running is rejected with ErrRunInFlight.
func (s *Service) Submit(ctx context.Context, stage model.Stage, year int, newOnly bool) (types.Run, error) {
	if !stage.Valid() {
		return types.Run{}, fmt.Errorf("%w: %q", pipeline.ErrUnknownStage, stage)
	}
	if year <= 0 && stage != model.StageCompetitions {
		return types.Run{}, fmt.Errorf("%w: %d", pipeline.ErrInvalidYear, year)
	}

	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return types.Run{}, ErrNotStarted
	}

	req := model.RunRequest{
		RunID:     uuid.NewString(),
		Stage:     stage,
		Year:      year,
		NewOnly:   newOnly,
		Submitted: time.Now().UTC(),
	}
	if s.deduper.SeenAndRecord(ctx, req.DedupeKey()) {
		return types.Run{}, fmt.Errorf("%w: %s", ErrRunInFlight, req.DedupeKey())
	}

	run := &types.Run{
		ID:        req.RunID,
		Stage:     string(stage),
		Year:      year,
		NewOnly:   newOnly,
		State:     types.RunQueued,
		Submitted: req.Submitted,
	}
	s.track(run)

	if !s.queue.Enqueue(ctx, req) {
		s.deduper.Unrecord(ctx, req.DedupeKey())
		cause := runqueue.ErrFull
		if s.queue.IsClosed() {
			cause = runqueue.ErrClosed
		}
		s.update(run.ID, func(r *types.Run) {
			r.State = types.RunRejected
			r.Error = cause.Error()
		})
		return s.snapshot(run.ID), cause
	}
	s.logger.Info(ctx, "run queued",
		logger.String("run", run.ID),
		logger.String("stage", run.Stage),
		logger.Int("year", year),
	)
	return s.snapshot(run.ID), nil
}

// Execute runs a queued request. It implements worker.Executor.
func (s *Service) Execute(ctx context.Context, req runqueue.Request) error {
	defer s.deduper.Unrecord(ctx, req.DedupeKey())

	started := time.Now().UTC()
	s.update(req.RunID, func(r *types.Run) {
		r.State = types.RunRunning
		r.Started = &started
	})

	rep, err := s.runner.Run(ctx, req)
	finished := time.Now().UTC()
	s.update(req.RunID, func(r *types.Run) {
		r.Finished = &finished
		if rep != nil {
			r.Steps = steps(rep)
		}
		if err != nil {
			r.State = types.RunFailed
			r.Error = err.Error()
			return
		}
		r.State = types.RunDone
	})
	return err
}

// Run returns the status of a submitted run.
func (s *Service) Run(_ context.Context, id string) (types.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	if !ok {
		return types.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return copyRun(r), nil
}

// Import stores rows of kind.
func (s *Service) Import(ctx context.Context, kind importer.Kind, rows []model.Row) (*importer.Result, error) {
	return s.importer.Import(ctx, kind, rows)
}

// DeleteAthlete removes an athlete and its piste results.
func (s *Service) DeleteAthlete(ctx context.Context, id string) (int, error) {
	return s.importer.DeleteAthlete(ctx, id)
}

// TalentCards returns the talent card summary of year.
func (s *Service) TalentCards(ctx context.Context, year int) (*reports.TalentCardSummary, error) {
	return s.reports.TalentCards(ctx, year)
}

// Selections lists the flagged competition results of year.
func (s *Service) Selections(ctx context.Context, year int, flag string) (*reports.SelectionList, error) {
	return s.reports.Selections(ctx, year, flag)
}

// Compare relates an athlete's results to a big competition.
func (s *Service) Compare(ctx context.Context, q reports.CompareQuery) ([]reports.Comparison, error) {
	return s.reports.Compare(ctx, q)
}

// Export returns the rows of an export kind.
func (s *Service) Export(ctx context.Context, kind string, year int) (*reports.Table, error) {
	return s.reports.Export(ctx, kind, year)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.queue == nil {
		return stats
	}

	queueLen := s.queue.Len(context.Background())
	states := map[types.RunState]int{}
	for _, r := range s.runs {
		states[r.State]++
	}
	stats["queueLength"] = queueLen
	stats["inFlight"] = s.deduper.Size()
	stats["runs"] = states
	metrics.UpdateQueueSize(queueLen)
	return stats
}

// track registers a run and evicts the oldest finished runs beyond the history size.
func (s *Service) track(run *types.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	s.order = append(s.order, run.ID)
	if len(s.order) <= s.historySize {
		return
	}
	kept := s.order[:0]
	excess := len(s.order) - s.historySize
	for _, id := range s.order {
		if excess > 0 && s.runs[id].State.Terminal() {
			delete(s.runs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

func (s *Service) update(id string, fn func(*types.Run)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runs[id]; ok {
		fn(r)
	}
}

func (s *Service) snapshot(id string) types.Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.runs[id]; ok {
		return copyRun(r)
	}
	return types.Run{ID: id}
}

func copyRun(r *types.Run) types.Run {
	out := *r
	out.Steps = append([]types.Step(nil), r.Steps...)
	return out
}

func steps(rep *pipeline.Report) []types.Step {
	out := make([]types.Step, 0, len(rep.Steps))
	for _, st := range rep.Steps {
		step := types.Step{
			Stage:     string(st.Stage),
			Processed: st.Processed,
			Written:   st.Written,
			Skipped:   st.Skipped,
		}
		for _, f := range st.Failures {
			step.Failures = append(step.Failures, types.Failure{Key: f.Key, Error: f.Error})
		}
		out = append(out, step)
	}
	return out
}
