// Package pipeline recomputes the derived tables of a year: piste points and
// totals, competition selection flags, the top-three reference aggregate and
// the SOC composite with its talent card.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/piste/internal/domain/aggregate"
	"github.com/okian/piste/internal/domain/category"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/reference"
	"github.com/okian/piste/internal/domain/scoring"
	"github.com/okian/piste/internal/domain/selection"
	"github.com/okian/piste/pkg/logger"
	"github.com/okian/piste/pkg/metrics"
)

// Store is the part of the data store the runner needs.
type Store interface {
	reference.Source
	Upsert(ctx context.Context, table string, key, fields model.Row) error
	Replace(ctx context.Context, table string, key, fields model.Row) error
}

// Runner executes stages against a store. Reference tables are reloaded at
// the start of every run.
type Runner struct {
	store       Store
	calc        *aggregate.Calculator
	eval        *selection.Evaluator
	scoringOpts []scoring.Option

	refMinAge    int
	refMaxAge    int
	firstRefYear int

	now    func() time.Time
	logger logger.Logger
}

// NewRunner creates a Runner.
func NewRunner(store Store, opts ...Option) *Runner {
	r := &Runner{
		store:        store,
		calc:         aggregate.NewCalculator(),
		eval:         selection.NewEvaluator(),
		refMinAge:    9,
		refMaxAge:    19,
		firstRefYear: 2024,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("pipeline")
	}
	return r
}

// Run executes req. Per-row failures are collected in the report; the
// returned error is reserved for failures that stop the run, such as an
// unreadable reference table.
func (r *Runner) Run(ctx context.Context, req model.RunRequest) (*Report, error) {
	if !req.Stage.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, req.Stage)
	}
	if req.Year <= 0 && req.Stage != model.StageCompetitions {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, req.Year)
	}

	rep := &Report{Stage: req.Stage, Year: req.Year, Started: r.now()}
	tables, err := reference.Load(ctx, r.store, r.scoringOpts...)
	if err != nil {
		metrics.RecordRun(string(req.Stage), "error", 0)
		return nil, err
	}
	// Overlapping bands resolve to the first match; flag them for the operator.
	for _, is := range category.Validate(tables.Bands) {
		if len(is.Matches) > 1 {
			r.logger.Warn(ctx, "age category bands overlap", logger.Int("age", is.Age), logger.Any("bands", is.Matches))
		}
	}

	stages := []model.Stage{req.Stage}
	if req.Stage == model.StageFull {
		stages = []model.Stage{model.StagePiste, model.StageCompetitions, model.StageRefPoints, model.StageSoc}
	}
	for _, stage := range stages {
		step, err := r.runStage(ctx, stage, req, tables)
		rep.Steps = append(rep.Steps, step)
		if err != nil {
			rep.Finished = r.now()
			metrics.RecordRun(string(req.Stage), "error", rep.Finished.Sub(rep.Started).Seconds())
			return rep, err
		}
	}
	rep.Finished = r.now()

	status := "ok"
	if rep.Failed() > 0 {
		status = "partial"
	}
	metrics.RecordRun(string(req.Stage), status, rep.Finished.Sub(rep.Started).Seconds())
	return rep, nil
}

func (r *Runner) runStage(ctx context.Context, stage model.Stage, req model.RunRequest, tables *reference.Tables) (Step, error) {
	r.logger.Info(ctx, "stage started", logger.String("stage", string(stage)), logger.Int("year", req.Year))
	start := time.Now()

	step := Step{Stage: stage}
	var err error
	switch stage {
	case model.StagePiste:
		err = r.piste(ctx, &step, req.Year, tables)
	case model.StageCompetitions:
		err = r.competitions(ctx, &step, req.NewOnly, tables)
	case model.StageRefPoints:
		err = r.refPoints(ctx, &step, req.Year, tables)
	case model.StageSoc:
		err = r.soc(ctx, &step, req.Year, tables)
	}
	metrics.RecordRows(string(stage), step.Processed, len(step.Failures))

	if err != nil {
		r.logger.Error(ctx, "stage aborted", logger.String("stage", string(stage)), logger.Error(err))
		return step, fmt.Errorf("stage %s: %w", stage, err)
	}
	r.logger.Info(ctx, "stage finished",
		logger.String("stage", string(stage)),
		logger.Int("year", req.Year),
		logger.Int("processed", step.Processed),
		logger.Int("written", step.Written),
		logger.Int("skipped", step.Skipped),
		logger.Int("failed", len(step.Failures)),
		logger.Duration("took", time.Since(start)),
	)
	return step, nil
}

// warn logs a row failure and records it on the step.
func (r *Runner) warn(ctx context.Context, step *Step, key string, err error) {
	r.logger.Warn(ctx, "row failed", logger.String("stage", string(step.Stage)), logger.String("key", key), logger.Error(err))
	step.fail(key, err)
}

// athletes indexes the athlete table by id and by name.
type athletes struct {
	all    []model.Athlete
	byID   map[string]model.Athlete
	byName natkey.Index[model.Athlete]
}

func (r *Runner) loadAthletes(ctx context.Context) (*athletes, error) {
	rows, err := r.store.FetchAll(ctx, model.TableAthletes, nil)
	if err != nil {
		return nil, fmt.Errorf("read athletes: %w", err)
	}
	a := &athletes{byID: make(map[string]model.Athlete, len(rows))}
	for _, row := range rows {
		ath := model.AthleteFromRow(row)
		a.all = append(a.all, ath)
		if ath.ID != "" {
			a.byID[ath.ID] = ath
		}
	}
	a.byName = natkey.NewIndex(a.all, model.Athlete.NameKey)
	return a, nil
}

// resolve finds an athlete by id, falling back to the name key.
func (a *athletes) resolve(id, first, last string) (model.Athlete, bool) {
	if id != "" {
		if ath, ok := a.byID[id]; ok {
			return ath, true
		}
	}
	return a.byName.First(natkey.Name(first, last))
}
