package pipeline

import (
	"context"
	"fmt"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/reference"
)

// competitions evaluates competition results against the selection
// thresholds. With newOnly, only rows without a timestamp are evaluated.
func (r *Runner) competitions(ctx context.Context, step *Step, newOnly bool, tables *reference.Tables) error {
	var filters model.Row
	if newOnly {
		filters = model.Row{"timestamp": nil}
	}
	rows, err := r.store.FetchAll(ctx, model.TableCompResults, filters)
	if err != nil {
		return fmt.Errorf("read competition results: %w", err)
	}

	now := r.now()
	for _, row := range rows {
		res := model.CompetitionResultFromRow(row)
		step.Processed++

		comp, found := tables.Competition(res.Competition)
		ev := r.eval.Evaluate(res, comp, found, tables, now)
		if err := r.store.Upsert(ctx, model.TableCompResults, resultKey(res), ev.Row()); err != nil {
			r.warn(ctx, step, fmt.Sprintf("%s/%s/%s", res.NameKey(), res.Competition, res.Discipline), err)
			continue
		}
		step.Written++
	}
	return nil
}

// resultKey prefers the row id and falls back to the natural key.
func resultKey(res model.CompetitionResult) model.Row {
	if res.ID != "" {
		return model.Row{"id": res.ID}
	}
	return res.Key()
}
