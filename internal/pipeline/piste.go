package pipeline

import (
	"context"
	"fmt"

	"github.com/okian/piste/internal/domain/aggregate"
	"github.com/okian/piste/internal/domain/category"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/reference"
)

// piste rescores every piste result of year and rewrites the synthetic total
// and average records of each athlete.
func (r *Runner) piste(ctx context.Context, step *Step, year int, tables *reference.Tables) error {
	ath, err := r.loadAthletes(ctx)
	if err != nil {
		return err
	}
	rows, err := r.store.FetchAll(ctx, model.TablePisteResults, model.Row{"pisteyear": year})
	if err != nil {
		return fmt.Errorf("read piste results: %w", err)
	}

	var (
		order  []string
		scored = map[string][]model.TestResult{}
		base   = map[string]model.TestResult{}
	)
	for _, row := range rows {
		res := model.TestResultFromRow(row)
		if aggregate.Synthetic(res.Discipline) {
			continue
		}
		step.Processed++
		key := fmt.Sprintf("%s/%s/%d", res.AthleteID, res.Discipline, year)

		a, ok := ath.resolve(res.AthleteID, res.FirstName, res.LastName)
		if !ok {
			r.warn(ctx, step, key, ErrUnknownAthlete)
			continue
		}
		res = r.score(res, a, year, tables)
		// Rows imported by name alone are rewritten in place under their id,
		// so the resolved athlete_id lands on the same record.
		target, fields := res.Key(), res.Row()
		if id := row.String("id"); id != "" {
			target, fields = model.Row{"id": id}, res.Key().Merge(fields)
		}
		if err := r.store.Upsert(ctx, model.TablePisteResults, target, fields); err != nil {
			r.warn(ctx, step, key, err)
			continue
		}
		step.Written++

		if _, seen := scored[res.AthleteID]; !seen {
			order = append(order, res.AthleteID)
			base[res.AthleteID] = model.TestResult{
				AthleteID: res.AthleteID,
				FirstName: a.FirstName,
				LastName:  a.LastName,
				Year:      year,
				Category:  res.Category,
				Sex:       res.Sex,
			}
		}
		scored[res.AthleteID] = append(scored[res.AthleteID], res)
	}

	for _, id := range order {
		summary := r.calc.PisteTotals(scored[id])
		for _, syn := range aggregate.SyntheticResults(base[id], summary, tables.Scores) {
			if err := r.store.Upsert(ctx, model.TablePisteResults, syn.Key(), syn.Row()); err != nil {
				r.warn(ctx, step, fmt.Sprintf("%s/%s/%d", id, syn.Discipline, year), err)
				continue
			}
			step.Written++
		}
	}
	return nil
}

// score fills the category, sex and points of a result. Excluded raw
// measurements keep their value and score zero.
func (r *Runner) score(res model.TestResult, a model.Athlete, year int, tables *reference.Tables) model.TestResult {
	res.AthleteID = a.ID
	res.FirstName = a.FirstName
	res.LastName = a.LastName
	res.Sex = natkey.Sex(a.Sex)
	res.Category = category.Unknown
	if a.Vintage != 0 {
		if cat, ok := tables.Category(a.Vintage, year); ok {
			res.Category = cat
		}
	}

	var points float64
	if !r.calc.Excluded(res.Discipline) {
		points = tables.Scores.Lookup(res.Discipline, res.Result, res.Category, res.Sex).Points()
	}
	res.Points = &points
	return res
}
