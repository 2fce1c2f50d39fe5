package pipeline

import (
	"context"
	"fmt"

	"github.com/okian/piste/internal/domain/aggregate"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/reference"
)

// refAthlete collects one athlete's competition starts of the year.
type refAthlete struct {
	athlete    model.Athlete
	sex        string
	age        int
	candidates []aggregate.Candidate
	samples    []aggregate.QualitySample
}

// refPoints writes the reference percentage of every start at a competition
// of year, then replaces each athlete's top-three record and fills in the
// performance delta and the dive quality.
func (r *Runner) refPoints(ctx context.Context, step *Step, year int, tables *reference.Tables) error {
	ath, err := r.loadAthletes(ctx)
	if err != nil {
		return err
	}
	inYear := map[natkey.Key]bool{}
	for _, c := range tables.CompetitionsIn(year) {
		inYear[natkey.Of(c.Name)] = true
	}
	rows, err := r.store.FetchAll(ctx, model.TableCompResults, nil)
	if err != nil {
		return fmt.Errorf("read competition results: %w", err)
	}
	priorRows, err := r.store.FetchAll(ctx, model.TableRefCompResults, nil)
	if err != nil {
		return fmt.Errorf("read reference results: %w", err)
	}

	column := model.RefPercentColumn(year)
	var order []natkey.Key
	group := map[natkey.Key]*refAthlete{}

	for _, row := range rows {
		res := model.CompetitionResultFromRow(row)
		if !inYear[natkey.Of(res.Competition)] {
			continue
		}
		step.Processed++
		key := fmt.Sprintf("%s/%s/%s", res.NameKey(), res.Competition, res.Discipline)

		a, ok := ath.resolve(res.AthleteID, res.FirstName, res.LastName)
		if !ok {
			r.warn(ctx, step, key, ErrUnknownAthlete)
			continue
		}
		age, ok := a.AgeIn(year)
		if !ok || age < r.refMinAge || age > r.refMaxAge {
			step.Skipped++
			continue
		}
		sex := res.Sex
		if sex == "" {
			sex = a.Sex
		}

		ref, hasRef := tables.RefPoints(res.Discipline, sex, age)
		pct := aggregate.ReferencePercent(res.Points, ref, hasRef)
		if err := r.store.Upsert(ctx, model.TableCompResults, resultKey(res), model.Row{column: model.OptionalFloat(pct)}); err != nil {
			r.warn(ctx, step, key, err)
			continue
		}
		step.Written++

		nk := a.NameKey()
		g, seen := group[nk]
		if !seen {
			g = &refAthlete{athlete: a, sex: sex, age: age}
			group[nk] = g
			order = append(order, nk)
		}
		avg := res.Stored.FloatPtr("AveragePoints")
		if pct != nil {
			g.candidates = append(g.candidates, aggregate.Candidate{
				Competition:   res.Competition,
				Discipline:    res.Discipline,
				Points:        res.Points,
				RefPercent:    *pct,
				AveragePoints: avg,
			})
		}
		if res.Points != nil {
			q, hasQ := tables.Quality(res.Discipline, sex, age)
			g.samples = append(g.samples, aggregate.QualitySample{AveragePoints: avg, Quality: q, HasQuality: hasQ})
		}
	}

	prior := r.priorRefAverages(priorRows, year)
	for _, nk := range order {
		g := group[nk]
		if len(g.candidates) == 0 {
			continue
		}
		base := model.RefCompResult{
			AthleteID: g.athlete.ID,
			FirstName: g.athlete.FirstName,
			LastName:  g.athlete.LastName,
			Sex:       natkey.Sex(g.sex),
			Age:       g.age,
			Year:      year,
		}
		quality := func(discipline string) (float64, bool) { return tables.Quality(discipline, g.sex, g.age) }
		rc := aggregate.TopThree(base, g.candidates, quality)
		rc.Performance = aggregate.PerformanceDelta(rc.RefAverage, prior[nk])
		rc.Quality = aggregate.QualityDeviation(g.samples)

		if err := r.store.Replace(ctx, model.TableRefCompResults, rc.Key(), rc.Row()); err != nil {
			r.warn(ctx, step, fmt.Sprintf("%s/%d", nk, year), err)
			continue
		}
		step.Written++
	}
	return nil
}

// priorRefAverages collects the stored reference averages of the years
// between the first reference year and year, exclusive, by athlete name.
func (r *Runner) priorRefAverages(rows []model.Row, year int) map[natkey.Key][]float64 {
	out := map[natkey.Key][]float64{}
	for _, row := range rows {
		rc := model.RefCompResultFromRow(row)
		if rc.Year < r.firstRefYear || rc.Year >= year || rc.RefAverage == nil {
			continue
		}
		nk := rc.NameKey()
		out[nk] = append(out[nk], *rc.RefAverage)
	}
	return out
}
