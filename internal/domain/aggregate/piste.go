// Package aggregate derives per-athlete totals, reference percentages, the
// top-three competition aggregate, the year-over-year delta and dive quality.
package aggregate

import (
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/numeric"
	"github.com/okian/piste/internal/domain/scoring"
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithExcludedDisciplines replaces the raw-measurement disciplines kept out of totals.
func WithExcludedDisciplines(disciplines ...string) Option {
	return func(c *Calculator) {
		c.excluded = map[string]struct{}{}
		for _, d := range disciplines {
			c.excluded[natkey.Fold(d)] = struct{}{}
		}
	}
}

// Calculator computes piste totals.
type Calculator struct {
	excluded map[string]struct{}
}

// NewCalculator creates a Calculator excluding body measurements by default.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{}
	WithExcludedDisciplines(model.DisciplineBodySize, model.DisciplineUpperBodySize, model.DisciplineBodyWeight)(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Excluded reports whether a discipline never scores and never aggregates.
func (c *Calculator) Excluded(discipline string) bool {
	_, ok := c.excluded[natkey.Fold(discipline)]
	return ok
}

// Synthetic reports whether a discipline is one of the derived aggregates.
func Synthetic(discipline string) bool {
	return natkey.Equal(discipline, model.DisciplineTotal) || natkey.Equal(discipline, model.DisciplineAverage)
}

// PisteSummary is the total and average of an athlete's single points in a year.
type PisteSummary struct {
	Count   int
	Sum     float64
	Average *float64
}

// PisteTotals sums the points of every scored single discipline. Excluded and
// synthetic disciplines and zero or missing points are left out, so feeding
// back the written aggregates does not change the result.
func (c *Calculator) PisteTotals(results []model.TestResult) PisteSummary {
	var (
		s      PisteSummary
		points []float64
	)
	for _, r := range results {
		if c.Excluded(r.Discipline) || Synthetic(r.Discipline) {
			continue
		}
		if r.Points == nil || *r.Points == 0 {
			continue
		}
		points = append(points, *r.Points)
		s.Sum += *r.Points
	}
	s.Count = len(points)
	s.Sum = numeric.Round(s.Sum, 2)
	if avg, ok := numeric.Mean(points); ok {
		avg = numeric.Round(avg, 2)
		s.Average = &avg
	}
	return s
}

// SyntheticResults builds the total and average rows written back for a
// summary. The average's raw value is scored again against its own table.
func SyntheticResults(base model.TestResult, s PisteSummary, scores scoring.Lookuper) []model.TestResult {
	total := base
	total.Discipline = model.DisciplineTotal
	total.Result = numeric.Format(s.Sum)
	total.Points = numeric.Float(s.Sum)

	avg := base
	avg.Discipline = model.DisciplineAverage
	if s.Average == nil {
		avg.Result = ""
		avg.Points = nil
	} else {
		avg.Result = numeric.Format(*s.Average)
		avg.Points = numeric.Float(scores.LookupAny(model.DisciplineAverage, *s.Average).Points())
	}
	return []model.TestResult{total, avg}
}
