package aggregate

import (
	"sort"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/numeric"
)

// ReferencePercent is round(points/reference*100, 1). It is nil when points
// are missing or the reference is missing or zero.
func ReferencePercent(points *float64, reference float64, hasReference bool) *float64 {
	if points == nil || !hasReference {
		return nil
	}
	p, ok := numeric.Percent(*points, reference, 1)
	if !ok {
		return nil
	}
	return &p
}

// Candidate is a competition result eligible for the top three.
type Candidate struct {
	Competition   string
	Discipline    string
	Points        *float64
	RefPercent    float64
	AveragePoints *float64
}

// QualityFunc returns the quality benchmark of a discipline for the athlete.
type QualityFunc func(discipline string) (float64, bool)

// TopThree keeps the three highest reference percentages of one athlete and
// year and averages them. Ties keep input order. base carries identity fields.
func TopThree(base model.RefCompResult, candidates []Candidate, quality QualityFunc) model.RefCompResult {
	sorted := append([]Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RefPercent > sorted[j].RefPercent })
	if len(sorted) > 3 {
		sorted = sorted[:3]
	}

	out := base
	out.Entries = nil
	var refs, averages []float64
	for _, c := range sorted {
		ref := c.RefPercent
		out.Entries = append(out.Entries, model.RefEntry{
			Competition:   c.Competition,
			Discipline:    c.Discipline,
			Points:        c.Points,
			Reference:     &ref,
			PointsAverage: c.AveragePoints,
		})
		refs = append(refs, ref)
		if c.AveragePoints != nil {
			averages = append(averages, *c.AveragePoints)
		}
	}
	out.RefAverage = nil
	if m, ok := numeric.Mean(refs); ok {
		out.RefAverage = numeric.Float(numeric.Round(m, 1))
	}
	out.PointsAverageAverage = nil
	if m, ok := numeric.Mean(averages); ok {
		out.PointsAverageAverage = numeric.Float(numeric.Round(m, 2))
	}
	out.PointsAverageRefPct = nil
	if out.PointsAverageAverage != nil && len(out.Entries) > 0 && quality != nil {
		if q, ok := quality(out.Entries[0].Discipline); ok {
			if p, ok := numeric.Percent(*out.PointsAverageAverage, q, 1); ok {
				out.PointsAverageRefPct = &p
			}
		}
	}
	return out
}

// PerformanceDelta compares this year's reference average with the mean of
// prior years: round((this-prior)/prior*100, 1). nil without a prior year or
// when the prior mean is zero.
func PerformanceDelta(this *float64, prior []float64) *float64 {
	if this == nil {
		return nil
	}
	prev, ok := numeric.Mean(prior)
	if !ok || prev == 0 {
		return nil
	}
	p, _ := numeric.Percent(*this-prev, prev, 1)
	return &p
}

// QualitySample pairs a result's average points per dive with its benchmark.
type QualitySample struct {
	AveragePoints *float64
	Quality       float64
	HasQuality    bool
}

// QualityDeviation averages round((avg-quality)/quality*100, 1) over samples
// with both values, rounded to one decimal. nil when no sample qualifies.
func QualityDeviation(samples []QualitySample) *float64 {
	var deviations []float64
	for _, s := range samples {
		if s.AveragePoints == nil || !s.HasQuality || s.Quality == 0 {
			continue
		}
		d, _ := numeric.Percent(*s.AveragePoints-s.Quality, s.Quality, 1)
		deviations = append(deviations, d)
	}
	m, ok := numeric.Mean(deviations)
	if !ok {
		return nil
	}
	return numeric.Float(numeric.Round(m, 1))
}
