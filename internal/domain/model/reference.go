package model

import (
	"strconv"
	"strings"

	"github.com/okian/piste/internal/domain/natkey"
)

// RefCompPoints holds age-indexed reference and quality points for a discipline and sex.
type RefCompPoints struct {
	Discipline string
	Sex        string
	Points     map[int]float64
	Quality    map[int]float64
}

// RefCompPointsFromRow decodes a pisterefcomppoints row. Columns "<age>" hold
// reference points and "quality<age>" hold quality benchmarks.
func RefCompPointsFromRow(r Row) RefCompPoints {
	ref := RefCompPoints{
		Discipline: r.String("Discipline"),
		Sex:        r.String("sex"),
		Points:     map[int]float64{},
		Quality:    map[int]float64{},
	}
	for col := range r {
		if age, err := strconv.Atoi(col); err == nil {
			if v, ok := r.Float(col); ok {
				ref.Points[age] = v
			}
			continue
		}
		if rest, found := strings.CutPrefix(col, "quality"); found {
			if age, err := strconv.Atoi(rest); err == nil {
				if v, ok := r.Float(col); ok {
					ref.Quality[age] = v
				}
			}
		}
	}
	return ref
}

// Key is the (discipline, sex) join key.
func (r RefCompPoints) Key() natkey.Key { return natkey.Of(r.Discipline, r.Sex) }

// MinPoints are the talent-card minimum totals for an age.
type MinPoints struct {
	Age         int
	RegioMin    *float64
	NationalMin *float64
}

// MinPointsFromRow decodes a pisterefminpoints row.
func MinPointsFromRow(r Row) MinPoints {
	age, _ := r.Int("age")
	return MinPoints{Age: age, RegioMin: r.FloatPtr("regio_min"), NationalMin: r.FloatPtr("national_min")}
}

// TrainingReference maps an integral column (years trained or weekly hours) to points for an age.
type TrainingReference struct {
	Age    int
	Values map[int]float64
}

// TrainingReferenceFromRow decodes a pistereftrainingsince or pistereftrainingtime row.
func TrainingReferenceFromRow(r Row) TrainingReference {
	age, _ := r.Int("age")
	ref := TrainingReference{Age: age, Values: map[int]float64{}}
	for col := range r {
		n, err := strconv.Atoi(col)
		if err != nil {
			continue
		}
		if v, ok := r.Float(col); ok {
			ref.Values[n] = v
		}
	}
	return ref
}
