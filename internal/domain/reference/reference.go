// Package reference loads the read-only lookup tables the rules engines consult.
package reference

import (
	"context"
	"fmt"

	"github.com/okian/piste/internal/domain/category"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/scoring"
)

// Source reads every row of a table matching equality filters.
type Source interface {
	FetchAll(ctx context.Context, table string, filters model.Row) ([]model.Row, error)
}

// Tables is an immutable snapshot of the reference data of one run.
type Tables struct {
	Bands     []model.AgeCategoryBand
	ScoreRows []model.ScoreTableRow
	Scores    *scoring.Engine

	thresholds    map[natkey.Key]model.SelectionThreshold
	dives         map[natkey.Key]model.AgeDives
	refPoints     map[natkey.Key]model.RefCompPoints
	minPoints     map[int]model.MinPoints
	trainingSince map[int]model.TrainingReference
	trainingTime  map[int]model.TrainingReference
	competitions  map[natkey.Key]model.Competition
}

// Load reads every reference table through src. It has no side effects.
func Load(ctx context.Context, src Source, opts ...scoring.Option) (*Tables, error) {
	read := func(table string) ([]model.Row, error) {
		rows, err := src.FetchAll(ctx, table, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoad, table, err)
		}
		return rows, nil
	}

	t := New(nil, nil, opts...)
	rows, err := read(model.TableAgeCategories)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		t.Bands = append(t.Bands, model.AgeCategoryBandFromRow(r))
	}

	if rows, err = read(model.TableScoreTables); err != nil {
		return nil, err
	}
	for _, r := range rows {
		t.ScoreRows = append(t.ScoreRows, model.ScoreTableRowFromRow(r))
	}
	t.Scores = scoring.NewEngine(t.ScoreRows, opts...)

	if rows, err = read(model.TableSelectionPoints); err != nil {
		return nil, err
	}
	for _, r := range rows {
		t.AddThreshold(model.SelectionThresholdFromRow(r))
	}

	if rows, err = read(model.TableAgeDives); err != nil {
		return nil, err
	}
	for _, r := range rows {
		t.AddDives(model.AgeDivesFromRow(r))
	}

	if rows, err = read(model.TableRefCompPoints); err != nil {
		return nil, err
	}
	for _, r := range rows {
		t.AddRefPoints(model.RefCompPointsFromRow(r))
	}

	if rows, err = read(model.TableRefMinPoints); err != nil {
		return nil, err
	}
	for _, r := range rows {
		t.AddMinPoints(model.MinPointsFromRow(r))
	}

	if rows, err = read(model.TableRefTrainingSince); err != nil {
		return nil, err
	}
	for _, r := range rows {
		ref := model.TrainingReferenceFromRow(r)
		if _, dup := t.trainingSince[ref.Age]; !dup {
			t.trainingSince[ref.Age] = ref
		}
	}

	if rows, err = read(model.TableRefTrainingTime); err != nil {
		return nil, err
	}
	for _, r := range rows {
		ref := model.TrainingReferenceFromRow(r)
		if _, dup := t.trainingTime[ref.Age]; !dup {
			t.trainingTime[ref.Age] = ref
		}
	}

	if rows, err = read(model.TableCompetitions); err != nil {
		return nil, err
	}
	for _, r := range rows {
		t.AddCompetition(model.CompetitionFromRow(r))
	}
	return t, nil
}

// New builds Tables from in-memory data; the Add methods fill the rest.
func New(bands []model.AgeCategoryBand, scoreRows []model.ScoreTableRow, opts ...scoring.Option) *Tables {
	return &Tables{
		Bands:         bands,
		ScoreRows:     scoreRows,
		Scores:        scoring.NewEngine(scoreRows, opts...),
		thresholds:    map[natkey.Key]model.SelectionThreshold{},
		dives:         map[natkey.Key]model.AgeDives{},
		refPoints:     map[natkey.Key]model.RefCompPoints{},
		minPoints:     map[int]model.MinPoints{},
		trainingSince: map[int]model.TrainingReference{},
		trainingTime:  map[int]model.TrainingReference{},
		competitions:  map[natkey.Key]model.Competition{},
	}
}

// AddThreshold registers a selection threshold; the first row per key wins.
func (t *Tables) AddThreshold(s model.SelectionThreshold) {
	if _, dup := t.thresholds[s.Key()]; !dup {
		t.thresholds[s.Key()] = s
	}
}

// AddDives registers a dive count; the first row per key wins.
func (t *Tables) AddDives(d model.AgeDives) {
	if _, dup := t.dives[d.Key()]; !dup {
		t.dives[d.Key()] = d
	}
}

// AddRefPoints registers reference points; the first row per key wins.
func (t *Tables) AddRefPoints(r model.RefCompPoints) {
	if _, dup := t.refPoints[r.Key()]; !dup {
		t.refPoints[r.Key()] = r
	}
}

// AddMinPoints registers an age's minimum totals; the first row per age wins.
func (t *Tables) AddMinPoints(m model.MinPoints) {
	if _, dup := t.minPoints[m.Age]; !dup {
		t.minPoints[m.Age] = m
	}
}

// AddTraining registers training-since and training-time references for an age.
func (t *Tables) AddTraining(since, hours model.TrainingReference) {
	t.trainingSince[since.Age] = since
	t.trainingTime[hours.Age] = hours
}

// AddCompetition registers a competition by name.
func (t *Tables) AddCompetition(c model.Competition) {
	t.competitions[natkey.Of(c.Name)] = c
}

// Category resolves the age category of a birth year in an evaluation year.
func (t *Tables) Category(birthYear, year any) (string, bool) {
	return category.Resolve(birthYear, year, t.Bands)
}

// Threshold finds the selection threshold of a tier.
func (t *Tables) Threshold(tier model.Tier, sex, discipline, cat string) (model.SelectionThreshold, bool) {
	s, ok := t.thresholds[natkey.Of(string(tier), sex, discipline, cat)]
	return s, ok
}

// Dives returns the dive count for (sex, category, discipline).
func (t *Tables) Dives(sex, cat, discipline string) (float64, bool) {
	d, ok := t.dives[natkey.Of(sex, cat, discipline)]
	if !ok || d.Dives == nil {
		return 0, false
	}
	return *d.Dives, true
}

// RefPoints returns the reference points of an age.
func (t *Tables) RefPoints(discipline, sex string, age int) (float64, bool) {
	r, ok := t.refPoints[natkey.Of(discipline, sex)]
	if !ok {
		return 0, false
	}
	v, ok := r.Points[age]
	return v, ok
}

// Quality returns the quality benchmark of an age.
func (t *Tables) Quality(discipline, sex string, age int) (float64, bool) {
	r, ok := t.refPoints[natkey.Of(discipline, sex)]
	if !ok {
		return 0, false
	}
	v, ok := r.Quality[age]
	return v, ok
}

// MinPoints returns the talent card minimums of an age.
func (t *Tables) MinPoints(age int) (model.MinPoints, bool) {
	m, ok := t.minPoints[age]
	return m, ok
}

// TrainingSince returns the points for having trained years years at age.
func (t *Tables) TrainingSince(age, years int) (float64, bool) {
	return trainingValue(t.trainingSince, age, years)
}

// TrainingTime returns the points for weekly hours at age.
func (t *Tables) TrainingTime(age, hours int) (float64, bool) {
	return trainingValue(t.trainingTime, age, hours)
}

func trainingValue(refs map[int]model.TrainingReference, age, col int) (float64, bool) {
	r, ok := refs[age]
	if !ok {
		return 0, false
	}
	v, ok := r.Values[col]
	return v, ok
}

// Competition finds a competition by name.
func (t *Tables) Competition(name string) (model.Competition, bool) {
	c, ok := t.competitions[natkey.Of(name)]
	return c, ok
}

// CompetitionsIn lists competitions whose PisteYear is year.
func (t *Tables) CompetitionsIn(year int) []model.Competition {
	var out []model.Competition
	for _, c := range t.competitions {
		if c.PisteYear == year {
			out = append(out, c)
		}
	}
	return out
}
