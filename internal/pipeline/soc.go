package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/numeric"
	"github.com/okian/piste/internal/domain/reference"
	"github.com/okian/piste/internal/domain/scoring"
	"github.com/okian/piste/internal/domain/talentcard"
	"github.com/okian/piste/pkg/metrics"
)

// socInputs is everything recorded for one year, indexed for the composite.
type socInputs struct {
	piste    map[string][]model.TestResult
	refComp  map[natkey.Key]model.RefCompResult
	training map[string]model.TrainingPerformance
	env      map[string]model.Environment
	national map[natkey.Key]bool
	regional map[natkey.Key]bool
}

func (in *socInputs) has(a model.Athlete) bool {
	_, p := in.piste[a.ID]
	_, rc := in.refComp[a.NameKey()]
	_, tp := in.training[a.ID]
	_, ev := in.env[a.ID]
	return p || rc || tp || ev
}

// soc builds the SOC composite and talent card of every athlete with data in year.
func (r *Runner) soc(ctx context.Context, step *Step, year int, tables *reference.Tables) error {
	ath, err := r.loadAthletes(ctx)
	if err != nil {
		return err
	}
	in, err := r.loadSocInputs(ctx, year, tables)
	if err != nil {
		return err
	}

	for _, a := range ath.all {
		if !in.has(a) {
			continue
		}
		step.Processed++
		key := fmt.Sprintf("%s/%d", a.NameKey(), year)

		s := r.composite(a, year, in, tables)
		if err := r.store.Upsert(ctx, model.TableSocValues, s.Key(), s.Row()); err != nil {
			r.warn(ctx, step, key, err)
			continue
		}
		step.Written++
		if s.TalentCard == "" {
			step.Skipped++
			continue
		}
		metrics.RecordTalentCard(s.TalentCard)
	}
	return nil
}

func (r *Runner) loadSocInputs(ctx context.Context, year int, tables *reference.Tables) (*socInputs, error) {
	in := &socInputs{
		piste:    map[string][]model.TestResult{},
		refComp:  map[natkey.Key]model.RefCompResult{},
		training: map[string]model.TrainingPerformance{},
		env:      map[string]model.Environment{},
		national: map[natkey.Key]bool{},
		regional: map[natkey.Key]bool{},
	}
	byYear := model.Row{"pisteyear": year}

	rows, err := r.store.FetchAll(ctx, model.TablePisteResults, byYear)
	if err != nil {
		return nil, fmt.Errorf("read piste results: %w", err)
	}
	for _, row := range rows {
		res := model.TestResultFromRow(row)
		in.piste[res.AthleteID] = append(in.piste[res.AthleteID], res)
	}

	if rows, err = r.store.FetchAll(ctx, model.TableRefCompResults, model.Row{"PisteYear": year}); err != nil {
		return nil, fmt.Errorf("read reference results: %w", err)
	}
	for _, row := range rows {
		rc := model.RefCompResultFromRow(row)
		if _, dup := in.refComp[rc.NameKey()]; !dup {
			in.refComp[rc.NameKey()] = rc
		}
	}

	if rows, err = r.store.FetchAll(ctx, model.TableTrainingPerformance, byYear); err != nil {
		return nil, fmt.Errorf("read training performance: %w", err)
	}
	for _, row := range rows {
		tp := model.TrainingPerformanceFromRow(row)
		in.training[tp.AthleteID] = tp
	}

	if rows, err = r.store.FetchAll(ctx, model.TableEnvironment, byYear); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	for _, row := range rows {
		e := model.EnvironmentFromRow(row)
		in.env[e.AthleteID] = e
	}

	inYear := map[natkey.Key]bool{}
	for _, c := range tables.CompetitionsIn(year) {
		inYear[natkey.Of(c.Name)] = true
	}
	if rows, err = r.store.FetchAll(ctx, model.TableCompResults, nil); err != nil {
		return nil, fmt.Errorf("read competition results: %w", err)
	}
	for _, row := range rows {
		res := model.CompetitionResultFromRow(row)
		if !inYear[natkey.Of(res.Competition)] {
			continue
		}
		if row.Yes("NationalTeam") {
			in.national[res.NameKey()] = true
		}
		if row.Yes("RegionalTeam") {
			in.regional[res.NameKey()] = true
		}
	}
	return in, nil
}

// composite derives every contribution, the total and the talent card.
// A contribution without input or without a matching score row stays absent.
func (r *Runner) composite(a model.Athlete, year int, in *socInputs, tables *reference.Tables) model.SocValues {
	s := model.SocValues{
		AthleteID:        a.ID,
		FirstName:        a.FirstName,
		LastName:         a.LastName,
		Year:             year,
		Contributions:    map[string]*float64{},
		CompNationalTeam: model.YesNo(in.national[a.NameKey()]),
		CompRegionalTeam: model.YesNo(in.regional[a.NameKey()]),
	}
	age, hasAge := a.AgeIn(year)
	s.Age = age
	if hasAge {
		s.Category, _ = tables.Category(a.Vintage, year)
	}
	scores := tables.Scores

	if rc, ok := in.refComp[a.NameKey()]; ok {
		s.Contributions[model.ContribCompetitions] = contribution(scores, model.DisciplineCompPerfPoints, rc.RefAverage)
		s.Contributions[model.ContribEnhancement] = contribution(scores, model.DisciplineCompPerfEnhance, rc.Performance)
		s.Contributions[model.ContribQuality] = contribution(scores, model.DisciplineCompPerfQuality, rc.PointsAverageRefPct)
	}

	results := in.piste[a.ID]
	if total, ok := find(results, model.DisciplineTotal); ok {
		s.Contributions[model.ContribPiste] = contribution(scores, model.DisciplineTotal, total.Points)
	}
	if ratio := upperBodyRatio(results); ratio != nil {
		s.Contributions[model.ContribMaturation] = contribution(scores, model.DisciplineMaturation, ratio)
	}
	if q, ok := a.BirthQuarter(); ok {
		s.Contributions[model.ContribBioAge] = contribution(scores, model.DisciplineBioAgeAdjust, numeric.Float(float64(q)))
	}

	if tp, ok := in.training[a.ID]; ok {
		s.Contributions[model.ContribTrainingPerf] = tp.Performance()
		s.Contributions[model.ContribResilience] = tp.Resilience()
		if hasAge && tp.TrainingSince != nil {
			if v, ok := tables.TrainingSince(age, year-*tp.TrainingSince); ok {
				s.Contributions[model.ContribTrainingSince] = numeric.Float(v)
			}
		}
		if hasAge && tp.TrainingTime != nil {
			if v, ok := tables.TrainingTime(age, int(math.Trunc(*tp.TrainingTime))); ok {
				s.Contributions[model.ContribTrainingTime] = numeric.Float(v)
			}
		}
	}
	if e, ok := in.env[a.ID]; ok {
		s.Contributions[model.ContribToolEnvironment] = e.Value
	}

	s.Total = talentcard.Total(s.Contributions)
	if !hasAge {
		return s
	}
	var minRow *model.MinPoints
	if m, ok := tables.MinPoints(age); ok {
		minRow = &m
	}
	d, ok := talentcard.Classify(talentcard.Input{
		Total:            s.Total,
		Min:              minRow,
		NationalTeamFlag: in.national[a.NameKey()],
		RegionalTeamFlag: in.regional[a.NameKey()],
	})
	if ok {
		s.PisteMinRegio = talentcard.YesNo(d.MinRegio)
		s.PisteMinNational = talentcard.YesNo(d.MinNational)
		s.TalentCard = string(d.Card)
	}
	return s
}

// contribution scores v against a discipline-wide table. Zero-point rows
// count as present.
func contribution(scores scoring.Lookuper, discipline string, v *float64) *float64 {
	if v == nil {
		return nil
	}
	res := scores.LookupAny(discipline, *v)
	switch res.Outcome {
	case scoring.Value, scoring.Zero:
		return numeric.Float(res.Points())
	}
	return nil
}

func find(results []model.TestResult, discipline string) (model.TestResult, bool) {
	for _, r := range results {
		if natkey.Equal(r.Discipline, discipline) {
			return r, true
		}
	}
	return model.TestResult{}, false
}

// upperBodyRatio is UpperBodySize / BodySize * 100, rounded to one decimal.
func upperBodyRatio(results []model.TestResult) *float64 {
	upper, ok := find(results, model.DisciplineUpperBodySize)
	if !ok {
		return nil
	}
	body, ok := find(results, model.DisciplineBodySize)
	if !ok {
		return nil
	}
	u, ok := numeric.Parse(upper.Result)
	if !ok {
		return nil
	}
	b, ok := numeric.Parse(body.Result)
	if !ok {
		return nil
	}
	p, ok := numeric.Percent(u, b, 1)
	if !ok {
		return nil
	}
	return &p
}
