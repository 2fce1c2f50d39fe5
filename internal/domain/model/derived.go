package model

import (
	"fmt"

	"github.com/okian/piste/internal/domain/natkey"
)

// SurveyQuestions is the number of training survey questions.
const SurveyQuestions = 10

// TrainingPerformance is the yearly training survey of an athlete.
type TrainingPerformance struct {
	AthleteID     string
	FirstName     string
	LastName      string
	Year          int
	Answers       [SurveyQuestions]*float64
	TrainingTime  *float64
	TrainingSince *int
}

// TrainingPerformanceFromRow decodes a trainingperformance row.
func TrainingPerformanceFromRow(r Row) TrainingPerformance {
	tp := TrainingPerformance{
		AthleteID:    r.String("athlete_id"),
		FirstName:    r.String("first_name"),
		LastName:     r.String("last_name"),
		TrainingTime: r.FloatPtr("trainingtime"),
	}
	tp.Year, _ = r.Int("pisteyear")
	for i := range tp.Answers {
		tp.Answers[i] = r.FloatPtr(fmt.Sprintf("q%d", i+1))
	}
	if v, ok := r.Int("trainingsince"); ok {
		tp.TrainingSince = &v
	}
	return tp
}

func (t TrainingPerformance) sum(questions ...int) *float64 {
	var total float64
	seen := false
	for _, q := range questions {
		if v := t.Answers[q-1]; v != nil {
			total += *v
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return &total
}

// Resilience is q1 + q6.
func (t TrainingPerformance) Resilience() *float64 { return t.sum(1, 6) }

// Performance is the sum of the remaining eight answers.
func (t TrainingPerformance) Performance() *float64 { return t.sum(2, 3, 4, 5, 7, 8, 9, 10) }

// Row encodes the survey together with its derived sums.
func (t TrainingPerformance) Row() Row {
	r := Row{
		"first_name":   t.FirstName,
		"last_name":    t.LastName,
		"trainingtime": OptionalFloat(t.TrainingTime),
		"trainingperf": OptionalFloat(t.Performance()),
		"resilience":   OptionalFloat(t.Resilience()),
	}
	for i, v := range t.Answers {
		r[fmt.Sprintf("q%d", i+1)] = OptionalFloat(v)
	}
	if t.TrainingSince != nil {
		r["trainingsince"] = *t.TrainingSince
	} else {
		r["trainingsince"] = nil
	}
	return r
}

// Key is the (athlete, year) natural key.
func (t TrainingPerformance) Key() Row {
	return Row{"athlete_id": t.AthleteID, "pisteyear": t.Year}
}

// Environment is the tool-environment rating (1..5) of an athlete in a year.
type Environment struct {
	AthleteID string
	Year      int
	Value     *float64
}

// EnvironmentFromRow decodes a pisteenvironment row.
func EnvironmentFromRow(r Row) Environment {
	y, _ := r.Int("pisteyear")
	return Environment{AthleteID: r.String("athlete_id"), Year: y, Value: r.FloatPtr("toolenvvalue")}
}

// RefEntry is one of the top-three competition results.
type RefEntry struct {
	Competition   string
	Discipline    string
	Points        *float64
	Reference     *float64
	PointsAverage *float64
}

// RefCompResult is the materialized top-three aggregate of an athlete and year.
type RefCompResult struct {
	AthleteID            string
	FirstName            string
	LastName             string
	Sex                  string
	Age                  int
	Year                 int
	Entries              []RefEntry
	PointsAverageAverage *float64
	RefAverage           *float64
	PointsAverageRefPct  *float64
	Performance          *float64
	Quality              *float64
}

// RefCompResultFromRow decodes a pisterefcompresults row.
func RefCompResultFromRow(r Row) RefCompResult {
	rc := RefCompResult{
		AthleteID:            r.String("athlete_id"),
		FirstName:            r.String("first_name"),
		LastName:             r.String("last_name"),
		Sex:                  r.String("sex"),
		PointsAverageAverage: r.FloatPtr("pointsaverageaverage"),
		RefAverage:           r.FloatPtr("refaverage"),
		PointsAverageRefPct:  r.FloatPtr("pointsaverageref%"),
		Performance:          r.FloatPtr("performance"),
		Quality:              r.FloatPtr("quality"),
	}
	rc.Age, _ = r.Int("age")
	rc.Year, _ = r.Int("PisteYear")
	for i := 1; i <= 3; i++ {
		comp := r.String(fmt.Sprintf("competition%d", i))
		if comp == "" {
			continue
		}
		rc.Entries = append(rc.Entries, RefEntry{
			Competition:   comp,
			Discipline:    r.String(fmt.Sprintf("discipline%d", i)),
			Points:        r.FloatPtr(fmt.Sprintf("points%d", i)),
			Reference:     r.FloatPtr(fmt.Sprintf("reference%d", i)),
			PointsAverage: r.FloatPtr(fmt.Sprintf("pointsaverage%d", i)),
		})
	}
	return rc
}

// Row encodes the aggregate, flattening entries into numbered columns.
func (rc RefCompResult) Row() Row {
	r := Row{
		"first_name":           rc.FirstName,
		"last_name":            rc.LastName,
		"sex":                  rc.Sex,
		"age":                  rc.Age,
		"PisteYear":            rc.Year,
		"pointsaverageaverage": OptionalFloat(rc.PointsAverageAverage),
		"refaverage":           OptionalFloat(rc.RefAverage),
		"pointsaverageref%":    OptionalFloat(rc.PointsAverageRefPct),
		"performance":          OptionalFloat(rc.Performance),
		"quality":              OptionalFloat(rc.Quality),
	}
	if rc.AthleteID != "" {
		r["athlete_id"] = rc.AthleteID
	}
	for i, e := range rc.Entries {
		n := i + 1
		r[fmt.Sprintf("competition%d", n)] = e.Competition
		r[fmt.Sprintf("discipline%d", n)] = e.Discipline
		r[fmt.Sprintf("points%d", n)] = OptionalFloat(e.Points)
		r[fmt.Sprintf("reference%d", n)] = OptionalFloat(e.Reference)
		r[fmt.Sprintf("pointsaverage%d", n)] = OptionalFloat(e.PointsAverage)
	}
	return r
}

// Key is the replace key of the aggregate.
func (rc RefCompResult) Key() Row {
	return Row{"first_name": rc.FirstName, "last_name": rc.LastName, "PisteYear": rc.Year}
}

// NameKey is the (first, last) join key.
func (rc RefCompResult) NameKey() natkey.Key { return natkey.Name(rc.FirstName, rc.LastName) }

// Contribution names of the SOC composite, in column order.
const (
	ContribCompetitions    = "competitions"
	ContribTrainingPerf    = "trainingperf"
	ContribPiste           = "piste"
	ContribEnhancement     = "compenhancement"
	ContribResilience      = "resilience"
	ContribTrainingTime    = "trainingtime"
	ContribTrainingSince   = "trainingsince"
	ContribToolEnvironment = "toolenvironment"
	ContribQuality         = "quality"
	ContribBioAge          = "bioage"
	ContribMaturation      = "maturation"
)

// Contributions lists every SOC contribution column.
var Contributions = []string{ //nolint:gochecknoglobals // fixed column order
	ContribCompetitions, ContribTrainingPerf, ContribPiste, ContribEnhancement, ContribResilience,
	ContribTrainingTime, ContribTrainingSince, ContribToolEnvironment, ContribQuality,
	ContribBioAge, ContribMaturation,
}

// SocValues is the composite talent record of an athlete and year.
type SocValues struct {
	AthleteID        string
	FirstName        string
	LastName         string
	Year             int
	Age              int
	Category         string
	Contributions    map[string]*float64
	Total            *float64
	PisteMinRegio    string
	PisteMinNational string
	CompNationalTeam string
	CompRegionalTeam string
	TalentCard       string
}

// SocValuesFromRow decodes a socadditionalvalues row.
func SocValuesFromRow(r Row) SocValues {
	s := SocValues{
		AthleteID:        r.String("athlete_id"),
		FirstName:        r.String("first_name"),
		LastName:         r.String("last_name"),
		Category:         r.String("category"),
		Contributions:    map[string]*float64{},
		Total:            r.FloatPtr("totalpoints"),
		PisteMinRegio:    r.String("pisteminregio"),
		PisteMinNational: r.String("pisteminnational"),
		CompNationalTeam: r.String("CompPointsNationalTeam"),
		CompRegionalTeam: r.String("CompPointsRegionalTeam"),
		TalentCard:       r.String("talentcard"),
	}
	s.Year, _ = r.Int("pisteyear")
	s.Age, _ = r.Int("age")
	for _, c := range Contributions {
		s.Contributions[c] = r.FloatPtr(c)
	}
	return s
}

// Row encodes the composite record.
func (s SocValues) Row() Row {
	r := Row{
		"first_name":             s.FirstName,
		"last_name":              s.LastName,
		"pisteyear":              s.Year,
		"age":                    s.Age,
		"category":               s.Category,
		"totalpoints":            OptionalFloat(s.Total),
		"pisteminregio":          s.PisteMinRegio,
		"pisteminnational":       s.PisteMinNational,
		"CompPointsNationalTeam": s.CompNationalTeam,
		"CompPointsRegionalTeam": s.CompRegionalTeam,
		"talentcard":             s.TalentCard,
	}
	if s.AthleteID != "" {
		r["athlete_id"] = s.AthleteID
	}
	for _, c := range Contributions {
		r[c] = OptionalFloat(s.Contributions[c])
	}
	return r
}

// Key is the upsert key of the composite record.
func (s SocValues) Key() Row {
	return Row{"first_name": s.FirstName, "last_name": s.LastName, "pisteyear": s.Year}
}
