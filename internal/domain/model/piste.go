package model

// AgeCategoryBand maps an inclusive age range to a category label.
type AgeCategoryBand struct {
	MinAge   int
	MaxAge   int
	Category string
}

// AgeCategoryBandFromRow decodes an agecategories row; missing bounds default to 0..99.
func AgeCategoryBandFromRow(r Row) AgeCategoryBand {
	b := AgeCategoryBand{MinAge: 0, MaxAge: 99, Category: r.String("category")}
	if v, ok := r.Int("min_age"); ok {
		b.MinAge = v
	}
	if v, ok := r.Int("max_age"); ok {
		b.MaxAge = v
	}
	return b
}

// ScoreTableRow is one result range of a score table. Min or Max is nil when
// the stored bound did not parse.
type ScoreTableRow struct {
	Discipline string
	Category   string
	Sex        string
	Min        *float64
	Max        *float64
	Points     float64
}

// ScoreTableRowFromRow decodes a scoretables row.
func ScoreTableRowFromRow(r Row) ScoreTableRow {
	p, _ := r.Float("points")
	return ScoreTableRow{
		Discipline: r.String("discipline"),
		Category:   r.String("category"),
		Sex:        r.String("sex"),
		Min:        r.FloatPtr("result_min"),
		Max:        r.FloatPtr("result_max"),
		Points:     p,
	}
}

// Row encodes the score table row.
func (s ScoreTableRow) Row() Row {
	return Row{
		"discipline": s.Discipline,
		"category":   s.Category,
		"sex":        s.Sex,
		"result_min": OptionalFloat(s.Min),
		"result_max": OptionalFloat(s.Max),
		"points":     s.Points,
	}
}

// TestResult is one piste discipline result of an athlete in a year.
type TestResult struct {
	AthleteID  string
	FirstName  string
	LastName   string
	Discipline string
	Year       int
	Result     string
	Points     *float64
	Category   string
	Sex        string
}

// TestResultFromRow decodes a pisteresults row.
func TestResultFromRow(r Row) TestResult {
	year, _ := r.Int("pisteyear")
	return TestResult{
		AthleteID:  r.String("athlete_id"),
		FirstName:  r.String("first_name"),
		LastName:   r.String("last_name"),
		Discipline: r.String("discipline"),
		Year:       year,
		Result:     r.String("result"),
		Points:     r.FloatPtr("points"),
		Category:   r.String("category"),
		Sex:        r.String("sex"),
	}
}

// Key returns the natural-key filter of the result.
func (t TestResult) Key() Row {
	return Row{"athlete_id": t.AthleteID, "discipline": t.Discipline, "pisteyear": t.Year}
}

// Row encodes the result fields excluding the key.
func (t TestResult) Row() Row {
	return Row{
		"first_name": t.FirstName,
		"last_name":  t.LastName,
		"result":     t.Result,
		"points":     OptionalFloat(t.Points),
		"category":   t.Category,
		"sex":        t.Sex,
	}
}
