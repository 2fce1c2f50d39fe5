package model

import (
	"fmt"

	"github.com/okian/piste/internal/domain/natkey"
)

// Tier is a selection tier a competition may qualify for.
type Tier string

// Selection tiers.
const (
	TierRegional Tier = "Regional"
	TierNational Tier = "National"
	TierJEM      Tier = "JEM"
	TierEM       Tier = "EM"
	TierWM       Tier = "WM"
	TierPiste    Tier = "Piste"
)

// SelectionTiers are the tiers evaluated per competition result, in column order.
var SelectionTiers = []Tier{TierRegional, TierNational, TierJEM, TierEM, TierWM} //nolint:gochecknoglobals // fixed tier order

// International tiers feed the national team flag.
func (t Tier) International() bool {
	return t == TierJEM || t == TierEM || t == TierWM
}

// QualColumn is the competitions flag column of the tier.
func (t Tier) QualColumn() string { return "qual-" + string(t) }

// PercentColumn is the compresults percentage column of the tier.
func (t Tier) PercentColumn() string { return string(t) + "%" }

// Competition is a meet with its qualification flags.
type Competition struct {
	Name      string
	Date      string
	Type      string
	PisteYear int
	Qualifies map[Tier]bool
}

// CompetitionFromRow decodes a competitions row.
func CompetitionFromRow(r Row) Competition {
	c := Competition{
		Name:      r.String("name"),
		Date:      r.String("date"),
		Type:      r.String("type"),
		Qualifies: map[Tier]bool{},
	}
	c.PisteYear, _ = r.Int("PisteYear")
	for _, t := range append([]Tier{TierPiste}, SelectionTiers...) {
		c.Qualifies[t] = r.Yes(t.QualColumn())
	}
	return c
}

// Row encodes the competition.
func (c Competition) Row() Row {
	r := Row{"name": c.Name, "date": c.Date, "type": c.Type, "PisteYear": c.PisteYear}
	for _, t := range append([]Tier{TierPiste}, SelectionTiers...) {
		r[t.QualColumn()] = YesNo(c.Qualifies[t])
	}
	return r
}

// CompetitionResult is one competition start of an athlete.
type CompetitionResult struct {
	ID          string
	AthleteID   string
	FirstName   string
	LastName    string
	Sex         string
	Category    string
	Competition string
	Discipline  string
	PreFin      string
	Points      *float64
	Difficulty  *float64
	Timestamp   string
	// Stored holds the full row, including derived columns.
	Stored Row
}

// CompetitionResultFromRow decodes a compresults row.
func CompetitionResultFromRow(r Row) CompetitionResult {
	return CompetitionResult{
		ID:          r.String("id"),
		AthleteID:   r.String("athlete_id"),
		FirstName:   r.String("first_name"),
		LastName:    r.String("last_name"),
		Sex:         r.String("sex"),
		Category:    r.String("category"),
		Competition: r.String("competition"),
		Discipline:  r.String("discipline"),
		PreFin:      r.String("PreFin"),
		Points:      r.FloatPtr("points"),
		Difficulty:  r.FloatPtr("difficulty"),
		Timestamp:   r.String("timestamp"),
		Stored:      r,
	}
}

// Row encodes the input fields of the result.
func (c CompetitionResult) Row() Row {
	r := Row{
		"first_name":  c.FirstName,
		"last_name":   c.LastName,
		"sex":         c.Sex,
		"category":    c.Category,
		"competition": c.Competition,
		"discipline":  c.Discipline,
		"PreFin":      c.PreFin,
		"points":      OptionalFloat(c.Points),
		"difficulty":  OptionalFloat(c.Difficulty),
	}
	if c.AthleteID != "" {
		r["athlete_id"] = c.AthleteID
	}
	return r
}

// Key is the natural key of a start.
func (c CompetitionResult) Key() Row {
	return Row{
		"first_name":  c.FirstName,
		"last_name":   c.LastName,
		"competition": c.Competition,
		"discipline":  c.Discipline,
		"PreFin":      c.PreFin,
	}
}

// NameKey is the (first, last) join key.
func (c CompetitionResult) NameKey() natkey.Key { return natkey.Name(c.FirstName, c.LastName) }

// RefPercentColumn names the per-year reference percentage column.
func RefPercentColumn(year int) string { return fmt.Sprintf("PisteRefPoints%d%%", year) }

// SelectionThreshold is the minimum points for a tier.
type SelectionThreshold struct {
	Tier       Tier
	Discipline string
	Category   string
	Sex        string
	Year       int
	Points     *float64
}

// SelectionThresholdFromRow decodes a selectionpoints row.
func SelectionThresholdFromRow(r Row) SelectionThreshold {
	y, _ := r.Int("year")
	return SelectionThreshold{
		Tier:       Tier(r.String("Competition")),
		Discipline: r.String("Discipline"),
		Category:   r.String("category"),
		Sex:        r.String("sex"),
		Year:       y,
		Points:     r.FloatPtr("points"),
	}
}

// Key is the threshold join key.
func (s SelectionThreshold) Key() natkey.Key {
	return natkey.Of(string(s.Tier), s.Sex, s.Discipline, s.Category)
}

// AgeDives is the number of dives a category performs in a discipline.
type AgeDives struct {
	Sex        string
	Category   string
	Discipline string
	Dives      *float64
}

// AgeDivesFromRow decodes an agedives row.
func AgeDivesFromRow(r Row) AgeDives {
	return AgeDives{
		Sex:        r.String("sex"),
		Category:   r.String("category"),
		Discipline: r.String("Discipline"),
		Dives:      r.FloatPtr("dives"),
	}
}

// Key is the dives join key.
func (d AgeDives) Key() natkey.Key { return natkey.Of(d.Sex, d.Category, d.Discipline) }

// BigResult is a rank's points at a major championship.
type BigResult struct {
	Competition string
	Year        int
	Discipline  string
	Category    string
	Sex         string
	Rank        string
	Points      *float64
}

// BigRanks are the reference ranks of a major championship.
var BigRanks = []string{"1", "2", "3", "QualF", "QualHF"} //nolint:gochecknoglobals // fixed rank order

// BigResultFromRow decodes a compresultsbig row.
func BigResultFromRow(r Row) BigResult {
	y, _ := r.Int("year")
	return BigResult{
		Competition: r.String("competition"),
		Year:        y,
		Discipline:  r.String("discipline"),
		Category:    r.String("category"),
		Sex:         r.String("sex"),
		Rank:        r.String("rank"),
		Points:      r.FloatPtr("points"),
	}
}

// Key is the six-part natural key of a big result.
func (b BigResult) Key() natkey.Key {
	return natkey.Of(b.Competition, fmt.Sprint(b.Year), b.Discipline, b.Category, b.Sex, b.Rank)
}

// Row encodes the big result.
func (b BigResult) Row() Row {
	return Row{
		"competition": b.Competition,
		"year":        b.Year,
		"discipline":  b.Discipline,
		"category":    b.Category,
		"sex":         b.Sex,
		"rank":        b.Rank,
		"points":      OptionalFloat(b.Points),
	}
}
