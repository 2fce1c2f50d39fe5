package model

import (
	"strings"
	"time"

	"github.com/okian/piste/internal/domain/natkey"
)

// Athlete is a registered diver.
type Athlete struct {
	ID           string
	FirstName    string
	LastName     string
	Birthdate    string
	Sex          string
	Club         string
	NationalTeam string
	Vintage      int
	Category     string
}

var birthdateLayouts = []string{"2006-01-02", "02.01.2006", "2006/01/02", "2006-01-02 15:04:05"} //nolint:gochecknoglobals // parse layouts

// ParseBirthdate accepts ISO and German date forms.
func ParseBirthdate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range birthdateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// VintageOf derives the birth year from a birthdate.
func VintageOf(birthdate string) (int, bool) {
	if t, ok := ParseBirthdate(birthdate); ok {
		return t.Year(), true
	}
	return 0, false
}

// AthleteFromRow decodes an athletes row.
func AthleteFromRow(r Row) Athlete {
	a := Athlete{
		ID:           r.String("id"),
		FirstName:    r.String("first_name"),
		LastName:     r.String("last_name"),
		Birthdate:    r.String("birthdate"),
		Sex:          r.String("sex"),
		Club:         r.String("club"),
		NationalTeam: r.String("nationalteam"),
		Category:     r.String("category"),
	}
	if v, ok := r.Int("vintage"); ok {
		a.Vintage = v
	} else if v, ok := VintageOf(a.Birthdate); ok {
		a.Vintage = v
	}
	return a
}

// Row encodes the athlete, deriving vintage and full_name.
func (a Athlete) Row() Row {
	r := Row{
		"first_name":   a.FirstName,
		"last_name":    a.LastName,
		"birthdate":    a.Birthdate,
		"sex":          a.Sex,
		"club":         a.Club,
		"nationalteam": a.NationalTeam,
		"full_name":    a.FullName(),
	}
	if a.ID != "" {
		r["id"] = a.ID
	}
	if a.Vintage != 0 {
		r["vintage"] = a.Vintage
	}
	if a.Category != "" {
		r["category"] = a.Category
	}
	return r
}

// FullName joins first and last name.
func (a Athlete) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NameKey is the (first, last) join key.
func (a Athlete) NameKey() natkey.Key { return natkey.Name(a.FirstName, a.LastName) }

// PersonKey is the (first, last, birthdate) natural key. Parseable
// birthdates are keyed in ISO form whatever layout they were stored in.
func (a Athlete) PersonKey() natkey.Key {
	born := a.Birthdate
	if t, ok := ParseBirthdate(born); ok {
		born = t.Format(time.DateOnly)
	}
	return natkey.Person(a.FirstName, a.LastName, born)
}

// BirthQuarter returns 1..4 from the birth month.
func (a Athlete) BirthQuarter() (int, bool) {
	t, ok := ParseBirthdate(a.Birthdate)
	if !ok {
		return 0, false
	}
	return (int(t.Month())-1)/3 + 1, true
}

// AgeIn returns the evaluation-year age.
func (a Athlete) AgeIn(year int) (int, bool) {
	if a.Vintage == 0 {
		return 0, false
	}
	return year - a.Vintage, true
}
