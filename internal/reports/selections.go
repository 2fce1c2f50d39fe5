package reports

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
)

// Flags are the compresults columns a selection list can filter on.
var Flags = []string{"NationalTeam", "RegionalTeam", string(model.TierJEM), string(model.TierEM), string(model.TierWM)} //nolint:gochecknoglobals // fixed flag list

// Person is a unique selected athlete.
type Person struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SelectionList is the compresults of a year carrying a flag.
type SelectionList struct {
	Year    int         `json:"year"`
	Flag    string      `json:"flag"`
	Results []model.Row `json:"results"`
	Persons []Person    `json:"persons"`
}

// ParseFlag matches a flag name case-insensitively.
func ParseFlag(s string) (string, error) {
	for _, f := range Flags {
		if natkey.Equal(f, s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFlag, s)
}

// Selections lists compresults of competitions in year whose flag column is yes.
func (r *Reports) Selections(ctx context.Context, year int, flag string) (*SelectionList, error) {
	flag, err := ParseFlag(flag)
	if err != nil {
		return nil, err
	}
	comps, err := r.competitionsIn(ctx, year)
	if err != nil {
		return nil, err
	}
	rows, err := r.fetch(ctx, model.TableCompResults, nil)
	if err != nil {
		return nil, err
	}

	out := &SelectionList{Year: year, Flag: flag, Results: []model.Row{}, Persons: []Person{}}
	seen := map[natkey.Key]bool{}
	for _, row := range rows {
		res := model.CompetitionResultFromRow(row)
		if _, ok := comps[foldName(res.Competition)]; !ok || !row.Yes(flag) {
			continue
		}
		out.Results = append(out.Results, row)
		if k := res.NameKey(); !seen[k] {
			seen[k] = true
			out.Persons = append(out.Persons, Person{FirstName: res.FirstName, LastName: res.LastName})
		}
	}
	sort.Slice(out.Persons, func(i, j int) bool {
		a, b := out.Persons[i], out.Persons[j]
		if !strings.EqualFold(a.LastName, b.LastName) {
			return strings.ToLower(a.LastName) < strings.ToLower(b.LastName)
		}
		return strings.ToLower(a.FirstName) < strings.ToLower(b.FirstName)
	})
	return out, nil
}

func foldName(s string) string { return natkey.Fold(s) }
