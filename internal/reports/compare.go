package reports

import (
	"context"
	"fmt"
	"strconv"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/numeric"
)

// CompareQuery selects an athlete's results and the big competition to compare them with.
type CompareQuery struct {
	FirstName string
	LastName  string
	// Big competition and its year.
	Competition string
	BigYear     int
	// Year of the athlete's competitions, taken from the competition date.
	Year int
}

// Comparison is one competition result set against each reference rank.
type Comparison struct {
	Competition string              `json:"competition"`
	Date        string              `json:"date"`
	Discipline  string              `json:"discipline"`
	Sex         string              `json:"sex"`
	Category    string              `json:"category"`
	Points      *float64            `json:"points"`
	Reference   string              `json:"reference"`
	Percent     map[string]*float64 `json:"percent"`
}

// Compare relates each result of the athlete in competitions of q.Year to
// the points per rank at the big competition: round(points/big*100, 1).
// A rank without reference points, or with zero points, yields nil.
func (r *Reports) Compare(ctx context.Context, q CompareQuery) ([]Comparison, error) {
	if q.FirstName == "" || q.LastName == "" || q.Competition == "" {
		return nil, fmt.Errorf("%w: athlete name and big competition are required", ErrInvalidQuery)
	}

	bigRows, err := r.fetch(ctx, model.TableBigResults, nil)
	if err != nil {
		return nil, err
	}
	big := map[natkey.Key]float64{}
	for _, row := range bigRows {
		b := model.BigResultFromRow(row)
		if b.Year != q.BigYear || !natkey.Equal(b.Competition, q.Competition) || b.Points == nil {
			continue
		}
		big[natkey.Of(b.Discipline, b.Sex, b.Category, b.Rank)] = *b.Points
	}

	compRows, err := r.fetch(ctx, model.TableCompetitions, nil)
	if err != nil {
		return nil, err
	}
	dates := map[string]string{}
	for _, row := range compRows {
		c := model.CompetitionFromRow(row)
		if competitionYear(c) == q.Year {
			dates[foldName(c.Name)] = c.Date
		}
	}

	results, err := r.fetch(ctx, model.TableCompResults, nil)
	if err != nil {
		return nil, err
	}
	person := natkey.Name(q.FirstName, q.LastName)
	out := []Comparison{}
	for _, row := range results {
		res := model.CompetitionResultFromRow(row)
		date, ok := dates[foldName(res.Competition)]
		if !ok || res.NameKey() != person {
			continue
		}
		cmp := Comparison{
			Competition: res.Competition,
			Date:        date,
			Discipline:  res.Discipline,
			Sex:         res.Sex,
			Category:    res.Category,
			Points:      res.Points,
			Reference:   q.Competition,
			Percent:     make(map[string]*float64, len(model.BigRanks)),
		}
		for _, rank := range model.BigRanks {
			cmp.Percent[rank] = nil
			ref, ok := big[natkey.Of(res.Discipline, res.Sex, res.Category, rank)]
			if !ok || res.Points == nil {
				continue
			}
			if pct, ok := numeric.Percent(*res.Points, ref, 1); ok {
				cmp.Percent[rank] = numeric.Float(pct)
			}
		}
		out = append(out, cmp)
	}
	return out, nil
}

// competitionYear reads the year from the first four characters of the date,
// falling back to PisteYear.
func competitionYear(c model.Competition) int {
	if len(c.Date) >= 4 {
		if y, err := strconv.Atoi(c.Date[:4]); err == nil {
			return y
		}
	}
	return c.PisteYear
}
