package reports

import (
	"context"
	"sort"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/talentcard"
)

// TalentCardSummary lists the SOC records of a year with counts per card.
type TalentCardSummary struct {
	Year   int                `json:"year"`
	Counts map[string]int     `json:"counts"`
	Rows   []TalentCardRecord `json:"records"`
}

// TalentCardRecord is the reported view of one SOC record.
type TalentCardRecord struct {
	AthleteID  string   `json:"athlete_id,omitempty"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Age        int      `json:"age"`
	Category   string   `json:"category"`
	Total      *float64 `json:"total"`
	MinRegio   string   `json:"min_regio"`
	MinNation  string   `json:"min_national"`
	TalentCard string   `json:"talentcard"`
}

// TalentCards returns the SOC records of year ordered by total, highest first.
// Records without a total sort last.
func (r *Reports) TalentCards(ctx context.Context, year int) (*TalentCardSummary, error) {
	rows, err := r.fetch(ctx, model.TableSocValues, model.Row{"pisteyear": year})
	if err != nil {
		return nil, err
	}
	recs := make([]model.SocValues, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, model.SocValuesFromRow(row))
	}
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Total, recs[j].Total
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})

	sum := &TalentCardSummary{
		Year: year,
		Counts: map[string]int{
			string(talentcard.National): 0,
			string(talentcard.Regional): 0,
			string(talentcard.NoCard):   0,
		},
		Rows: make([]TalentCardRecord, 0, len(recs)),
	}
	for _, s := range recs {
		if s.TalentCard != "" {
			sum.Counts[s.TalentCard]++
		}
		sum.Rows = append(sum.Rows, TalentCardRecord{
			AthleteID:  s.AthleteID,
			FirstName:  s.FirstName,
			LastName:   s.LastName,
			Age:        s.Age,
			Category:   s.Category,
			Total:      s.Total,
			MinRegio:   s.PisteMinRegio,
			MinNation:  s.PisteMinNational,
			TalentCard: s.TalentCard,
		})
	}
	return sum, nil
}
