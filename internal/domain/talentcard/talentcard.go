// Package talentcard turns the SOC composite into the final talent card tier.
package talentcard

import (
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/numeric"
)

// Card is a talent card tier.
type Card string

// Tiers, in descending order.
const (
	National Card = "National"
	Regional Card = "Regional"
	NoCard   Card = "noCard"
)

// Input is everything the decision table needs.
type Input struct {
	Total            *float64
	Min              *model.MinPoints
	NationalTeamFlag bool
	RegionalTeamFlag bool
}

// Decision is a classification with the threshold flags it was based on.
type Decision struct {
	Card        Card
	MinRegio    bool
	MinNational bool
}

// Classify applies the decision table. ok is false, and the athlete is
// skipped, when the total or the age threshold row is unavailable.
func Classify(in Input) (Decision, bool) {
	if in.Total == nil || in.Min == nil {
		return Decision{}, false
	}
	d := Decision{
		MinRegio:    in.Min.RegioMin != nil && *in.Total >= *in.Min.RegioMin,
		MinNational: in.Min.NationalMin != nil && *in.Total >= *in.Min.NationalMin,
	}
	switch {
	case d.MinNational && in.NationalTeamFlag:
		d.Card = National
	case d.MinRegio && in.RegionalTeamFlag:
		d.Card = Regional
	default:
		d.Card = NoCard
	}
	return d, true
}

// Total sums the present contributions. nil when none is present.
func Total(contributions map[string]*float64) *float64 {
	var (
		sum  float64
		seen bool
	)
	for _, c := range model.Contributions {
		if v := contributions[c]; v != nil {
			sum += *v
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return numeric.Float(numeric.Round(sum, 2))
}

// YesNo renders the threshold flags the way the SOC table stores them.
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
