// Package selection evaluates competition results against selection
// thresholds and derives the team flags.
package selection

import (
	"strings"
	"time"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/numeric"
)

// Tables supplies thresholds and dive counts.
type Tables interface {
	Threshold(tier model.Tier, sex, discipline, category string) (model.SelectionThreshold, bool)
	Dives(sex, category, discipline string) (float64, bool)
}

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithNationalTeamPercent sets the international percentage earning the national team flag.
func WithNationalTeamPercent(p float64) Option {
	return func(e *Evaluator) { e.nationalPercent = p }
}

// WithRegionalTeamPercent sets the regional percentage earning the regional team flag.
func WithRegionalTeamPercent(p float64) Option {
	return func(e *Evaluator) { e.regionalPercent = p }
}

// WithSynchroExcludedCategories replaces the categories barred from synchro qualification.
func WithSynchroExcludedCategories(categories ...string) Option {
	return func(e *Evaluator) {
		e.synchroExcluded = map[string]struct{}{}
		for _, c := range categories {
			e.synchroExcluded[natkey.Fold(c)] = struct{}{}
		}
	}
}

// Evaluator is stateless after construction and safe for concurrent use.
type Evaluator struct {
	nationalPercent float64
	regionalPercent float64
	synchroExcluded map[string]struct{}
}

// NewEvaluator creates an Evaluator with the 90/70 percent rules and the
// Jugend C/D synchro exclusion.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{nationalPercent: 90, regionalPercent: 70}
	WithSynchroExcludedCategories("Jugend C", "Jugend D")(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TierResult is the outcome of one tier.
type TierResult struct {
	Tier       model.Tier
	Qualifying bool
	Status     bool
	Percent    *float64
}

// Evaluation holds every derived field of a competition result.
type Evaluation struct {
	Tiers           []TierResult
	NationalTeam    bool
	RegionalTeam    bool
	SynchroExcluded bool
	AveragePoints   *float64
	EvaluatedAt     time.Time
}

// Tier returns the result of a tier.
func (ev Evaluation) Tier(t model.Tier) TierResult {
	for _, tr := range ev.Tiers {
		if tr.Tier == t {
			return tr
		}
	}
	return TierResult{Tier: t}
}

// SynchroExcluded reports whether a category may not qualify regionally or
// nationally in a synchro discipline.
func (e *Evaluator) SynchroExcluded(category, discipline string) bool {
	if !strings.Contains(natkey.Fold(discipline), "synchro") {
		return false
	}
	_, ok := e.synchroExcluded[natkey.Fold(category)]
	return ok
}

// Evaluate derives the tier statuses and team flags of r at competition c.
// found is false when the competition is unknown; nothing then qualifies.
func (e *Evaluator) Evaluate(r model.CompetitionResult, c model.Competition, found bool, tables Tables, now time.Time) Evaluation {
	ev := Evaluation{
		SynchroExcluded: e.SynchroExcluded(r.Category, r.Discipline),
		EvaluatedAt:     now,
	}
	if r.Points != nil {
		if dives, ok := tables.Dives(r.Sex, r.Category, r.Discipline); ok && dives != 0 {
			ev.AveragePoints = numeric.Float(numeric.Round(*r.Points/dives, 2))
		}
	}

	for _, tier := range model.SelectionTiers {
		tr := TierResult{Tier: tier, Qualifying: found && c.Qualifies[tier]}
		if ev.SynchroExcluded && (tier == model.TierRegional || tier == model.TierNational) {
			tr.Qualifying = false
		}
		th, ok := tables.Threshold(tier, r.Sex, r.Discipline, r.Category)
		if ok && th.Points != nil && r.Points != nil {
			if p, ok := numeric.Percent(*r.Points, *th.Points, 1); ok {
				tr.Percent = &p
			}
			tr.Status = tr.Qualifying && *r.Points >= *th.Points
		}
		ev.Tiers = append(ev.Tiers, tr)

		switch {
		case tier.International():
			if tr.Qualifying && tr.Percent != nil && *tr.Percent >= e.nationalPercent {
				ev.NationalTeam = true
			}
		case tier == model.TierRegional:
			if tr.Qualifying && tr.Percent != nil && *tr.Percent >= e.regionalPercent {
				ev.RegionalTeam = true
			}
		}
	}
	return ev
}

// Row renders the derived columns written back to compresults.
func (ev Evaluation) Row() model.Row {
	r := model.Row{
		"NationalTeam":  model.YesNo(ev.NationalTeam),
		"RegionalTeam":  model.YesNo(ev.RegionalTeam),
		"AveragePoints": model.OptionalFloat(ev.AveragePoints),
		"timestamp":     ev.EvaluatedAt.Format(model.TimestampLayout),
	}
	for _, tr := range ev.Tiers {
		r[string(tr.Tier)] = model.YesNo(tr.Status)
		r[tr.Tier.PercentColumn()] = model.OptionalFloat(tr.Percent)
	}
	return r
}
