// Package scoring maps raw test and competition values to points through
// piecewise-constant score tables.
package scoring

import (
	"sort"
	"strings"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/natkey"
	"github.com/okian/piste/internal/domain/numeric"
	"github.com/okian/piste/pkg/metrics"
)

// Outcome tells how a lookup resolved.
type Outcome int

// Lookup outcomes. Only Value carries points; the others score 0.
const (
	// Missing: no usable input (blank or non-numeric value, missing discipline, category or sex).
	Missing Outcome = iota
	// NoMatch: input was usable but no range row contains it.
	NoMatch
	// Zero: the value scores zero by rule (sentinel, zero-point discipline or a zero row).
	Zero
	// Value: a range row matched with non-zero points.
	Value
)

func (o Outcome) String() string {
	switch o {
	case Missing:
		return "missing"
	case NoMatch:
		return "no_match"
	case Zero:
		return "zero"
	case Value:
		return "match"
	}
	return "unknown"
}

// Result is a lookup result.
type Result struct {
	Outcome Outcome
	Value   float64
}

// Points returns the points to store; every outcome other than Value is 0.
func (r Result) Points() float64 {
	if r.Outcome == Value {
		return r.Value
	}
	return 0
}

// Lookuper resolves points for a raw value.
type Lookuper interface {
	Lookup(discipline string, raw any, category, sex string) Result
	LookupAny(discipline string, raw any) Result
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithZeroPointDisciplines sets disciplines whose values never score.
func WithZeroPointDisciplines(disciplines ...string) Option {
	return func(e *Engine) {
		for _, d := range disciplines {
			e.zeroPoint[natkey.Fold(d)] = struct{}{}
		}
	}
}

// Engine is an immutable index over a score table.
type Engine struct {
	groups     map[natkey.Key][]model.ScoreTableRow
	discipline map[natkey.Key][]model.ScoreTableRow
	zeroPoint  map[string]struct{}
}

var _ Lookuper = (*Engine)(nil)

// NewEngine indexes rows by (discipline, category, sex). Within a group rows
// keep their table order after a stable sort by result_min; rows with an
// unparsable bound are dropped.
func NewEngine(rows []model.ScoreTableRow, opts ...Option) *Engine {
	e := &Engine{
		groups:     map[natkey.Key][]model.ScoreTableRow{},
		discipline: map[natkey.Key][]model.ScoreTableRow{},
		zeroPoint:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, r := range rows {
		if r.Min == nil || r.Max == nil {
			continue
		}
		gk := groupKey(r.Discipline, r.Category, r.Sex)
		e.groups[gk] = append(e.groups[gk], r)
		dk := natkey.Of(r.Discipline)
		e.discipline[dk] = append(e.discipline[dk], r)
	}
	for _, g := range e.groups {
		sortByMin(g)
	}
	for _, g := range e.discipline {
		sortByMin(g)
	}
	return e
}

func groupKey(discipline, category, sex string) natkey.Key {
	return natkey.Of(discipline, category, natkey.Sex(sex))
}

func sortByMin(rows []model.ScoreTableRow) {
	sort.SliceStable(rows, func(i, j int) bool { return *rows[i].Min < *rows[j].Min })
}

// IsSentinel reports whether raw is the "no result" marker.
func IsSentinel(raw any) bool {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v) == model.SentinelNoResult
	case nil:
		return false
	}
	f, ok := numeric.Parse(raw)
	return ok && numeric.Format(f) == model.SentinelNoResult
}

// Lookup returns the points of the first range row of (discipline, category,
// sex) whose inclusive [result_min, result_max] contains raw.
func (e *Engine) Lookup(discipline string, raw any, category, sex string) Result {
	if strings.TrimSpace(category) == "" || strings.TrimSpace(sex) == "" {
		return e.record(Result{Outcome: Missing})
	}
	return e.lookup(discipline, raw, e.groups[groupKey(discipline, category, sex)])
}

// LookupAny is Lookup over every row of a discipline, for tables that are
// not split by category or sex.
func (e *Engine) LookupAny(discipline string, raw any) Result {
	return e.lookup(discipline, raw, e.discipline[natkey.Of(discipline)])
}

func (e *Engine) lookup(discipline string, raw any, rows []model.ScoreTableRow) Result {
	if strings.TrimSpace(discipline) == "" {
		return e.record(Result{Outcome: Missing})
	}
	if IsSentinel(raw) {
		return e.record(Result{Outcome: Zero})
	}
	if _, ok := e.zeroPoint[natkey.Fold(discipline)]; ok {
		return e.record(Result{Outcome: Zero})
	}
	v, ok := numeric.Strict(raw)
	if !ok {
		return e.record(Result{Outcome: Missing})
	}
	for _, r := range rows {
		if *r.Min <= v && v <= *r.Max {
			if r.Points == 0 {
				return e.record(Result{Outcome: Zero})
			}
			return e.record(Result{Outcome: Value, Value: r.Points})
		}
	}
	return e.record(Result{Outcome: NoMatch})
}

func (e *Engine) record(r Result) Result {
	metrics.RecordLookup(r.Outcome.String())
	return r
}

// Groups returns the number of (discipline, category, sex) groups indexed.
func (e *Engine) Groups() int { return len(e.groups) }
