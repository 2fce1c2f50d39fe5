package pipeline

import (
	"time"

	"github.com/okian/piste/internal/domain/aggregate"
	"github.com/okian/piste/internal/domain/scoring"
	"github.com/okian/piste/internal/domain/selection"
	"github.com/okian/piste/pkg/logger"
)

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithCalculator sets the piste total calculator.
func WithCalculator(c *aggregate.Calculator) Option {
	return func(r *Runner) {
		if c != nil {
			r.calc = c
		}
	}
}

// WithEvaluator sets the selection evaluator.
func WithEvaluator(e *selection.Evaluator) Option {
	return func(r *Runner) {
		if e != nil {
			r.eval = e
		}
	}
}

// WithScoringOptions configures the score engine built from the reference tables.
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(r *Runner) { r.scoringOpts = append(r.scoringOpts, opts...) }
}

// WithRefAges bounds the ages for which reference percentages are computed.
func WithRefAges(minAge, maxAge int) Option {
	return func(r *Runner) {
		r.refMinAge = minAge
		r.refMaxAge = maxAge
	}
}

// WithFirstRefYear sets the earliest year the performance delta looks back to.
func WithFirstRefYear(year int) Option {
	return func(r *Runner) { r.firstRefYear = year }
}

// WithClock replaces time.Now for evaluation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the runner logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}
