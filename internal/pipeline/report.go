package pipeline

import (
	"time"

	"github.com/okian/piste/internal/domain/model"
)

// Failure is a row that could not be processed. The run continued past it.
type Failure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// Step is the outcome of one stage.
type Step struct {
	Stage     model.Stage `json:"stage"`
	Processed int         `json:"processed"`
	Written   int         `json:"written"`
	Skipped   int         `json:"skipped"`
	Failures  []Failure   `json:"failures,omitempty"`
}

func (s *Step) fail(key string, err error) {
	s.Failures = append(s.Failures, Failure{Key: key, Error: err.Error()})
}

// Report summarizes a run.
type Report struct {
	Stage    model.Stage `json:"stage"`
	Year     int         `json:"year"`
	Started  time.Time   `json:"started"`
	Finished time.Time   `json:"finished"`
	Steps    []Step      `json:"steps"`
}

// Failed returns the number of failed rows over all steps.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Steps {
		n += len(s.Failures)
	}
	return n
}

// Step returns the step of a stage, if it ran.
func (r *Report) Step(stage model.Stage) (Step, bool) {
	for _, s := range r.Steps {
		if s.Stage == stage {
			return s, true
		}
	}
	return Step{}, false
}
