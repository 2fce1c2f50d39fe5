// Package types contains the read shapes shared by the service and the HTTP API.
package types

import "time"

// RunState is the lifecycle state of a submitted run.
type RunState string

// Run states.
const (
	RunQueued   RunState = "queued"
	RunRunning  RunState = "running"
	RunDone     RunState = "done"
	RunFailed   RunState = "failed"
	RunRejected RunState = "rejected"
)

// Terminal reports whether no further transition follows.
func (s RunState) Terminal() bool {
	return s == RunDone || s == RunFailed || s == RunRejected
}

// Failure is a row a stage could not process.
type Failure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// Step is the outcome of one stage of a run.
type Step struct {
	Stage     string    `json:"stage"`
	Processed int       `json:"processed"`
	Written   int       `json:"written"`
	Skipped   int       `json:"skipped"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Run is the status of a submitted recomputation.
type Run struct {
	ID        string     `json:"id"`
	Stage     string     `json:"stage"`
	Year      int        `json:"year"`
	NewOnly   bool       `json:"new_only,omitempty"`
	State     RunState   `json:"state"`
	Submitted time.Time  `json:"submitted"`
	Started   *time.Time `json:"started,omitempty"`
	Finished  *time.Time `json:"finished,omitempty"`
	Error     string     `json:"error,omitempty"`
	Steps     []Step     `json:"steps,omitempty"`
}
