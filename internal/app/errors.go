package service

import "errors"

var (
	// ErrNotStarted is returned when runs are submitted before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrRunInFlight is returned when a run of the same stage and year is queued or running.
	ErrRunInFlight = errors.New("run already in flight")
	// ErrRunNotFound is returned for an unknown run id.
	ErrRunNotFound = errors.New("run not found")
)
