package pipeline

import "errors"

var (
	// ErrUnknownStage is returned for a stage name the runner does not know.
	ErrUnknownStage = errors.New("unknown stage")
	// ErrInvalidYear is returned for a non-positive evaluation year.
	ErrInvalidYear = errors.New("invalid year")
	// ErrUnknownAthlete marks a row whose athlete cannot be resolved.
	ErrUnknownAthlete = errors.New("unknown athlete")
)
