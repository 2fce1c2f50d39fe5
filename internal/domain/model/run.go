package model

import (
	"strconv"
	"time"
)

// Stage names a recomputation stage.
type Stage string

// Pipeline stages.
const (
	StagePiste        Stage = "piste"
	StageCompetitions Stage = "competitions"
	StageRefPoints    Stage = "refpoints"
	StageSoc          Stage = "soc"
	StageFull         Stage = "full"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StagePiste, StageCompetitions, StageRefPoints, StageSoc, StageFull:
		return true
	}
	return false
}

// RunRequest asks for one recomputation of a stage for a year.
type RunRequest struct {
	RunID     string
	Stage     Stage
	Year      int
	NewOnly   bool
	Submitted time.Time
}

// DedupeKey identifies runs that must not be in flight together. The
// competitions stage spans every year, so its key carries no year.
func (r RunRequest) DedupeKey() string {
	if r.Stage == StageCompetitions {
		return string(r.Stage)
	}
	return string(r.Stage) + ":" + strconv.Itoa(r.Year)
}
