// Package smoke drives a running piste service end to end: it uploads a
// generated cohort of athletes and piste results, runs the full pipeline
// and checks the talent cards that come out.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumAthletes  int           // Number of athletes to generate
	Year         int           // Piste year of the generated results
	BatchSize    int           // Piste result rows per upload
	Workers      int           // Concurrent uploads
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between run status checks
	OutputDir    string        // Where the generated CSV files are kept; empty keeps none
	Verbose      bool
}

// Athlete is a generated athlete.
type Athlete struct {
	FirstName string
	LastName  string
	Birthdate string
	Sex       string
	Club      string
}

// ImportResult is the reply of POST /import/{kind}.
type ImportResult struct {
	Kind    string `json:"kind"`
	Stored  int    `json:"stored"`
	Skipped []struct {
		Row    int    `json:"row"`
		Key    string `json:"key"`
		Reason string `json:"reason"`
	} `json:"skipped"`
}

// RunStatus is the reply of POST /runs and GET /runs/{id}.
type RunStatus struct {
	ID    string `json:"id"`
	Stage string `json:"stage"`
	Year  int    `json:"year"`
	State string `json:"state"`
	Error string `json:"error"`
	Steps []struct {
		Stage     string `json:"stage"`
		Processed int    `json:"processed"`
		Written   int    `json:"written"`
		Skipped   int    `json:"skipped"`
		Failures  []struct {
			Key   string `json:"key"`
			Error string `json:"error"`
		} `json:"failures"`
	} `json:"steps"`
}

// TalentCards is the reply of GET /talentcards.
type TalentCards struct {
	Year    int            `json:"year"`
	Counts  map[string]int `json:"counts"`
	Records []struct {
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		TalentCard string `json:"talentcard"`
	} `json:"records"`
}

// Stats holds smoke run statistics.
type Stats struct {
	AthletesGenerated int
	AthletesStored    int
	ResultsGenerated  int
	ResultsStored     int
	RowsSkipped       int
	UploadsFailed     int
	RowsFailed        int
	TalentCards       int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
