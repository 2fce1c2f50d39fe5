// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New(ctx) builds a Config holding the defaults.
// - Load(ctx) layers an optional YAML file and PISTE_ environment variables on top.
package config

import (
	"context"
)

// Store drivers understood by the repository adapters.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the data store: memory, sqlite or pgx.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is passed to sql.Open for the sqlite and pgx drivers.
	StoreDSN string `koanf:"store_dsn"`

	// PageSize is the fixed page size used when paging through store tables.
	PageSize int `koanf:"page_size"`

	// RunQueueSize bounds the pending recomputation run queue.
	RunQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of run workers. Runs touching the same
	// tables are not safe to overlap, so the default is one.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the in-flight run key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ExcludedDisciplines are raw measurements that never score and never aggregate.
	ExcludedDisciplines []string `koanf:"excluded_disciplines"`

	// ZeroPointDisciplines store their raw value but always score zero.
	ZeroPointDisciplines []string `koanf:"zero_point_disciplines"`

	// SynchroExcludedCategories may not qualify regionally or nationally in synchro events.
	SynchroExcludedCategories []string `koanf:"synchro_excluded_categories"`

	// NationalTeamPercent is the continental/world percentage that earns the national team flag.
	NationalTeamPercent float64 `koanf:"national_team_percent"`

	// RegionalTeamPercent is the regional percentage that earns the regional team flag.
	RegionalTeamPercent float64 `koanf:"regional_team_percent"`

	// RefMinAge and RefMaxAge bound the reference point table columns.
	RefMinAge int `koanf:"ref_min_age"`
	RefMaxAge int `koanf:"ref_max_age"`

	// FirstRefYear is the earliest year considered for the performance delta.
	FirstRefYear int `koanf:"first_ref_year"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                  "info",
		LogFormat:                 "text",
		Addr:                      ":9080",
		StoreDriver:               DriverMemory,
		PageSize:                  1000,
		RunQueueSize:              64,
		WorkerCount:               1,
		DedupeSize:                1024,
		ExcludedDisciplines:       []string{"BodySize", "UpperBodySize", "BodyWeight"},
		ZeroPointDisciplines:      []string{"NumberOfDisc"},
		SynchroExcludedCategories: []string{"Jugend C", "Jugend D"},
		NationalTeamPercent:       90,
		RegionalTeamPercent:       70,
		RefMinAge:                 9,
		RefMaxAge:                 19,
		FirstRefYear:              2024,
	}
}
