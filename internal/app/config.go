package service

import (
	"context"
	"fmt"

	"github.com/okian/piste/internal/adapters/repository"
	"github.com/okian/piste/internal/config"
	"github.com/okian/piste/internal/domain/aggregate"
	"github.com/okian/piste/internal/domain/scoring"
	"github.com/okian/piste/internal/domain/selection"
	"github.com/okian/piste/internal/pipeline"
)

// OpenStore opens the configured store behind a paging Repo.
func OpenStore(ctx context.Context, cfg *config.Config) (*repository.Repo, error) {
	store, err := repository.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return repository.NewRepo(store, repository.WithPageSize(cfg.PageSize)), nil
}

// RunnerOptions maps the scoring and selection settings of cfg to runner options.
func RunnerOptions(cfg *config.Config) []pipeline.Option {
	return []pipeline.Option{
		pipeline.WithCalculator(aggregate.NewCalculator(
			aggregate.WithExcludedDisciplines(cfg.ExcludedDisciplines...),
		)),
		pipeline.WithEvaluator(selection.NewEvaluator(
			selection.WithNationalTeamPercent(cfg.NationalTeamPercent),
			selection.WithRegionalTeamPercent(cfg.RegionalTeamPercent),
			selection.WithSynchroExcludedCategories(cfg.SynchroExcludedCategories...),
		)),
		pipeline.WithScoringOptions(scoring.WithZeroPointDisciplines(cfg.ZeroPointDisciplines...)),
		pipeline.WithRefAges(cfg.RefMinAge, cfg.RefMaxAge),
		pipeline.WithFirstRefYear(cfg.FirstRefYear),
	}
}

// OptionsFromConfig maps cfg to service options.
func OptionsFromConfig(cfg *config.Config) []Option {
	return []Option{
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.RunQueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithRunnerOptions(RunnerOptions(cfg)...),
	}
}
