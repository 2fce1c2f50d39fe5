package service

import (
	"github.com/okian/piste/internal/importer"
	"github.com/okian/piste/internal/pipeline"
	"github.com/okian/piste/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of run workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending runs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the in-flight run key cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithHistorySize bounds the number of finished runs kept for status queries.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunnerOptions configures the pipeline runner.
func WithRunnerOptions(opts ...pipeline.Option) Option {
	return func(s *Service) { s.runnerOpts = append(s.runnerOpts, opts...) }
}

// WithImporterOptions configures the importer.
func WithImporterOptions(opts ...importer.Option) Option {
	return func(s *Service) { s.importerOpts = append(s.importerOpts, opts...) }
}
