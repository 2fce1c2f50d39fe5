package importer

import (
	"time"

	"github.com/okian/piste/pkg/logger"
)

// Option applies a configuration option to the Importer.
type Option func(*Importer)

// WithClock replaces time.Now, used for the import-time athlete category.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// WithLogger sets the importer logger.
func WithLogger(l logger.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}
