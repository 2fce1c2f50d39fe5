package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/piste/internal/adapters/mq/queue"
	"github.com/okian/piste/internal/adapters/repository"
	"github.com/okian/piste/internal/adapters/tabular"
	service "github.com/okian/piste/internal/app"
	"github.com/okian/piste/internal/importer"
	"github.com/okian/piste/internal/pipeline"
	"github.com/okian/piste/internal/reports"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
)

// wrapKind tags err with an operation and an API error kind.
func wrapKind(op string, kind, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// classify maps upstream errors to a status and an error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, pipeline.ErrUnknownStage),
		errors.Is(err, pipeline.ErrInvalidYear),
		errors.Is(err, importer.ErrUnknownKind),
		errors.Is(err, importer.ErrMissingColumn),
		errors.Is(err, reports.ErrUnknownFlag),
		errors.Is(err, reports.ErrUnknownExport),
		errors.Is(err, reports.ErrInvalidQuery),
		errors.Is(err, tabular.ErrUnknownFormat),
		errors.Is(err, tabular.ErrNoHeader),
		errors.Is(err, repository.ErrInvalidTable),
		errors.Is(err, repository.ErrInvalidColumn):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrRunNotFound),
		errors.Is(err, importer.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrRunInFlight):
		return http.StatusConflict, "in_flight"
	case errors.Is(err, queue.ErrFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, queue.ErrClosed), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
