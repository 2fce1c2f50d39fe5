package importer

import "errors"

var (
	// ErrUnknownKind is returned for an import kind the importer does not handle.
	ErrUnknownKind = errors.New("unknown import kind")
	// ErrMissingColumn is returned when a required column is absent from every row.
	ErrMissingColumn = errors.New("missing column")
	// ErrNotFound is returned when a row to delete does not exist.
	ErrNotFound = errors.New("not found")
)
