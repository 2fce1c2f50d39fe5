package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrInvalidTable  = errors.New("invalid table name")
	ErrInvalidColumn = errors.New("invalid column name")
	ErrInvalidPage   = errors.New("invalid page")
	ErrEmptyKey      = errors.New("upsert key must not be empty")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrClosed        = errors.New("store closed")
)
