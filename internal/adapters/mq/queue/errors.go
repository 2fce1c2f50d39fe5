package queue

import "errors"

var (
	// ErrFull is returned by callers that surface a rejected Enqueue.
	ErrFull = errors.New("run queue full")
	// ErrClosed is returned by callers that enqueue after shutdown.
	ErrClosed = errors.New("run queue closed")
)
