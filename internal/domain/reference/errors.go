package reference

import "errors"

// ErrLoad wraps failures reading a reference table.
var ErrLoad = errors.New("load reference table")
