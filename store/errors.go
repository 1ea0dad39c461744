package store

import "errors"

// ErrUnavailable means the store could not be made usable even after a
// full reset, or the retry budget for an operation is exhausted. The
// only recovery is user action (restart or refresh the session).
var ErrUnavailable = errors.New("database unavailable: refresh required")
