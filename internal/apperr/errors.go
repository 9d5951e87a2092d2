package apperr

import "errors"

// ErrNotFound marks a lookup miss (unknown slug, topic, or folder). Callers
// translate it to a not-found result; it is never an internal failure.
var ErrNotFound = errors.New("not found")
