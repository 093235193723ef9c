package shared

import "errors"

// ErrNotFound is the base not-found sentinel. Each domain package wraps it
// with its own prefix so errors.Is matches at either level.
var ErrNotFound = errors.New("not found")
