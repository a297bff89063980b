package dispatcher

import "errors"

// Call-level error taxonomy. NotAuthorized and NotFound are terminal per
// call and never retried; Exhausted means the retry budget ran out on a
// transient condition. Everything transient below those is absorbed by
// the Transport's retry loop and never surfaces.
var (
	ErrNotAuthorized = errors.New("dispatcher: not authorized")
	ErrNotFound      = errors.New("dispatcher: resource not found")
	ErrExhausted     = errors.New("dispatcher: retry budget exhausted")
)
