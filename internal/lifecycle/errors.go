package lifecycle

import "errors"

// Callers classify failures with errors.Is; the wrapped message is meant for humans.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)
