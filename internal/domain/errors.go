package domain

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the input failed a domain rule.
	ErrValidation = errors.New("validation error")
	// ErrConflict indicates the operation clashes with current record state.
	ErrConflict = errors.New("conflict")
	// ErrStorage indicates the backing store could not be reached.
	ErrStorage = errors.New("storage unavailable")
	// ErrDecode indicates a persisted record could not be decoded.
	ErrDecode = errors.New("decode error")
)
