package domain

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidURL              = errors.New("invalid url")
	ErrInvalidCode             = errors.New("invalid code")
	ErrCodeConflict            = errors.New("code already exists")
	ErrCodeGenerationExhausted = errors.New("code generation exhausted")

	// ErrStoreUnavailable marks failures of the backing store. Adapters join it
	// with the driver error so callers can still inspect the cause.
	ErrStoreUnavailable = errors.New("store unavailable")
)
