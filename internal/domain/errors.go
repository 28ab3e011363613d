package domain

import "errors"

// Sentinel errors raised by the service layer and the repositories.
// Handlers map these to HTTP statuses; everything else is a 500.
var (
	// ErrNotFound: the referenced hotel id or image URL does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict: a hotel with the same name (case-insensitive) already
	// exists, whether caught by the pre-check or by the DB constraint.
	ErrConflict = errors.New("conflict")

	// ErrValidation: malformed or missing input (blank required field,
	// empty file list, unsafe path).
	ErrValidation = errors.New("validation error")
)
