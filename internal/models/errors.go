package models

import "errors"

// Errors shared by every Backend implementation so callers can react to the
// outcome without knowing whether it came over HTTP or from the database.
var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the request clashes with state the backend already
	// holds: the assignment is already started or completed, or the set was
	// already logged.
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid request")
)
