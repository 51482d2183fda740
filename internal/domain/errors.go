package domain

import "errors"

// Shared error taxonomy. Pure functions return these as values; handlers map
// them to HTTP status codes in one place.
var (
	ErrValidation       = errors.New("validation error")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrTransport        = errors.New("transport failure")
	ErrCancelled        = errors.New("operation cancelled")
)
