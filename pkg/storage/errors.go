package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when an action does not exist or belongs to
	// another tenant.
	ErrNotFound = errors.New("action not found")

	// ErrConflict is returned when an action with the given ID already exists.
	ErrConflict = errors.New("action already exists")
)
