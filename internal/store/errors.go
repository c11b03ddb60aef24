package store

import "errors"

var (
	// ErrNotFound is returned when the requested key has no stored value.
	ErrNotFound = errors.New("store: not found")
)
