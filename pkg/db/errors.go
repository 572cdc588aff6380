package db

import "errors"

var (
	// ErrNotFound is returned when a lookup by identifier matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for writes that violate a bucket invariant.
	ErrInvalidInput = errors.New("invalid input")
)
