package backfill

import "errors"

var (
	// ErrNoProgress is returned when an upstream page ends at or before the cursor it was requested at.
	// Repeating the request would return the same page, so the run stops.
	ErrNoProgress = errors.New("upstream page did not advance the cursor")

	// ErrMissingParent is returned when pool earnings are written without a parent identifier.
	ErrMissingParent = errors.New("pool earnings have no parent identifier")
)
