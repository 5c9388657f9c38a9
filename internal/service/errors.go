package service

import "errors"

// Typed errors so the delivery layer can map them to HTTP status codes.
var (
	// ErrInvalidScope covers unrecognized method names and out-of-range
	// confidence thresholds. Rejected before any repository access.
	ErrInvalidScope = errors.New("invalid detection scope")

	// ErrRepositoryUnavailable means the submission store could not be
	// reached at all. Distinct from an empty result set, which is a valid
	// outcome.
	ErrRepositoryUnavailable = errors.New("submission repository unavailable")
)
