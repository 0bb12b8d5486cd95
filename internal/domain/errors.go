package domain

import "errors"

var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidInput indicates that the provided input data is invalid.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrRepository indicates a data-store failure. It is distinguishable
	// from not-found so callers can render service-unavailable instead of
	// an empty catalog.
	ErrRepository = errors.New("repository error")
)
