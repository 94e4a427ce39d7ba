// Package apperr defines the sentinel errors shared across Solace layers.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrEmptyContent    = errors.New("content is empty")
	ErrInvalidMood     = errors.New("invalid mood")
	ErrSummaryInFlight = errors.New("summary already in flight")
)
