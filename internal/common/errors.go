// Package common defines shared constants and sentinel errors used across
// Storebox layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound         = errors.New("not found")
	ErrInvalidSortField = errors.New("invalid sort field")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Upload pipeline errors. ErrCompensationFailed wraps ErrUploadFailed
	// when the blob written before a failed metadata insert could not be
	// removed either.
	ErrUploadFailed       = errors.New("upload failed")
	ErrCompensationFailed = errors.New("compensation failed")

	// Read/mutation path errors.
	ErrListingFailed     = errors.New("listing failed")
	ErrMutationFailed    = errors.New("mutation failed")
	ErrAggregationFailed = errors.New("aggregation failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
