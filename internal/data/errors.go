package data

import "errors"

// Shared sentinel errors for data-layer repositories.
var (
	// ErrJobIDRequired is returned when an operation is missing its job id.
	ErrJobIDRequired = errors.New("job id is required")
	// ErrApplicationIDRequired is returned when an operation is missing its application id.
	ErrApplicationIDRequired = errors.New("application id is required")
	// ErrEmptyUpdate is returned when an update request carries no fields.
	ErrEmptyUpdate = errors.New("update request has no fields to apply")
)
