package storage

import "errors"

// Storage errors for dataset stores.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert an index record
	// whose (year, quarter) already exists. Index records are unique per quarter.
	ErrDuplicateKey = errors.New("duplicate key: index record already exists for quarter")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
