package rebase

import "errors"

// Errors returned by the rebasing engine.
var (
	// ErrBaseNotFound is returned when no record exists for the requested base period.
	// The previously active snapshot is left untouched.
	ErrBaseNotFound = errors.New("no index record for base period")

	// ErrDegenerateBase is returned when the base record's raw CPI or nominal RPI
	// is zero or non-finite, which would make every derived value non-finite.
	ErrDegenerateBase = errors.New("base record has zero or non-finite index value")

	// ErrInvalidPeriod is returned when the quarter is outside 1..4.
	ErrInvalidPeriod = errors.New("quarter must be within 1..4")

	// ErrDuplicatePeriod is returned by NewIndexStore when two records share a quarter.
	ErrDuplicatePeriod = errors.New("duplicate index record for quarter")
)
