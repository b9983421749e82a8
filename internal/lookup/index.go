package lookup

import (
	"errors"

	"rpi-index-lab/internal/domain"
)

// Errors returned by lookup functions.
var (
	ErrNoIndexData   = errors.New("no index data available")
	ErrPriceNotFound = errors.New("no matching price found")
)

// NearestIndexAt returns the latest record at or before target.
// If every record is after target, the first record is returned.
// Records must be sorted by ordinal. Returns ErrNoIndexData if records is empty.
func NearestIndexAt(target domain.Period, records []domain.IndexRecord) (domain.IndexRecord, error) {
	if len(records) == 0 {
		return domain.IndexRecord{}, ErrNoIndexData
	}

	o := target.Ordinal()
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Ordinal() <= o {
			return records[i], nil
		}
	}

	return records[0], nil
}
