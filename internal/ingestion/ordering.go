package ingestion

import (
	"errors"
	"sort"

	"rpi-index-lab/internal/domain"
)

// ErrInvalidOrdering is returned when records are not in chronological order.
var ErrInvalidOrdering = errors.New("records are not in chronological order")

// SortIndexRecords orders records by (year ASC, quarter ASC).
func SortIndexRecords(records []*domain.IndexRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Ordinal() < records[j].Ordinal()
	})
}

// SortPriceRecords orders records by (year, quarter, town, flat_type) ASC.
// The sort is stable so duplicate keys keep their load order.
func SortPriceRecords(records []*domain.PriceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return comparePriceRecords(records[i], records[j]) < 0
	})
}

// ValidateIndexOrdering checks that records are strictly ascending by quarter.
func ValidateIndexOrdering(records []*domain.IndexRecord) error {
	for i := 1; i < len(records); i++ {
		if records[i-1].Ordinal() >= records[i].Ordinal() {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// ValidatePriceOrdering checks that records are non-decreasing by key.
func ValidatePriceOrdering(records []*domain.PriceRecord) error {
	for i := 1; i < len(records); i++ {
		if comparePriceRecords(records[i-1], records[i]) > 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

func comparePriceRecords(a, b *domain.PriceRecord) int {
	if ao, bo := a.Period().Ordinal(), b.Period().Ordinal(); ao != bo {
		if ao < bo {
			return -1
		}
		return 1
	}
	if a.Town != b.Town {
		if a.Town < b.Town {
			return -1
		}
		return 1
	}
	if a.FlatType != b.FlatType {
		if a.FlatType < b.FlatType {
			return -1
		}
		return 1
	}
	return 0
}
