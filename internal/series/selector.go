package series

import (
	"sort"

	"rpi-index-lab/internal/domain"
)

// SelectRange returns the records whose period lies within the closed range
// spanned by start and end, sorted ascending. Endpoint order does not matter
// and endpoints need not exist in the data.
func SelectRange(records []domain.IndexRecord, start, end domain.Period) []domain.IndexRecord {
	lo, hi := domain.PeriodRange{Start: start, End: end}.Bounds()

	out := make([]domain.IndexRecord, 0)
	for _, r := range records {
		o := r.Ordinal()
		if o >= lo && o <= hi {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Ordinal() < out[j].Ordinal()
	})
	return out
}
