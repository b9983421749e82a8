package rebase

import (
	"fmt"
	"math"

	"rpi-index-lab/internal/domain"
)

// Derived holds the rebased values of one record.
type Derived struct {
	Index   float64 // raw CPI rescaled so the base quarter = 100
	Nominal float64 // nominal RPI rescaled so the base quarter = 100
	Real    float64 // Nominal / Index * 100
}

// Snapshot is an immutable set of derived values computed against one base period.
type Snapshot struct {
	Base              domain.Period
	Version           uint64 // increments with every successful rebase of a store
	IndexMultiplier   float64
	NominalMultiplier float64

	values map[domain.Period]Derived
}

// Value returns the derived values for p.
func (s *Snapshot) Value(p domain.Period) (Derived, bool) {
	d, ok := s.values[p]
	return d, ok
}

// Len returns the number of records covered by the snapshot.
func (s *Snapshot) Len() int {
	return len(s.values)
}

// Compute derives base-100 index, nominal and real values for every record.
//
//	indexMultiplier   = 100 / base.RawCPI
//	nominalMultiplier = 100 / base.NominalRPI
//	derivedIndex      = r.RawCPI * indexMultiplier
//	derivedNominal    = r.NominalRPI * nominalMultiplier
//	derivedReal       = derivedNominal / derivedIndex * 100
//
// A zero raw CPI on a non-base record yields non-finite values for that record only.
func Compute(records []domain.IndexRecord, base domain.Period) (*Snapshot, error) {
	if !base.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, base.Quarter)
	}

	var baseRec *domain.IndexRecord
	for i := range records {
		if records[i].Year == base.Year && records[i].Quarter == base.Quarter {
			baseRec = &records[i]
			break
		}
	}
	if baseRec == nil {
		return nil, fmt.Errorf("%w: %s", ErrBaseNotFound, base.Label())
	}
	if !usable(baseRec.RawCPI) || !usable(baseRec.NominalRPI) {
		return nil, fmt.Errorf("%w: %s raw_cpi=%g nominal_rpi=%g",
			ErrDegenerateBase, base.Label(), baseRec.RawCPI, baseRec.NominalRPI)
	}

	indexMultiplier := 100 / baseRec.RawCPI
	nominalMultiplier := 100 / baseRec.NominalRPI

	values := make(map[domain.Period]Derived, len(records))
	for _, r := range records {
		idx := r.RawCPI * indexMultiplier
		nom := r.NominalRPI * nominalMultiplier
		values[r.Period()] = Derived{
			Index:   idx,
			Nominal: nom,
			Real:    (nom / idx) * 100,
		}
	}

	return &Snapshot{
		Base:              base,
		IndexMultiplier:   indexMultiplier,
		NominalMultiplier: nominalMultiplier,
		values:            values,
	}, nil
}

// usable reports whether v can serve as a divisor for rebasing.
func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
