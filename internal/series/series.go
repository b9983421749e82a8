package series

import (
	"math"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/rebase"
)

// Kind tells which values an assembled series carries.
type Kind int

const (
	// KindRaw uses the published NominalRPI and RealRPI columns.
	KindRaw Kind = iota
	// KindRebased uses values derived against a rebasing snapshot.
	KindRebased
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindRebased {
		return "rebased"
	}
	return "raw"
}

// Series selects the value source for assembly.
// The zero value is the raw series.
type Series struct {
	kind     Kind
	snapshot *rebase.Snapshot
}

// Raw returns the published-values series.
func Raw() Series {
	return Series{kind: KindRaw}
}

// Rebased returns the series derived from snap. A nil snapshot yields Raw.
func Rebased(snap *rebase.Snapshot) Series {
	if snap == nil {
		return Raw()
	}
	return Series{kind: KindRebased, snapshot: snap}
}

// FromView picks Rebased when the view carries a snapshot, Raw otherwise.
func FromView(v rebase.View) Series {
	return Rebased(v.Snapshot)
}

// Kind returns the series kind.
func (s Series) Kind() Kind {
	return s.kind
}

// Snapshot returns the snapshot behind a rebased series, nil for raw.
func (s Series) Snapshot() *rebase.Snapshot {
	return s.snapshot
}

// values returns (nominal, real) for r. A record missing from the snapshot yields NaN.
func (s Series) values(r *domain.IndexRecord) (float64, float64) {
	if s.kind != KindRebased {
		return r.NominalRPI, r.RealRPI
	}
	d, ok := s.snapshot.Value(r.Period())
	if !ok {
		return math.NaN(), math.NaN()
	}
	return d.Nominal, d.Real
}
