package series

import (
	"rpi-index-lab/internal/domain"
)

// Assembled is a chart-ready series: three parallel sequences of equal length.
type Assembled struct {
	Kind    Kind
	Periods []domain.Period
	Labels  []string
	Nominal []float64
	Real    []float64
}

// Len returns the number of points.
func (a Assembled) Len() int {
	return len(a.Labels)
}

// Empty reports whether the series has no points.
func (a Assembled) Empty() bool {
	return len(a.Labels) == 0
}

// Assemble projects records into labels and value sequences, preserving order.
func Assemble(records []domain.IndexRecord, s Series) Assembled {
	a := Assembled{
		Kind:    s.kind,
		Periods: make([]domain.Period, 0, len(records)),
		Labels:  make([]string, 0, len(records)),
		Nominal: make([]float64, 0, len(records)),
		Real:    make([]float64, 0, len(records)),
	}

	for i := range records {
		r := &records[i]
		nominal, realValue := s.values(r)
		a.Periods = append(a.Periods, r.Period())
		a.Labels = append(a.Labels, r.Label())
		a.Nominal = append(a.Nominal, nominal)
		a.Real = append(a.Real, realValue)
	}

	return a
}
