package series

import (
	"encoding/json"
	"fmt"
	"math"

	"rpi-index-lab/internal/domain"
)

// Dataset names.
const (
	DatasetNominal = "Nominal"
	DatasetReal    = "Real"
)

// Value is a chart point. Non-finite values marshal as JSON null.
type Value float64

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Dataset is one named line of a chart.
type Dataset struct {
	Name   string  `json:"name"`
	Values []Value `json:"values"`
}

// ChartData is the payload handed to a chart renderer.
type ChartData struct {
	Kind     string    `json:"kind"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Chart converts an assembled series into two named datasets.
func Chart(a Assembled) ChartData {
	return ChartData{
		Kind:   a.Kind.String(),
		Labels: append([]string{}, a.Labels...),
		Datasets: []Dataset{
			{Name: DatasetNominal, Values: toValues(a.Nominal)},
			{Name: DatasetReal, Values: toValues(a.Real)},
		},
	}
}

func toValues(in []float64) []Value {
	out := make([]Value, len(in))
	for i, f := range in {
		out[i] = Value(f)
	}
	return out
}

// NoDataMessage is shown when a range selects nothing.
const NoDataMessage = "No data in range"

// Summary describes the plotted range, or NoDataMessage when empty.
func Summary(a Assembled, base domain.Period) string {
	if a.Empty() {
		return NoDataMessage
	}
	return fmt.Sprintf("Plotting RPI: %s → %s (base %s = 100)",
		a.Labels[0], a.Labels[len(a.Labels)-1], base.Label())
}
