package reporting

import (
	"math"
	"strconv"
)

// formatValue prints v with 6 decimals, or "" when it is not finite.
func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
