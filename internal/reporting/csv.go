package reporting

import (
	"strconv"
	"strings"

	"rpi-index-lab/internal/series"
)

// RenderCSV renders an assembled series as CSV string.
// Non-finite values are written as empty cells.
func RenderCSV(a series.Assembled) string {
	var sb strings.Builder

	// Header
	sb.WriteString("period,year,quarter,nominal,real\n")

	// Rows
	for i, label := range a.Labels {
		p := a.Periods[i]
		sb.WriteString(label)
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(p.Year))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(p.Quarter))
		sb.WriteByte(',')
		sb.WriteString(formatValue(a.Nominal[i]))
		sb.WriteByte(',')
		sb.WriteString(formatValue(a.Real[i]))
		sb.WriteByte('\n')
	}

	return sb.String()
}
