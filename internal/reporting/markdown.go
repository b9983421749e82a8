package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# RPI Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.DataVersion != "" {
		sb.WriteString(fmt.Sprintf("Data Version: %s\n\n", r.DataVersion))
	}
	if r.Rebased {
		sb.WriteString(fmt.Sprintf("Base: %s = 100\n\n", r.Base.Label()))
	} else {
		sb.WriteString(fmt.Sprintf("Base: %s (not applied, published values)\n\n", r.Base.Label()))
	}
	sb.WriteString(fmt.Sprintf("%s\n\n", r.Summary))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	ds := r.DataSummary
	sb.WriteString(fmt.Sprintf("| Index Rows | %d |\n", ds.IndexStats.Kept))
	sb.WriteString(fmt.Sprintf("| Index Rows Dropped | %d |\n", ds.IndexStats.Dropped))
	sb.WriteString(fmt.Sprintf("| Price Rows | %d |\n", ds.PriceStats.Kept))
	sb.WriteString(fmt.Sprintf("| Price Rows Dropped | %d |\n", ds.PriceStats.Dropped))
	if ds.FirstPeriod != "" {
		sb.WriteString(fmt.Sprintf("| Index Coverage | %s to %s |\n", ds.FirstPeriod, ds.LastPeriod))
	}
	sb.WriteString(fmt.Sprintf("| Towns | %d |\n", ds.Towns))
	sb.WriteString(fmt.Sprintf("| Flat Types | %d |\n", ds.FlatTypes))
	sb.WriteString("\n")

	// Series
	sb.WriteString("## Series\n\n")
	if !r.Series.Empty() {
		sb.WriteString("| Period | Nominal | Real |\n")
		sb.WriteString("|--------|---------|------|\n")
		for i, label := range r.Series.Labels {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				label, markdownValue(r.Series.Nominal[i]), markdownValue(r.Series.Real[i])))
		}
	} else {
		sb.WriteString("No data in range.\n")
	}
	sb.WriteString("\n")

	// Price lookup
	if r.Price != nil {
		sb.WriteString("## Median Price\n\n")
		sb.WriteString(fmt.Sprintf("%s, %s, %s: **%s**\n",
			r.Price.Town, r.Price.FlatType, r.Price.Period.Label(), r.Price.Text))
		if r.Price.Hint != "" {
			sb.WriteString(fmt.Sprintf("\n_%s_\n", r.Price.Hint))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func markdownValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}
