package ingestion

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"rpi-index-lab/internal/domain"
)

// NormalizeStats counts rows seen, kept and dropped during normalization.
type NormalizeStats struct {
	Total   int
	Kept    int
	Dropped int
}

// ParseQuarter accepts "3", "Q3", "q3", "03" and "3.0" with surrounding whitespace.
// The value after an optional Q prefix must be an integral number within 1..4.
func ParseQuarter(s string) (int, error) {
	v := strings.TrimSpace(s)
	if len(v) > 0 && (v[0] == 'Q' || v[0] == 'q') {
		v = strings.TrimSpace(v[1:])
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || f < 1 || f > 4 {
		return 0, fmt.Errorf("invalid quarter %q", s)
	}
	return int(f), nil
}

// parseNumber converts a cell to float64. Empty or unparseable cells yield NaN.
// Grouping separators are not accepted: "1,234" is NaN.
func parseNumber(s string) float64 {
	v := strings.TrimSpace(s)
	if v == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseYear returns the integral year of a cell, or false if it is not finite.
func parseYear(s string) (int, bool) {
	f := parseNumber(s)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// NormalizeIndexRows converts raw index rows into records.
// Rows with a non-finite year or a quarter outside 1..4 are dropped, as are
// repeats of an already-seen quarter. Unparseable numeric cells become NaN.
func NormalizeIndexRows(rows []Row) ([]domain.IndexRecord, NormalizeStats) {
	stats := NormalizeStats{Total: len(rows)}
	seen := make(map[domain.Period]struct{}, len(rows))
	out := make([]domain.IndexRecord, 0, len(rows))

	for _, row := range rows {
		year, ok := parseYear(row["Year"])
		if !ok {
			stats.Dropped++
			continue
		}
		quarter, err := ParseQuarter(row["Quarter"])
		if err != nil {
			stats.Dropped++
			continue
		}
		p := domain.Period{Year: year, Quarter: quarter}
		if _, dup := seen[p]; dup {
			stats.Dropped++
			continue
		}
		seen[p] = struct{}{}

		out = append(out, domain.IndexRecord{
			Year:       year,
			Quarter:    quarter,
			RawCPI:     parseNumber(row["Raw_CPI"]),
			CPI:        parseNumber(row["CPI"]),
			NominalRPI: parseNumber(row["Nominal_RPI"]),
			RealRPI:    parseNumber(row["Real_RPI"]),
			RealChange: parseNumber(row["Real_Change"]),
		})
	}

	stats.Kept = len(out)
	return out, stats
}

// NormalizePriceRows converts raw price rows into records.
// Town and flat type are trimmed; rows missing either, or with a bad year or
// quarter, are dropped. Duplicate keys are kept in load order.
func NormalizePriceRows(rows []Row) ([]domain.PriceRecord, NormalizeStats) {
	stats := NormalizeStats{Total: len(rows)}
	out := make([]domain.PriceRecord, 0, len(rows))

	for _, row := range rows {
		town := strings.TrimSpace(row["town"])
		flatType := strings.TrimSpace(row["flat_type"])
		if town == "" || flatType == "" {
			stats.Dropped++
			continue
		}
		year, ok := parseYear(row["year"])
		if !ok {
			stats.Dropped++
			continue
		}
		quarter, err := ParseQuarter(row["quarter"])
		if err != nil {
			stats.Dropped++
			continue
		}

		out = append(out, domain.PriceRecord{
			Year:     year,
			Quarter:  quarter,
			Town:     town,
			FlatType: flatType,
			Price:    parseNumber(row["price"]),
		})
	}

	stats.Kept = len(out)
	return out, stats
}

// checkColumns returns ErrMissingColumn naming the first absent header.
func checkColumns(header []string, required []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	for _, c := range required {
		if _, ok := have[c]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}
	return nil
}
