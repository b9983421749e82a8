package reporting

import (
	"time"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/ingestion"
	"rpi-index-lab/internal/series"
)

// Report represents one plotted range of the index series.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Base        domain.Period
	Rebased     bool // false: published values, base shown but not applied
	DataVersion string // short content hash, set by the report pipeline

	// Range
	Start   domain.Period
	End     domain.Period
	Summary string

	// Series points, ordered ascending
	Series series.Assembled

	// Data Summary
	DataSummary DataSummary

	// Optional price lookup
	Price *PriceRow
}

// DataSummary describes the loaded datasets.
type DataSummary struct {
	IndexStats  ingestion.NormalizeStats
	PriceStats  ingestion.NormalizeStats
	FirstPeriod string // "" when the index dataset is empty
	LastPeriod  string
	Towns       int
	FlatTypes   int
}

// PriceRow is the outcome of a price lookup included in a report.
type PriceRow struct {
	Town     string
	FlatType string
	Period   domain.Period
	Text     string
	Hint     string
	Found    bool
}
