package ingestion

import (
	"context"
	"errors"
)

// Row is one header-keyed record of a tabular source, values untrimmed.
type Row map[string]string

// RowReader provides the raw rows of one dataset.
type RowReader interface {
	// ReadRows returns every data row in source order. Header rows are not included.
	ReadRows(ctx context.Context) ([]Row, error)
}

// ErrMissingColumn is returned when a source lacks a required header.
var ErrMissingColumn = errors.New("required column missing")

// Required headers of the two datasets.
var (
	IndexColumns = []string{"Year", "Quarter", "Raw_CPI", "CPI", "Nominal_RPI", "Real_RPI", "Real_Change"}
	PriceColumns = []string{"year", "quarter", "town", "flat_type", "price"}
)
