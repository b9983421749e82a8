package ingestion

import (
	"context"
	"fmt"
	"os"
)

// FileReader reads a dataset from a local .csv or .xlsx file.
type FileReader struct {
	Path     string
	Required []string // headers that must be present, e.g. IndexColumns
}

// NewFileReader creates a reader for path requiring the given headers.
func NewFileReader(path string, required []string) *FileReader {
	return &FileReader{Path: path, Required: required}
}

// ReadRows implements RowReader.
func (r *FileReader) ReadRows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Path, err)
	}
	rows, err := parseRequired(data, FormatFromName(r.Path), r.Required)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Path, err)
	}
	return rows, nil
}
