package stub

import (
	"context"

	"rpi-index-lab/internal/ingestion"
)

// StubRowReader returns fixed in-memory rows for testing.
// Implements ingestion.RowReader interface.
type StubRowReader struct {
	rows []ingestion.Row
	err  error
}

// NewStubRowReader creates a new stub reader with the given rows.
func NewStubRowReader(rows []ingestion.Row) *StubRowReader {
	return &StubRowReader{rows: rows}
}

// NewFailingRowReader creates a stub reader that always returns err.
func NewFailingRowReader(err error) *StubRowReader {
	return &StubRowReader{err: err}
}

// ReadRows returns copies of the rows, or the configured error.
// Honors context cancellation.
func (s *StubRowReader) ReadRows(ctx context.Context) ([]ingestion.Row, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]ingestion.Row, len(s.rows))
	for i, r := range s.rows {
		cp := make(ingestion.Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}
