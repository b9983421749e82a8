package clickhouse

import (
	"context"
	"fmt"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

// IndexRecordStore implements storage.IndexRecordStore using ClickHouse.
type IndexRecordStore struct {
	conn *Conn
}

// NewIndexRecordStore creates a new IndexRecordStore.
func NewIndexRecordStore(conn *Conn) *IndexRecordStore {
	return &IndexRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.IndexRecordStore = (*IndexRecordStore)(nil)

const indexRecordColumns = `year, quarter, raw_cpi, cpi, nominal_rpi, real_rpi, real_change`

// InsertBulk adds multiple records. Fails entire batch on duplicate (year, quarter).
// MergeTree does not enforce uniqueness, so duplicates are checked before the batch is sent.
func (s *IndexRecordStore) InsertBulk(ctx context.Context, records []*domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[int]struct{}, len(records))
	for _, r := range records {
		if r == nil || !r.Period().Valid() {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.Ordinal()]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.Ordinal()] = struct{}{}
	}

	for _, r := range records {
		exists, err := s.exists(ctx, r.Period())
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO index_records (`+indexRecordColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			int32(r.Year), uint8(r.Quarter),
			r.RawCPI, r.CPI, r.NominalRPI, r.RealRPI, r.RealChange,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetAll retrieves all records, ordered by (year, quarter) ASC.
func (s *IndexRecordStore) GetAll(ctx context.Context) ([]*domain.IndexRecord, error) {
	query := `
		SELECT ` + indexRecordColumns + `
		FROM index_records
		ORDER BY year ASC, quarter ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all index records: %w", err)
	}
	defer rows.Close()

	return scanIndexRecords(rows)
}

// GetByPeriod retrieves the record for a quarter. Returns ErrNotFound if not exists.
func (s *IndexRecordStore) GetByPeriod(ctx context.Context, p domain.Period) (*domain.IndexRecord, error) {
	query := `
		SELECT ` + indexRecordColumns + `
		FROM index_records
		WHERE year = ? AND quarter = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, int32(p.Year), uint8(p.Quarter))
	if err != nil {
		return nil, fmt.Errorf("query index record by period: %w", err)
	}
	defer rows.Close()

	records, err := scanIndexRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// GetByOrdinalRange retrieves records with year*10+quarter within [lo, hi] (inclusive).
func (s *IndexRecordStore) GetByOrdinalRange(ctx context.Context, lo, hi int) ([]*domain.IndexRecord, error) {
	query := `
		SELECT ` + indexRecordColumns + `
		FROM index_records
		WHERE toInt64(year) * 10 + quarter >= ? AND toInt64(year) * 10 + quarter <= ?
		ORDER BY year ASC, quarter ASC
	`

	rows, err := s.conn.Query(ctx, query, int64(lo), int64(hi))
	if err != nil {
		return nil, fmt.Errorf("query index records by ordinal range: %w", err)
	}
	defer rows.Close()

	return scanIndexRecords(rows)
}

func (s *IndexRecordStore) exists(ctx context.Context, p domain.Period) (bool, error) {
	query := `
		SELECT count(*) FROM index_records
		WHERE year = ? AND quarter = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, int32(p.Year), uint8(p.Quarter)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanIndexRecords scans multiple rows.
func scanIndexRecords(rows chRows) ([]*domain.IndexRecord, error) {
	var records []*domain.IndexRecord

	for rows.Next() {
		var r domain.IndexRecord
		var year int32
		var quarter uint8

		err := rows.Scan(
			&year, &quarter,
			&r.RawCPI, &r.CPI, &r.NominalRPI, &r.RealRPI, &r.RealChange,
		)
		if err != nil {
			return nil, fmt.Errorf("scan index record row: %w", err)
		}

		r.Year = int(year)
		r.Quarter = int(quarter)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index record rows: %w", err)
	}

	return records, nil
}
