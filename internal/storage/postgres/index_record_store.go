package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

// IndexRecordStore implements storage.IndexRecordStore using PostgreSQL.
type IndexRecordStore struct {
	pool *Pool
}

// NewIndexRecordStore creates a new IndexRecordStore.
func NewIndexRecordStore(pool *Pool) *IndexRecordStore {
	return &IndexRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IndexRecordStore = (*IndexRecordStore)(nil)

const indexRecordColumns = `year, quarter, raw_cpi, cpi, nominal_rpi, real_rpi, real_change`

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *IndexRecordStore) InsertBulk(ctx context.Context, records []*domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if r == nil || !r.Period().Valid() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO index_records (` + indexRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, r := range records {
		_, err := tx.Exec(ctx, query,
			r.Year,
			r.Quarter,
			r.RawCPI,
			r.CPI,
			r.NominalRPI,
			r.RealRPI,
			r.RealChange,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			if isCheckViolation(err) {
				return storage.ErrInvalidInput
			}
			return fmt.Errorf("insert index record in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
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

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all index records: %w", err)
	}
	defer rows.Close()

	return scanIndexRecords(rows)
}

// GetByPeriod retrieves the record for a quarter. Returns ErrNotFound if not exists.
func (s *IndexRecordStore) GetByPeriod(ctx context.Context, p domain.Period) (*domain.IndexRecord, error) {
	query := `
		SELECT ` + indexRecordColumns + `
		FROM index_records
		WHERE year = $1 AND quarter = $2
	`

	var r domain.IndexRecord
	err := s.pool.QueryRow(ctx, query, p.Year, p.Quarter).Scan(
		&r.Year, &r.Quarter, &r.RawCPI, &r.CPI, &r.NominalRPI, &r.RealRPI, &r.RealChange,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get index record by period: %w", err)
	}
	return &r, nil
}

// GetByOrdinalRange retrieves records with year*10+quarter within [lo, hi] (inclusive).
func (s *IndexRecordStore) GetByOrdinalRange(ctx context.Context, lo, hi int) ([]*domain.IndexRecord, error) {
	query := `
		SELECT ` + indexRecordColumns + `
		FROM index_records
		WHERE year * 10 + quarter BETWEEN $1 AND $2
		ORDER BY year ASC, quarter ASC
	`

	rows, err := s.pool.Query(ctx, query, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("get index records by ordinal range: %w", err)
	}
	defer rows.Close()

	return scanIndexRecords(rows)
}

// scanIndexRecords scans multiple rows into a slice of IndexRecord.
func scanIndexRecords(rows pgx.Rows) ([]*domain.IndexRecord, error) {
	var records []*domain.IndexRecord

	for rows.Next() {
		var r domain.IndexRecord
		err := rows.Scan(
			&r.Year,
			&r.Quarter,
			&r.RawCPI,
			&r.CPI,
			&r.NominalRPI,
			&r.RealRPI,
			&r.RealChange,
		)
		if err != nil {
			return nil, fmt.Errorf("scan index record row: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index record rows: %w", err)
	}

	return records, nil
}
