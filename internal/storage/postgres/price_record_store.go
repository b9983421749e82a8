package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

// PriceRecordStore implements storage.PriceRecordStore using PostgreSQL.
type PriceRecordStore struct {
	pool *Pool
}

// NewPriceRecordStore creates a new PriceRecordStore.
func NewPriceRecordStore(pool *Pool) *PriceRecordStore {
	return &PriceRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceRecordStore = (*PriceRecordStore)(nil)

// InsertBulk adds multiple records in one transaction. Duplicate keys are tolerated.
func (s *PriceRecordStore) InsertBulk(ctx context.Context, records []*domain.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if r == nil || strings.TrimSpace(r.Town) == "" || strings.TrimSpace(r.FlatType) == "" || !r.Period().Valid() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Rows go through a batch to keep insertion order (and therefore id order) stable.
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO price_records (year, quarter, town, flat_type, price)
			VALUES ($1, $2, $3, $4, $5)
		`, r.Year, r.Quarter, r.Town, r.FlatType, r.Price)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			if isCheckViolation(err) {
				return storage.ErrInvalidInput
			}
			return fmt.Errorf("insert price record in bulk: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetAll retrieves all records in insertion order.
func (s *PriceRecordStore) GetAll(ctx context.Context) ([]*domain.PriceRecord, error) {
	query := `
		SELECT year, quarter, town, flat_type, price
		FROM price_records
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all price records: %w", err)
	}
	defer rows.Close()

	return scanPriceRecords(rows)
}

// GetByKey retrieves the first inserted record matching key. Returns ErrNotFound if not exists.
func (s *PriceRecordStore) GetByKey(ctx context.Context, key domain.PriceKey) (*domain.PriceRecord, error) {
	query := `
		SELECT year, quarter, town, flat_type, price
		FROM price_records
		WHERE town = $1 AND flat_type = $2 AND year = $3 AND quarter = $4
		ORDER BY id ASC
		LIMIT 1
	`

	var r domain.PriceRecord
	err := s.pool.QueryRow(ctx, query, key.Town, key.FlatType, key.Year, key.Quarter).Scan(
		&r.Year, &r.Quarter, &r.Town, &r.FlatType, &r.Price,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get price record by key: %w", err)
	}
	return &r, nil
}

// scanPriceRecords scans multiple rows into a slice of PriceRecord.
func scanPriceRecords(rows pgx.Rows) ([]*domain.PriceRecord, error) {
	var records []*domain.PriceRecord

	for rows.Next() {
		var r domain.PriceRecord
		if err := rows.Scan(&r.Year, &r.Quarter, &r.Town, &r.FlatType, &r.Price); err != nil {
			return nil, fmt.Errorf("scan price record row: %w", err)
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price record rows: %w", err)
	}

	return records, nil
}
