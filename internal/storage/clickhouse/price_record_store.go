package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

// PriceRecordStore implements storage.PriceRecordStore using ClickHouse.
// Load order is kept in the seq column.
type PriceRecordStore struct {
	conn *Conn
}

// NewPriceRecordStore creates a new PriceRecordStore.
func NewPriceRecordStore(conn *Conn) *PriceRecordStore {
	return &PriceRecordStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceRecordStore = (*PriceRecordStore)(nil)

// InsertBulk appends records after the current highest seq. Duplicate keys are tolerated.
func (s *PriceRecordStore) InsertBulk(ctx context.Context, records []*domain.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if r == nil || strings.TrimSpace(r.Town) == "" || strings.TrimSpace(r.FlatType) == "" || !r.Period().Valid() {
			return storage.ErrInvalidInput
		}
	}

	var next uint64
	if err := s.conn.QueryRow(ctx, `SELECT count(*) FROM price_records`).Scan(&next); err != nil {
		return fmt.Errorf("read price record count: %w", err)
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_records (seq, year, quarter, town, flat_type, price)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i, r := range records {
		err = batch.Append(
			next+uint64(i), int32(r.Year), uint8(r.Quarter),
			r.Town, r.FlatType, r.Price,
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

// GetAll retrieves all records in load order.
func (s *PriceRecordStore) GetAll(ctx context.Context) ([]*domain.PriceRecord, error) {
	query := `
		SELECT year, quarter, town, flat_type, price
		FROM price_records
		ORDER BY seq ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all price records: %w", err)
	}
	defer rows.Close()

	return scanPriceRecords(rows)
}

// GetByKey retrieves the earliest loaded record matching key. Returns ErrNotFound if not exists.
func (s *PriceRecordStore) GetByKey(ctx context.Context, key domain.PriceKey) (*domain.PriceRecord, error) {
	query := `
		SELECT year, quarter, town, flat_type, price
		FROM price_records
		WHERE town = ? AND flat_type = ? AND year = ? AND quarter = ?
		ORDER BY seq ASC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, key.Town, key.FlatType, int32(key.Year), uint8(key.Quarter))
	if err != nil {
		return nil, fmt.Errorf("query price record by key: %w", err)
	}
	defer rows.Close()

	records, err := scanPriceRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// scanPriceRecords scans multiple rows.
func scanPriceRecords(rows chRows) ([]*domain.PriceRecord, error) {
	var records []*domain.PriceRecord

	for rows.Next() {
		var r domain.PriceRecord
		var year int32
		var quarter uint8

		if err := rows.Scan(&year, &quarter, &r.Town, &r.FlatType, &r.Price); err != nil {
			return nil, fmt.Errorf("scan price record row: %w", err)
		}

		r.Year = int(year)
		r.Quarter = int(quarter)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price record rows: %w", err)
	}

	return records, nil
}
