package storage

import (
	"context"

	"rpi-index-lab/internal/domain"
)

// IndexRecordStore provides access to index_records storage.
type IndexRecordStore interface {
	// InsertBulk adds multiple records atomically. Fails entire batch on duplicate (year, quarter).
	InsertBulk(ctx context.Context, records []*domain.IndexRecord) error

	// GetAll retrieves all records, ordered by (year, quarter) ASC.
	GetAll(ctx context.Context) ([]*domain.IndexRecord, error)

	// GetByPeriod retrieves the record for a quarter. Returns ErrNotFound if not exists.
	GetByPeriod(ctx context.Context, p domain.Period) (*domain.IndexRecord, error)

	// GetByOrdinalRange retrieves records with ordinal within [lo, hi] (inclusive), ordered ASC.
	GetByOrdinalRange(ctx context.Context, lo, hi int) ([]*domain.IndexRecord, error)
}

// PriceRecordStore provides access to price_records storage.
type PriceRecordStore interface {
	// InsertBulk adds multiple records. Duplicate keys are tolerated.
	InsertBulk(ctx context.Context, records []*domain.PriceRecord) error

	// GetAll retrieves all records in insertion order.
	GetAll(ctx context.Context) ([]*domain.PriceRecord, error)

	// GetByKey retrieves the first inserted record matching key. Returns ErrNotFound if not exists.
	GetByKey(ctx context.Context, key domain.PriceKey) (*domain.PriceRecord, error)
}
