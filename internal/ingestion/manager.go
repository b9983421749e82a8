package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

// Manager imports normalized datasets from readers into storage backends.
// It enforces chronological ordering and relies on the storage layer for
// duplicate rejection.
type Manager struct {
	indexReader RowReader
	priceReader RowReader

	indexStore storage.IndexRecordStore
	priceStore storage.PriceRecordStore

	logger *slog.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	IndexReader RowReader
	PriceReader RowReader

	IndexStore storage.IndexRecordStore
	PriceStore storage.PriceRecordStore

	Logger *slog.Logger
}

// ImportResult reports what an import stored.
type ImportResult struct {
	IndexStats NormalizeStats
	PriceStats NormalizeStats
}

// NewManager creates a new ingestion manager with the provided readers and stores.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		indexReader: opts.IndexReader,
		priceReader: opts.PriceReader,
		indexStore:  opts.IndexStore,
		priceStore:  opts.PriceStore,
		logger:      logger.With(slog.String("component", "ingestion.manager")),
	}
}

// Import loads both datasets and stores them.
// Returns storage.ErrDuplicateKey if an index quarter already exists in the backend.
func (m *Manager) Import(ctx context.Context) (*ImportResult, error) {
	if m.indexReader == nil || m.priceReader == nil {
		return nil, fmt.Errorf("%w: both readers are required", storage.ErrInvalidInput)
	}

	ds, err := Load(ctx, m.indexReader, m.priceReader, m.logger)
	if err != nil {
		return nil, err
	}

	if err := m.StoreIndex(ctx, ds.Index); err != nil {
		return nil, err
	}
	if err := m.StorePrices(ctx, ds.Prices); err != nil {
		return nil, err
	}

	return &ImportResult{IndexStats: ds.IndexStats, PriceStats: ds.PriceStats}, nil
}

// StoreIndex sorts records chronologically and bulk-inserts them.
func (m *Manager) StoreIndex(ctx context.Context, records []domain.IndexRecord) error {
	if m.indexStore == nil || len(records) == 0 {
		return nil
	}

	ptrs := make([]*domain.IndexRecord, len(records))
	for i := range records {
		r := records[i]
		ptrs[i] = &r
	}
	SortIndexRecords(ptrs)

	if err := m.indexStore.InsertBulk(ctx, ptrs); err != nil {
		return fmt.Errorf("store index records: %w", err)
	}
	m.logger.Info("index records stored", slog.Int("count", len(ptrs)))
	return nil
}

// StorePrices sorts records by key and bulk-inserts them.
func (m *Manager) StorePrices(ctx context.Context, records []domain.PriceRecord) error {
	if m.priceStore == nil || len(records) == 0 {
		return nil
	}

	ptrs := make([]*domain.PriceRecord, len(records))
	for i := range records {
		r := records[i]
		ptrs[i] = &r
	}
	SortPriceRecords(ptrs)

	if err := m.priceStore.InsertBulk(ctx, ptrs); err != nil {
		return fmt.Errorf("store price records: %w", err)
	}
	m.logger.Info("price records stored", slog.Int("count", len(ptrs)))
	return nil
}
