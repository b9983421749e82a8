package memory

import (
	"context"
	"sort"
	"sync"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

// IndexRecordStore is an in-memory implementation of storage.IndexRecordStore.
type IndexRecordStore struct {
	mu   sync.RWMutex
	data map[int]*domain.IndexRecord // keyed by ordinal
}

// NewIndexRecordStore creates a new in-memory index record store.
func NewIndexRecordStore() *IndexRecordStore {
	return &IndexRecordStore{
		data: make(map[int]*domain.IndexRecord),
	}
}

// InsertBulk adds multiple records. Fails entire batch on duplicate.
func (s *IndexRecordStore) InsertBulk(_ context.Context, records []*domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[int]struct{}, len(records))

	// First pass: validate and check duplicates (existing + intra-batch)
	for _, r := range records {
		if r == nil || !r.Period().Valid() {
			return storage.ErrInvalidInput
		}
		key := r.Ordinal()

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range records {
		recordCopy := *r
		s.data[r.Ordinal()] = &recordCopy
	}

	return nil
}

// GetAll retrieves all records, ordered by ordinal ASC.
func (s *IndexRecordStore) GetAll(_ context.Context) ([]*domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.IndexRecord, 0, len(s.data))
	for _, r := range s.data {
		recordCopy := *r
		result = append(result, &recordCopy)
	}

	sortByOrdinal(result)
	return result, nil
}

// GetByPeriod retrieves the record for a quarter.
func (s *IndexRecordStore) GetByPeriod(_ context.Context, p domain.Period) (*domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[p.Ordinal()]
	if !ok || !p.Valid() {
		return nil, storage.ErrNotFound
	}
	recordCopy := *r
	return &recordCopy, nil
}

// GetByOrdinalRange retrieves records within [lo, hi] (inclusive).
func (s *IndexRecordStore) GetByOrdinalRange(_ context.Context, lo, hi int) ([]*domain.IndexRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.IndexRecord
	for ord, r := range s.data {
		if ord >= lo && ord <= hi {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sortByOrdinal(result)
	return result, nil
}

func sortByOrdinal(records []*domain.IndexRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Ordinal() < records[j].Ordinal()
	})
}

var _ storage.IndexRecordStore = (*IndexRecordStore)(nil)
