package memory

import (
	"context"
	"strings"
	"sync"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

// PriceRecordStore is an in-memory implementation of storage.PriceRecordStore.
// Records are kept in insertion order; duplicates are allowed.
type PriceRecordStore struct {
	mu    sync.RWMutex
	data  []*domain.PriceRecord
	first map[domain.PriceKey]int // key -> index of first occurrence
}

// NewPriceRecordStore creates a new in-memory price record store.
func NewPriceRecordStore() *PriceRecordStore {
	return &PriceRecordStore{
		first: make(map[domain.PriceKey]int),
	}
}

// InsertBulk adds multiple records. Validation failure rejects the entire batch.
func (s *PriceRecordStore) InsertBulk(_ context.Context, records []*domain.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if r == nil || strings.TrimSpace(r.Town) == "" || strings.TrimSpace(r.FlatType) == "" || !r.Period().Valid() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		recordCopy := *r
		key := recordCopy.Key()
		if _, exists := s.first[key]; !exists {
			s.first[key] = len(s.data)
		}
		s.data = append(s.data, &recordCopy)
	}

	return nil
}

// GetAll retrieves all records in insertion order.
func (s *PriceRecordStore) GetAll(_ context.Context) ([]*domain.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PriceRecord, 0, len(s.data))
	for _, r := range s.data {
		recordCopy := *r
		result = append(result, &recordCopy)
	}
	return result, nil
}

// GetByKey retrieves the first inserted record matching key.
func (s *PriceRecordStore) GetByKey(_ context.Context, key domain.PriceKey) (*domain.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.first[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	recordCopy := *s.data[idx]
	return &recordCopy, nil
}

var _ storage.PriceRecordStore = (*PriceRecordStore)(nil)
