package memory

import (
	"context"
	"errors"
	"testing"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

func TestIndexRecordStore_InsertBulkAndGetAll(t *testing.T) {
	store := NewIndexRecordStore()
	ctx := context.Background()

	records := []*domain.IndexRecord{
		{Year: 2010, Quarter: 1, RawCPI: 97.0, NominalRPI: 104.0},
		{Year: 2009, Quarter: 1, RawCPI: 95.2, NominalRPI: 100.0},
		{Year: 2009, Quarter: 3, RawCPI: 96.1, NominalRPI: 101.5},
	}

	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(result))
	}

	for i := 1; i < len(result); i++ {
		if result[i].Ordinal() <= result[i-1].Ordinal() {
			t.Errorf("Results not ordered: %s after %s", result[i].Label(), result[i-1].Label())
		}
	}
}

func TestIndexRecordStore_DuplicateKey(t *testing.T) {
	store := NewIndexRecordStore()
	ctx := context.Background()

	records := []*domain.IndexRecord{{Year: 2009, Quarter: 1, RawCPI: 95.2}}

	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, records)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestIndexRecordStore_IntraBatchDuplicate(t *testing.T) {
	store := NewIndexRecordStore()
	ctx := context.Background()

	records := []*domain.IndexRecord{
		{Year: 2009, Quarter: 1, RawCPI: 95.2},
		{Year: 2009, Quarter: 1, RawCPI: 95.3}, // duplicate key
	}

	err := store.InsertBulk(ctx, records)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	// Verify nothing was inserted
	result, _ := store.GetAll(ctx)
	if len(result) != 0 {
		t.Errorf("Expected 0 records (rollback), got %d", len(result))
	}
}

func TestIndexRecordStore_InvalidInput(t *testing.T) {
	store := NewIndexRecordStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.IndexRecord{nil})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil record, got %v", err)
	}

	err = store.InsertBulk(ctx, []*domain.IndexRecord{{Year: 2009, Quarter: 5}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for quarter 5, got %v", err)
	}
}

func TestIndexRecordStore_GetByPeriod(t *testing.T) {
	store := NewIndexRecordStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.IndexRecord{{Year: 2009, Quarter: 2, RawCPI: 95.8}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	r, err := store.GetByPeriod(ctx, domain.Period{Year: 2009, Quarter: 2})
	if err != nil {
		t.Fatalf("GetByPeriod failed: %v", err)
	}
	if r.RawCPI != 95.8 {
		t.Errorf("Expected RawCPI 95.8, got %f", r.RawCPI)
	}

	_, err = store.GetByPeriod(ctx, domain.Period{Year: 2009, Quarter: 3})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestIndexRecordStore_GetByOrdinalRange(t *testing.T) {
	store := NewIndexRecordStore()
	ctx := context.Background()

	records := []*domain.IndexRecord{
		{Year: 2009, Quarter: 1},
		{Year: 2009, Quarter: 2},
		{Year: 2009, Quarter: 3},
		{Year: 2010, Quarter: 1},
	}
	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByOrdinalRange(ctx, 20092, 20094)
	if err != nil {
		t.Fatalf("GetByOrdinalRange failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 records in range, got %d", len(result))
	}
	if result[0].Quarter != 2 || result[1].Quarter != 3 {
		t.Errorf("Unexpected records: %s, %s", result[0].Label(), result[1].Label())
	}
}

func TestIndexRecordStore_ReturnsCopies(t *testing.T) {
	store := NewIndexRecordStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.IndexRecord{{Year: 2009, Quarter: 1, RawCPI: 95.2}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all, _ := store.GetAll(ctx)
	all[0].RawCPI = 0

	again, _ := store.GetAll(ctx)
	if again[0].RawCPI != 95.2 {
		t.Errorf("Store mutated through returned pointer: RawCPI=%f", again[0].RawCPI)
	}
}
