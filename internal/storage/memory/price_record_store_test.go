package memory

import (
	"context"
	"errors"
	"testing"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

func TestPriceRecordStore_InsertBulkAndGetAll(t *testing.T) {
	store := NewPriceRecordStore()
	ctx := context.Background()

	records := []*domain.PriceRecord{
		{Year: 2020, Quarter: 1, Town: "ANG MO KIO", FlatType: "3 ROOM", Price: 300000},
		{Year: 2020, Quarter: 1, Town: "BEDOK", FlatType: "4 ROOM", Price: 420000},
	}

	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(result))
	}
	if result[0].Town != "ANG MO KIO" || result[1].Town != "BEDOK" {
		t.Errorf("Insertion order not preserved: %s, %s", result[0].Town, result[1].Town)
	}
}

func TestPriceRecordStore_DuplicatesFirstWins(t *testing.T) {
	store := NewPriceRecordStore()
	ctx := context.Background()

	records := []*domain.PriceRecord{
		{Year: 2020, Quarter: 2, Town: "BEDOK", FlatType: "4 ROOM", Price: 420000},
		{Year: 2020, Quarter: 2, Town: "BEDOK", FlatType: "4 ROOM", Price: 999999},
	}

	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	r, err := store.GetByKey(ctx, domain.PriceKey{Town: "BEDOK", FlatType: "4 ROOM", Year: 2020, Quarter: 2})
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if r.Price != 420000 {
		t.Errorf("Expected first record (420000), got %f", r.Price)
	}

	all, _ := store.GetAll(ctx)
	if len(all) != 2 {
		t.Errorf("Expected duplicates to be kept, got %d records", len(all))
	}
}

func TestPriceRecordStore_GetByKeyNotFound(t *testing.T) {
	store := NewPriceRecordStore()
	ctx := context.Background()

	_, err := store.GetByKey(ctx, domain.PriceKey{Town: "BEDOK", FlatType: "4 ROOM", Year: 2020, Quarter: 2})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPriceRecordStore_InvalidInput(t *testing.T) {
	store := NewPriceRecordStore()
	ctx := context.Background()

	cases := []*domain.PriceRecord{
		nil,
		{Year: 2020, Quarter: 1, Town: "", FlatType: "4 ROOM"},
		{Year: 2020, Quarter: 1, Town: "BEDOK", FlatType: "  "},
		{Year: 2020, Quarter: 0, Town: "BEDOK", FlatType: "4 ROOM"},
	}

	for i, c := range cases {
		err := store.InsertBulk(ctx, []*domain.PriceRecord{c})
		if !errors.Is(err, storage.ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestPriceRecordStore_EmptyBulk(t *testing.T) {
	store := NewPriceRecordStore()

	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("Empty bulk should succeed, got %v", err)
	}
}
