package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

func TestIndexRecordStore_InsertAndGetAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewIndexRecordStore(conn)
	ctx := context.Background()

	records := []*domain.IndexRecord{
		{Year: 2010, Quarter: 1, RawCPI: 97.0, NominalRPI: 104.0},
		{Year: 2009, Quarter: 1, RawCPI: 95.2, NominalRPI: 100.0},
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2009 Q1", all[0].Label())
	assert.Equal(t, 104.0, all[1].NominalRPI)
}

func TestIndexRecordStore_Duplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewIndexRecordStore(conn)
	ctx := context.Background()

	records := []*domain.IndexRecord{{Year: 2009, Quarter: 1, RawCPI: 95.2}}
	require.NoError(t, store.InsertBulk(ctx, records))

	assert.ErrorIs(t, store.InsertBulk(ctx, records), storage.ErrDuplicateKey)
}

func TestIndexRecordStore_GetByOrdinalRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewIndexRecordStore(conn)
	ctx := context.Background()

	records := []*domain.IndexRecord{
		{Year: 2009, Quarter: 1},
		{Year: 2009, Quarter: 2},
		{Year: 2009, Quarter: 3},
		{Year: 2010, Quarter: 2},
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	result, err := store.GetByOrdinalRange(ctx, 20091, 20094)
	require.NoError(t, err)
	assert.Len(t, result, 3)

	_, err = store.GetByPeriod(ctx, domain.Period{Year: 2010, Quarter: 1})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
