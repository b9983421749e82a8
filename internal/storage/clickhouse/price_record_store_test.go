package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

func TestPriceRecordStore_LoadOrderAcrossBatches(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceRecordStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, []*domain.PriceRecord{
		{Year: 2020, Quarter: 1, Town: "YISHUN", FlatType: "5 ROOM", Price: 510000},
	}))
	require.NoError(t, store.InsertBulk(ctx, []*domain.PriceRecord{
		{Year: 2020, Quarter: 1, Town: "BEDOK", FlatType: "4 ROOM", Price: 420000},
		{Year: 2020, Quarter: 1, Town: "YISHUN", FlatType: "5 ROOM", Price: 999999},
	}))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "YISHUN", all[0].Town)
	assert.Equal(t, "BEDOK", all[1].Town)

	r, err := store.GetByKey(ctx, domain.PriceKey{Town: "YISHUN", FlatType: "5 ROOM", Year: 2020, Quarter: 1})
	require.NoError(t, err)
	assert.Equal(t, 510000.0, r.Price)

	_, err = store.GetByKey(ctx, domain.PriceKey{Town: "YISHUN", FlatType: "3 ROOM", Year: 2020, Quarter: 1})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
