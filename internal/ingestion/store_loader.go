package ingestion

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/storage"
)

// LoadFromStores reads both datasets from storage backends concurrently.
// Records in storage are already normalized, so every record counts as kept.
func LoadFromStores(ctx context.Context, index storage.IndexRecordStore, prices storage.PriceRecordStore) (*Datasets, error) {
	ds := &Datasets{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := index.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("load index records: %w", err)
		}
		ds.Index = make([]domain.IndexRecord, len(recs))
		for i, r := range recs {
			ds.Index[i] = *r
		}
		return nil
	})
	g.Go(func() error {
		recs, err := prices.GetAll(gctx)
		if err != nil {
			return fmt.Errorf("load price records: %w", err)
		}
		ds.Prices = make([]domain.PriceRecord, len(recs))
		for i, r := range recs {
			ds.Prices[i] = *r
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds.IndexStats = NormalizeStats{Total: len(ds.Index), Kept: len(ds.Index)}
	ds.PriceStats = NormalizeStats{Total: len(ds.Prices), Kept: len(ds.Prices)}
	return ds, nil
}
