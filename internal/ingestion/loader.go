package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"rpi-index-lab/internal/domain"
)

// Datasets holds both normalized datasets and their load statistics.
type Datasets struct {
	Index      []domain.IndexRecord
	Prices     []domain.PriceRecord
	IndexStats NormalizeStats
	PriceStats NormalizeStats
}

// Load reads both datasets concurrently and normalizes them.
// Either read failing cancels the other and fails the load.
func Load(ctx context.Context, index, prices RowReader, logger *slog.Logger) (*Datasets, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "ingestion.loader"))
	start := time.Now()

	var indexRows, priceRows []Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := index.ReadRows(gctx)
		if err != nil {
			return fmt.Errorf("load index dataset: %w", err)
		}
		indexRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := prices.ReadRows(gctx)
		if err != nil {
			return fmt.Errorf("load price dataset: %w", err)
		}
		priceRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Datasets{}
	ds.Index, ds.IndexStats = NormalizeIndexRows(indexRows)
	ds.Prices, ds.PriceStats = NormalizePriceRows(priceRows)

	logger.Info("datasets loaded",
		slog.Int("index_rows", ds.IndexStats.Kept),
		slog.Int("index_dropped", ds.IndexStats.Dropped),
		slog.Int("price_rows", ds.PriceStats.Kept),
		slog.Int("price_dropped", ds.PriceStats.Dropped),
		slog.Duration("elapsed", time.Since(start)))

	return ds, nil
}

// NewReader picks an HTTPReader for http(s) URLs and a FileReader otherwise.
func NewReader(source string, required []string, timeout time.Duration, opts ...HTTPOption) RowReader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPReader(source, required, timeout, opts...)
	}
	return NewFileReader(source, required)
}
