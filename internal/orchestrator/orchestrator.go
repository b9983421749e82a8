// Package orchestrator wires configuration into a ready Explorer.
// Flow: select backend → load datasets → build explorer → apply base
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"rpi-index-lab/internal/config"
	"rpi-index-lab/internal/explorer"
	"rpi-index-lab/internal/ingestion"
	"rpi-index-lab/internal/observability"
	"rpi-index-lab/internal/storage"
	chstore "rpi-index-lab/internal/storage/clickhouse"
	pgstore "rpi-index-lab/internal/storage/postgres"
)

// ErrUnknownBackend is returned for an unsupported database backend.
var ErrUnknownBackend = errors.New("unknown dataset backend")

// Orchestrator builds the explorer from the configured data origin.
type Orchestrator struct {
	cfg            *config.Config
	logger         *slog.Logger
	tracerProvider trace.TracerProvider

	// Optional overrides for the file backend
	indexReader ingestion.RowReader
	priceReader ingestion.RowReader
}

// Options for creating Orchestrator.
type Options struct {
	Config         *config.Config // required
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider

	// Readers replace the configured sources when both are set.
	IndexReader ingestion.RowReader
	PriceReader ingestion.RowReader
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:            opts.Config,
		logger:         logger.With(slog.String("component", "orchestrator")),
		tracerProvider: opts.TracerProvider,
		indexReader:    opts.IndexReader,
		priceReader:    opts.PriceReader,
	}
}

// RunResult contains the assembled application state.
type RunResult struct {
	Explorer *explorer.Explorer
	Datasets *ingestion.Datasets
	Source   string // "file", "http", "postgres" or "clickhouse"

	// Cleanup releases connections and caches. Always non-nil.
	Cleanup func()
}

// Run loads both datasets and builds the explorer.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	if o.cfg == nil {
		return nil, errors.New("orchestrator: config is required")
	}
	start := time.Now()

	ds, source, cleanup, err := o.load(ctx)
	if err != nil {
		return nil, err
	}

	observability.RecordRowsLoaded("index", ds.IndexStats.Kept, ds.IndexStats.Dropped)
	observability.RecordRowsLoaded("prices", ds.PriceStats.Kept, ds.PriceStats.Dropped)
	observability.RecordLoad(source, time.Since(start).Seconds(), time.Now().Unix())

	exp, err := explorer.New(ds.Index, ds.Prices, explorer.Options{
		Logger:         o.logger,
		TracerProvider: o.tracerProvider,
	})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("build explorer: %w", err)
	}

	if o.cfg.Explorer.ApplyBaseOnLoad {
		base := o.cfg.Explorer.BasePeriod()
		if err := exp.SetBase(ctx, base); err != nil {
			// Stay on published values; the base can still be set later.
			o.logger.Warn("initial base not applied",
				slog.String("base", base.Label()),
				slog.String("error", err.Error()))
		}
	}

	o.logger.Info("explorer ready",
		slog.String("source", source),
		slog.Int("index_records", len(ds.Index)),
		slog.Int("price_records", len(ds.Prices)),
		slog.String("base", exp.BasePeriod().Label()),
		slog.Bool("rebased", exp.Rebased()),
		slog.Duration("elapsed", time.Since(start)))

	return &RunResult{
		Explorer: exp,
		Datasets: ds,
		Source:   source,
		Cleanup:  cleanup,
	}, nil
}

func (o *Orchestrator) load(ctx context.Context) (*ingestion.Datasets, string, func(), error) {
	switch o.cfg.Database.Backend {
	case config.BackendFile, "":
		return o.loadFiles(ctx)
	case config.BackendPostgres:
		return o.loadPostgres(ctx)
	case config.BackendClickhouse:
		return o.loadClickhouse(ctx)
	default:
		return nil, "", nil, fmt.Errorf("%w: %q", ErrUnknownBackend, o.cfg.Database.Backend)
	}
}

func (o *Orchestrator) loadFiles(ctx context.Context) (*ingestion.Datasets, string, func(), error) {
	cleanup := func() {}
	index, prices := o.indexReader, o.priceReader
	source := config.BackendFile

	if index == nil || prices == nil {
		data := o.cfg.Data
		var opts []ingestion.HTTPOption
		if isRemote(data.IndexSource) || isRemote(data.PriceSource) {
			source = "http"
			cache, err := ingestion.OpenCache(data.CacheDir, data.CacheTTL)
			if err != nil {
				return nil, "", nil, fmt.Errorf("open cache: %w", err)
			}
			cleanup = func() {
				if err := cache.Close(); err != nil {
					o.logger.Warn("cache close failed", slog.String("error", err.Error()))
				}
			}
			opts = append(opts, ingestion.WithCache(cache), ingestion.WithHTTPLogger(o.logger))
		}
		index = ingestion.NewReader(data.IndexSource, ingestion.IndexColumns, data.FetchTimeout, opts...)
		prices = ingestion.NewReader(data.PriceSource, ingestion.PriceColumns, data.FetchTimeout, opts...)
	}

	ds, err := ingestion.Load(ctx, index, prices, o.logger)
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	return ds, source, cleanup, nil
}

func (o *Orchestrator) loadPostgres(ctx context.Context) (*ingestion.Datasets, string, func(), error) {
	pool, err := pgstore.NewPool(ctx, o.cfg.Database.PostgresDSN)
	if err != nil {
		return nil, "", nil, fmt.Errorf("connect postgres: %w", err)
	}
	cleanup := func() { pool.Close() }

	ds, err := o.loadStores(ctx, "postgres",
		pgstore.NewIndexRecordStore(pool), pgstore.NewPriceRecordStore(pool))
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	return ds, config.BackendPostgres, cleanup, nil
}

func (o *Orchestrator) loadClickhouse(ctx context.Context) (*ingestion.Datasets, string, func(), error) {
	conn, err := chstore.NewConn(ctx, o.cfg.Database.ClickhouseDSN)
	if err != nil {
		return nil, "", nil, fmt.Errorf("connect clickhouse: %w", err)
	}
	cleanup := func() {
		if err := conn.Close(); err != nil {
			o.logger.Warn("clickhouse close failed", slog.String("error", err.Error()))
		}
	}

	ds, err := o.loadStores(ctx, "clickhouse",
		chstore.NewIndexRecordStore(conn), chstore.NewPriceRecordStore(conn))
	if err != nil {
		cleanup()
		return nil, "", nil, err
	}
	return ds, config.BackendClickhouse, cleanup, nil
}

func (o *Orchestrator) loadStores(ctx context.Context, database string, index storage.IndexRecordStore, prices storage.PriceRecordStore) (*ingestion.Datasets, error) {
	start := time.Now()
	ds, err := ingestion.LoadFromStores(ctx, index, prices)
	observability.RecordDBQuery(database, "load", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("load from %s: %w", database, err)
	}
	return ds, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
