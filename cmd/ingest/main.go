package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rpi-index-lab/internal/config"
	"rpi-index-lab/internal/ingestion"
	"rpi-index-lab/internal/observability"
	"rpi-index-lab/internal/storage"
	chstore "rpi-index-lab/internal/storage/clickhouse"
	"rpi-index-lab/internal/storage/migrations"
	pgstore "rpi-index-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	envFile := flag.String("env-file", ".env", "Path to .env file (missing file is ignored)")
	configFile := flag.String("config", "", "Path to YAML config file")
	target := flag.String("target", "", "Storage backend to import into: postgres or clickhouse (default: config backend)")
	indexSource := flag.String("index-source", "", "Index dataset path or URL (overrides config)")
	priceSource := flag.String("price-source", "", "Price dataset path or URL (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	cfg, err := config.Load(*envFile, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *target != "" {
		cfg.Database.Backend = *target
	}
	if *indexSource != "" {
		cfg.Data.IndexSource = *indexSource
	}
	if *priceSource != "" {
		cfg.Data.PriceSource = *priceSource
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := observability.NewLogger(os.Stdout, observability.LogOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With(slog.String("service", "ingest"))

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Info("starting metrics server", slog.String("addr", *metricsAddr))
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", slog.String("error", err.Error()))
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, cancelling import", slog.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	indexStore, priceStore, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	var opts []ingestion.HTTPOption
	cache, err := ingestion.OpenCache(cfg.Data.CacheDir, cfg.Data.CacheTTL)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer cache.Close()
	opts = append(opts, ingestion.WithCache(cache), ingestion.WithHTTPLogger(logger))

	manager := ingestion.NewManager(ingestion.ManagerOptions{
		IndexReader: ingestion.NewReader(cfg.Data.IndexSource, ingestion.IndexColumns, cfg.Data.FetchTimeout, opts...),
		PriceReader: ingestion.NewReader(cfg.Data.PriceSource, ingestion.PriceColumns, cfg.Data.FetchTimeout, opts...),
		IndexStore:  indexStore,
		PriceStore:  priceStore,
		Logger:      logger,
	})

	start := time.Now()
	res, err := manager.Import(ctx)
	observability.RecordDBQuery(cfg.Database.Backend, "import", time.Since(start).Seconds(), err)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("index quarters already imported into %s: %w", cfg.Database.Backend, err)
		}
		return err
	}

	observability.RecordRowsLoaded("index", res.IndexStats.Kept, res.IndexStats.Dropped)
	observability.RecordRowsLoaded("prices", res.PriceStats.Kept, res.PriceStats.Dropped)
	observability.RecordLoad(cfg.Database.Backend, time.Since(start).Seconds(), time.Now().Unix())

	logger.Info("import complete",
		slog.String("backend", cfg.Database.Backend),
		slog.Int("index_rows", res.IndexStats.Kept),
		slog.Int("index_dropped", res.IndexStats.Dropped),
		slog.Int("price_rows", res.PriceStats.Kept),
		slog.Int("price_dropped", res.PriceStats.Dropped),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// openStores runs migrations for the target backend and returns its stores.
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.IndexRecordStore, storage.PriceRecordStore, func(), error) {
	switch cfg.Database.Backend {
	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if _, err := migrations.RunPostgresMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return pgstore.NewIndexRecordStore(pool), pgstore.NewPriceRecordStore(pool), pool.Close, nil

	case config.BackendClickhouse:
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Database.ClickhouseDSN, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		cleanup := func() {
			if err := conn.Close(); err != nil {
				logger.Warn("clickhouse close failed", slog.String("error", err.Error()))
			}
		}
		return chstore.NewIndexRecordStore(conn), chstore.NewPriceRecordStore(conn), cleanup, nil
	}
	return nil, nil, nil, fmt.Errorf("import target must be %s or %s, got %q",
		config.BackendPostgres, config.BackendClickhouse, cfg.Database.Backend)
}
