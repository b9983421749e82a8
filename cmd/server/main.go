// Package main runs the RPI explorer HTTP service:
// - loads both datasets from the configured origin
// - serves chart, base, price and selector endpoints
// - pushes base changes to websocket clients
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

	"rpi-index-lab/internal/config"
	"rpi-index-lab/internal/observability"
	"rpi-index-lab/internal/orchestrator"
	transport "rpi-index-lab/internal/transport/http"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to .env file (missing file is ignored)")
	configFile := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	backend := flag.String("backend", "", "Dataset backend: file, postgres, clickhouse (overrides config)")
	indexSource := flag.String("index-source", "", "Index dataset path or URL (overrides config)")
	priceSource := flag.String("price-source", "", "Price dataset path or URL (overrides config)")
	applyBase := flag.Bool("apply-base", false, "Apply the configured base period at startup")

	flag.Parse()

	cfg, err := config.Load(*envFile, *configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *backend != "" {
		cfg.Database.Backend = *backend
	}
	if *indexSource != "" {
		cfg.Data.IndexSource = *indexSource
	}
	if *priceSource != "" {
		cfg.Data.PriceSource = *priceSource
	}
	if *applyBase {
		cfg.Explorer.ApplyBaseOnLoad = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(os.Stdout, observability.LogOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With(slog.String("service", "server"))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, shutdownTracing, err := observability.NewTracerProvider(cfg.Tracing.Enabled, os.Stderr)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	res, err := orchestrator.New(orchestrator.Options{
		Config:         cfg,
		Logger:         logger,
		TracerProvider: tp,
	}).Run(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer res.Cleanup()

	api := transport.NewServer(res.Explorer, logger)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, initiating graceful shutdown", slog.String("signal", sig.String()))
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	}

	// Wait for second signal for immediate shutdown
	go func() {
		sig := <-sigCh
		logger.Warn("received second signal, forcing immediate shutdown", slog.String("signal", sig.String()))
		os.Exit(1)
	}()

	api.Hub().Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
