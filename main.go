package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"social-analytics/config"
	"social-analytics/metrics"
	"social-analytics/services"
	"social-analytics/storage"
	"social-analytics/utils"
)

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	registry *prometheus.Registry
	store    *storage.DatasetStore
	importer *services.Importer
	engine   *services.Engine
	report   *services.ReportService
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := utils.NewLoggerWithOptions(cfg.LogLevel, cfg.LogFormat)

	kv, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		store:    storage.NewDatasetStore(kv, cfg.DatasetKey),
		importer: services.NewImporter(logger, recorder, services.BatchPolicy(cfg.ImportPolicy), cfg.TopPostsLimit),
		engine:   services.NewEngine(logger, recorder, cfg.SummaryTopPosts),
		report:   services.NewReportService(logger),
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (storage.KeyValueStore, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: time.Second, Logger: logger}
		ps, err := storage.NewPostgresStore(ctx, cfg.DSN(), retry)
		if err != nil {
			logger.Error("Make sure PostgreSQL is running: docker compose up -d")
			return nil, err
		}
		logger.Info("[store] Using PostgreSQL at %s:%s/%s", cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresDB)
		return ps, nil
	case config.BackendRedis:
		rs, err := storage.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("[store] Using Redis")
		return rs, nil
	default:
		logger.Debug("[store] Using in-memory store; data lasts only for this process")
		return storage.NewMemoryStore(), nil
	}
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("[store] Close failed: %v", err)
	}
	_ = a.logger.Sync()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
