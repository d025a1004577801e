package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/openheritage/arscale/internal/cache"
	"github.com/openheritage/arscale/internal/config"
	"github.com/openheritage/arscale/internal/fetch"
	"github.com/openheritage/arscale/internal/handlers"
	"github.com/openheritage/arscale/internal/router"
	"github.com/openheritage/arscale/internal/service"
	"github.com/openheritage/arscale/internal/storage"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	fetcher := &fetch.OriginFetcher{HTTP: fetch.NewHTTPFetcher(cfg.FetchTimeout, cfg.FetchMaxBytes)}
	if cfg.Storage.Enabled() {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Error("s3 origin unavailable", "error", err)
			os.Exit(1)
		}
		fetcher.S3 = fetch.NewS3Fetcher(client, cfg.FetchMaxBytes)
		logger.Info("s3 origin enabled", "endpoint", cfg.Storage.Endpoint)
	}

	modelCache := cache.New(cfg.CacheTTL, cfg.CacheSweepThreshold)
	scaler := service.New(modelCache, fetcher, cfg.DefaultMaxDimension, logger)

	engine := router.New(cfg, logger,
		handlers.NewModelHandler(scaler, cfg, logger),
		handlers.NewStatsHandler(modelCache),
	)

	logger.Info("starting ar model proxy",
		"port", cfg.Port,
		"default_max_dimension", cfg.DefaultMaxDimension,
		"allowed_hosts", cfg.AllowedHosts,
	)
	if err := engine.Run(":" + cfg.Port); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
