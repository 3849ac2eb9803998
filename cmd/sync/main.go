package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/timmy/hirelane/internal/cache"
	"github.com/timmy/hirelane/internal/config"
	"github.com/timmy/hirelane/internal/logger"
	"github.com/timmy/hirelane/internal/recordapi"
	"github.com/timmy/hirelane/internal/repository"
	"github.com/timmy/hirelane/internal/service"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "hirelane-sync",
	})
	logger.SetDefaultLogger(appLogger)

	limit := flag.Int("limit", 0, "Maximum number of applications to mirror (0 = all)")
	configPath := flag.String("config", "", "Path to config file")
	dryRun := flag.Bool("dry-run", false, "Fetch and validate without writing")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}
	if !cfg.RecordAPI.Enabled {
		appLogger.Fatal("record_api.enabled is false, nothing to sync from")
	}
	if cfg.Database.Driver == "memory" {
		appLogger.Fatal("sync needs a persistent database driver")
	}

	appLogger.WithFields(logger.Fields{
		"limit":   *limit,
		"dry_run": *dryRun,
	}).Info("Starting sync")

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	client, err := recordapi.NewClient(&cfg.RecordAPI)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize record API client")
	}
	src := recordapi.NewApplicationStore(client, cfg.RecordAPI.PageSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mirrored stages change candidate statuses, so cached ones are dropped.
	var statusCache service.CandidateStatusCache
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			appLogger.WithError(err).Warn("Redis unavailable, cached candidate statuses will expire on their own")
		} else {
			defer rdb.Close()
			statusCache = cache.NewStatusCache(cache.NewRedisCache(rdb), cfg.Redis.StatusTTL)
		}
	}

	syncService := service.NewSyncService(
		repository.NewApplicationRepository(db),
		statusCache,
		appLogger,
		&service.SyncConfig{
			Workers:   cfg.Sync.Workers,
			BatchSize: cfg.Sync.BatchSize,
		},
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	stats, err := syncService.Run(ctx, src, *limit, &service.SyncOptions{DryRun: *dryRun})
	if err != nil {
		appLogger.WithError(err).Fatal("Sync failed")
	}
	appLogger.WithFields(logger.Fields{
		"run_id":    stats.RunID,
		"total":     stats.TotalItems,
		"processed": stats.ProcessedItems,
		"skipped":   stats.SkippedItems,
		"failed":    stats.FailedItems,
	}).Info("Sync completed")
	if stats.FailedItems > 0 {
		os.Exit(1)
	}
}
