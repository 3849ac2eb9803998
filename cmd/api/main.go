package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/hirelane/internal/api"
	"github.com/timmy/hirelane/internal/api/handler"
	"github.com/timmy/hirelane/internal/cache"
	"github.com/timmy/hirelane/internal/config"
	"github.com/timmy/hirelane/internal/logger"
	"github.com/timmy/hirelane/internal/notify"
	"github.com/timmy/hirelane/internal/recordapi"
	"github.com/timmy/hirelane/internal/repository"
	"github.com/timmy/hirelane/internal/service"
	"github.com/timmy/hirelane/internal/storage"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx := context.Background()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to access database handle")
	}
	defer sqlDB.Close()

	jobRepo := repository.NewJobRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	clientRepo := repository.NewClientRepository(db)
	healthChecks := map[string]handler.Pinger{
		"database": handler.PingFunc(sqlDB.PingContext),
	}

	// Application store: local database, process memory or the hosted record API.
	var (
		appStore   service.ApplicationStore
		syncSink   service.ApplicationSink
		syncSource service.ApplicationSource
	)
	switch cfg.Database.Driver {
	case "memory":
		mem := repository.NewMemoryApplicationStore(nil)
		appStore, syncSink = mem, mem
	default:
		repo := repository.NewApplicationRepository(db)
		appStore, syncSink = repo, repo
	}
	if cfg.RecordAPI.Enabled {
		client, err := recordapi.NewClient(&cfg.RecordAPI)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize record API client")
		}
		remote := recordapi.NewApplicationStore(client, cfg.RecordAPI.PageSize)
		if cfg.RecordAPI.Primary {
			appStore, syncSink = remote, nil
		} else {
			syncSource = remote
		}
		appLogger.WithFields(logger.Fields{
			"base_url": cfg.RecordAPI.BaseURL,
			"primary":  cfg.RecordAPI.Primary,
		}).Info("Record API enabled")
	}

	var statusCache service.CandidateStatusCache
	if cfg.Redis.Enabled {
		rdb, err := cache.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer rdb.Close()
		statusCache = cache.NewStatusCache(cache.NewRedisCache(rdb), cfg.Redis.StatusTTL)
		healthChecks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	var resumes storage.ObjectStorage
	if cfg.Storage.Enabled {
		resumes, err = storage.NewStorage(&cfg.Storage)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize storage")
		}
		if err := resumes.EnsureBucket(ctx); err != nil {
			appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
		}
	}

	pipelineOpts := []service.PipelineOption{service.WithReferenceLookups(jobRepo, candidateRepo)}
	if statusCache != nil {
		pipelineOpts = append(pipelineOpts, service.WithStatusCache(statusCache))
	}
	if cfg.Mail.Enabled() {
		mailer, err := notify.NewMailer(&cfg.Mail)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize mailer")
		}
		pipelineOpts = append(pipelineOpts, service.WithInterviewNotifier(notify.NewInterviewMailer(mailer, candidateRepo, jobRepo)))
		appLogger.WithField("smtp_host", cfg.Mail.Host).Info("Interview invitations enabled")
	}

	pipeline := service.NewPipelineService(appStore, appLogger, pipelineOpts...)
	services := &api.Services{
		Pipeline:     pipeline,
		Candidates:   service.NewCandidateService(candidateRepo, appStore, statusCache, resumes, appLogger),
		Jobs:         service.NewJobService(jobRepo, appStore, clientRepo, appLogger),
		Clients:      service.NewClientService(clientRepo, appLogger),
		Notes:        service.NewNoteService(repository.NewNoteRepository(db), cfg.Notes.EditWindow, appLogger),
		Tasks:        service.NewTaskService(repository.NewTaskRepository(db), appLogger),
		Dashboard:    service.NewDashboardService(pipeline, jobRepo, candidateRepo),
		SyncSource:   syncSource,
		HealthChecks: healthChecks,
	}
	if syncSink != nil {
		services.Sync = service.NewSyncService(syncSink, statusCache, appLogger, &service.SyncConfig{
			Workers:   cfg.Sync.Workers,
			BatchSize: cfg.Sync.BatchSize,
		})
	}

	router := api.SetupRouter(services, &cfg.Server, appLogger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":   cfg.Server.Port,
			"mode":   cfg.Server.Mode,
			"driver": cfg.Database.Driver,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
