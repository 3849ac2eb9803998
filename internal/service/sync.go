package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
)

// ApplicationSource yields applications in batches for mirroring.
type ApplicationSource interface {
	// SourceID returns a stable identifier for logs.
	SourceID() string

	// FetchBatch returns up to limit applications after cursor and the cursor
	// of the next batch, or "" when the source is exhausted.
	FetchBatch(ctx context.Context, cursor string, limit int) ([]domain.Application, string, error)
}

// ApplicationSink receives mirrored applications keyed by their ID.
type ApplicationSink interface {
	Upsert(ctx context.Context, app *domain.Application) error
}

// SyncService copies applications from a source into a local sink.
type SyncService struct {
	sink      ApplicationSink
	cache     CandidateStatusCache
	logger    *logger.Logger
	workers   int
	batchSize int
}

// SyncConfig holds worker pool settings.
type SyncConfig struct {
	Workers   int
	BatchSize int
}

// SyncOptions tunes one run.
type SyncOptions struct {
	DryRun bool // validate and count without writing
}

// SyncStats holds statistics for a sync run.
type SyncStats struct {
	RunID          string
	TotalItems     int64
	ProcessedItems int64
	SkippedItems   int64
	FailedItems    int64
	StartTime      time.Time
	EndTime        time.Time
}

// NewSyncService creates a new sync service. cache may be nil.
func NewSyncService(sink ApplicationSink, cache CandidateStatusCache, log *logger.Logger, cfg *SyncConfig) *SyncService {
	workers, batchSize := cfg.Workers, cfg.BatchSize
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SyncService{
		sink:      sink,
		cache:     cache,
		logger:    log,
		workers:   workers,
		batchSize: batchSize,
	}
}

type syncResult struct {
	appID   uint
	skipped bool
	err     error
}

// Run mirrors up to limit applications from src; limit <= 0 means all.
// Item failures are counted, not returned; a failing fetch stops the run
// and is returned together with the partial stats.
func (s *SyncService) Run(ctx context.Context, src ApplicationSource, limit int, opts *SyncOptions) (*SyncStats, error) {
	if opts == nil {
		opts = &SyncOptions{}
	}
	stats := &SyncStats{RunID: uuid.New().String(), StartTime: time.Now()}
	ctx = logger.SetSyncRunID(ctx, stats.RunID)
	log := logger.FromContextOr(ctx, s.logger).WithField(logger.FieldSyncRunID, stats.RunID)

	log.WithFields(logger.Fields{
		"source":  src.SourceID(),
		"limit":   limit,
		"dry_run": opts.DryRun,
	}).Info("Starting sync")

	itemsChan := make(chan domain.Application, s.workers*2)
	resultsChan := make(chan syncResult, s.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for app := range itemsChan {
				resultsChan <- s.process(ctx, app, opts)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		for result := range resultsChan {
			atomic.AddInt64(&stats.ProcessedItems, 1)
			if result.skipped {
				atomic.AddInt64(&stats.SkippedItems, 1)
			} else if result.err != nil {
				atomic.AddInt64(&stats.FailedItems, 1)
				log.WithField(logger.FieldApplicationID, result.appID).WithError(result.err).
					Error("Failed to sync application")
			}
		}
		close(done)
	}()

	fetchErr := s.feed(ctx, src, limit, itemsChan, stats)

	close(itemsChan)
	wg.Wait()
	close(resultsChan)
	<-done

	stats.EndTime = time.Now()
	log.WithFields(logger.Fields{
		"total":     stats.TotalItems,
		"processed": stats.ProcessedItems,
		"skipped":   stats.SkippedItems,
		"failed":    stats.FailedItems,
	}).WithField(logger.FieldDurationMs, stats.EndTime.Sub(stats.StartTime).Milliseconds()).
		Info("Sync finished")

	if fetchErr != nil {
		return stats, fetchErr
	}
	return stats, ctx.Err()
}

// feed pages through src and hands every application to the workers.
func (s *SyncService) feed(ctx context.Context, src ApplicationSource, limit int, out chan<- domain.Application, stats *SyncStats) error {
	cursor := ""
	fetched := 0
	for ctx.Err() == nil {
		batchLimit := s.batchSize
		if limit > 0 {
			remaining := limit - fetched
			if remaining <= 0 {
				return nil
			}
			batchLimit = min(batchLimit, remaining)
		}

		apps, next, err := src.FetchBatch(ctx, cursor, batchLimit)
		if err != nil {
			return fmt.Errorf("failed to fetch batch from %s: %w", src.SourceID(), err)
		}
		if len(apps) == 0 {
			return nil
		}
		if limit > 0 && len(apps) > limit-fetched {
			apps = apps[:limit-fetched]
		}
		atomic.AddInt64(&stats.TotalItems, int64(len(apps)))
		fetched += len(apps)

		for _, app := range apps {
			select {
			case out <- app:
			case <-ctx.Done():
				return nil
			}
		}

		if next == "" {
			return nil
		}
		cursor = next
	}
	return nil
}

func (s *SyncService) process(ctx context.Context, app domain.Application, opts *SyncOptions) syncResult {
	res := syncResult{appID: app.ID}
	if err := validateMirrored(&app); err != nil {
		res.err = err
		return res
	}
	if opts.DryRun {
		res.skipped = true
		return res
	}
	if err := s.sink.Upsert(ctx, &app); err != nil {
		res.err = err
		return res
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, app.CandidateID); err != nil {
			logger.FromContextOr(ctx, s.logger).WithError(err).
				WithField(logger.FieldCandidateID, app.CandidateID).
				Warn("Failed to invalidate candidate status cache")
		}
	}
	return res
}

func validateMirrored(app *domain.Application) error {
	verr := &domain.ValidationError{}
	if app.ID == 0 {
		verr.Add("id", "id is required")
	}
	if app.JobID == 0 {
		verr.Add("job_id", "job id is required")
	}
	if app.CandidateID == 0 {
		verr.Add("candidate_id", "candidate id is required")
	}
	if !app.Status.IsValid() {
		verr.Add("status", fmt.Sprintf("unknown pipeline stage %q", app.Status))
	}
	if app.AppliedAt.IsZero() {
		verr.Add("applied_at", "applied_at is required")
	}
	return verr.OrNil()
}
