package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/timmy/hirelane/internal/domain"
)

type sliceSource struct {
	apps    []domain.Application
	failAt  int
	fetches int
}

func (s *sliceSource) SourceID() string { return "slice" }

func (s *sliceSource) FetchBatch(ctx context.Context, cursor string, limit int) ([]domain.Application, string, error) {
	s.fetches++
	offset := 0
	if cursor != "" {
		offset, _ = strconv.Atoi(cursor)
	}
	if s.failAt > 0 && offset >= s.failAt {
		return nil, "", errors.New("upstream unavailable")
	}
	end := min(offset+limit, len(s.apps))
	next := ""
	if end < len(s.apps) {
		next = strconv.Itoa(end)
	}
	return s.apps[offset:end], next, nil
}

type mapSink struct {
	mu   sync.Mutex
	apps map[uint]domain.Application
}

func (m *mapSink) Upsert(ctx context.Context, app *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[app.ID] = *app
	return nil
}

func mirrored(n int) []domain.Application {
	out := make([]domain.Application, n)
	for i := range out {
		out[i] = domain.Application{
			ID: uint(i + 1), JobID: 1, CandidateID: uint(i + 1),
			Status: domain.StageScreening, AppliedAt: testNow,
		}
	}
	return out
}

func TestSyncServiceRun(t *testing.T) {
	src := &sliceSource{apps: mirrored(7)}
	src.apps[3].Status = domain.Stage("mystery")
	sink := &mapSink{apps: map[uint]domain.Application{}}
	svc := NewSyncService(sink, nil, testLogger(), &SyncConfig{Workers: 3, BatchSize: 3})

	stats, err := svc.Run(context.Background(), src, 0, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.TotalItems != 7 || stats.ProcessedItems != 7 || stats.FailedItems != 1 || stats.SkippedItems != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(sink.apps) != 6 {
		t.Errorf("sink holds %d applications, want 6", len(sink.apps))
	}
	if src.fetches != 3 {
		t.Errorf("fetched %d batches, want 3", src.fetches)
	}
	if stats.RunID == "" || stats.EndTime.Before(stats.StartTime) {
		t.Errorf("run metadata = %q %v %v", stats.RunID, stats.StartTime, stats.EndTime)
	}
}

func TestSyncServiceLimitAndDryRun(t *testing.T) {
	src := &sliceSource{apps: mirrored(10)}
	sink := &mapSink{apps: map[uint]domain.Application{}}
	cache := &recordingCache{}
	svc := NewSyncService(sink, cache, testLogger(), &SyncConfig{Workers: 2, BatchSize: 4})

	stats, err := svc.Run(context.Background(), src, 5, &SyncOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.TotalItems != 5 || stats.SkippedItems != 5 {
		t.Errorf("stats = %+v", stats)
	}
	if len(sink.apps) != 0 || len(cache.invalidated) != 0 {
		t.Error("dry run wrote to the sink or cache")
	}
}

func TestSyncServiceFetchFailure(t *testing.T) {
	src := &sliceSource{apps: mirrored(6), failAt: 4}
	sink := &mapSink{apps: map[uint]domain.Application{}}
	svc := NewSyncService(sink, nil, testLogger(), &SyncConfig{Workers: 1, BatchSize: 4})

	stats, err := svc.Run(context.Background(), src, 0, nil)
	if err == nil {
		t.Fatal("Run() error = nil, want fetch failure")
	}
	if stats.ProcessedItems != 4 || len(sink.apps) != 4 {
		t.Errorf("partial run processed %d, stored %d; want 4 and 4", stats.ProcessedItems, len(sink.apps))
	}
}

func TestSyncServiceInvalidatesCache(t *testing.T) {
	sink := &mapSink{apps: map[uint]domain.Application{}}
	cache := &recordingCache{}
	svc := NewSyncService(sink, cache, testLogger(), &SyncConfig{Workers: 1, BatchSize: 10})

	if _, err := svc.Run(context.Background(), &sliceSource{apps: mirrored(2)}, 0, nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(cache.invalidated) != 2 {
		t.Errorf("invalidated %d candidates, want 2", len(cache.invalidated))
	}
}
