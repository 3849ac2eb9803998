package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/timmy/hirelane/internal/domain"
)

// MemoryApplicationStore keeps applications in process memory. It backs tests
// and the "memory" database driver.
type MemoryApplicationStore struct {
	mu     sync.RWMutex
	apps   map[uint]domain.Application
	nextID uint
	now    func() time.Time
}

// NewMemoryApplicationStore creates an empty store. now may be nil.
func NewMemoryApplicationStore(now func() time.Time) *MemoryApplicationStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryApplicationStore{
		apps:   make(map[uint]domain.Application),
		nextID: 1,
		now:    now,
	}
}

func (s *MemoryApplicationStore) List(ctx context.Context, filter *domain.ApplicationFilter) ([]domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Application, 0, len(s.apps))
	for _, app := range s.apps {
		if filter.Matches(&app) {
			out = append(out, cloneApplication(app))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.After(out[j].AppliedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryApplicationStore) Get(ctx context.Context, id uint) (*domain.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return nil, domain.NotFound("MemoryApplicationStore.Get", "application", id)
	}
	c := cloneApplication(app)
	return &c, nil
}

func (s *MemoryApplicationStore) Create(ctx context.Context, jobID, candidateID uint, notes string) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, app := range s.apps {
		if app.JobID == jobID && app.CandidateID == candidateID {
			return nil, domain.Duplicate("MemoryApplicationStore.Create", jobID, candidateID)
		}
	}

	now := s.now()
	app := domain.Application{
		ID:          s.nextID,
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      domain.StageApplied,
		AppliedAt:   now,
		UpdatedAt:   now,
		Notes:       notes,
	}
	s.apps[app.ID] = app
	s.nextID++

	c := cloneApplication(app)
	return &c, nil
}

func (s *MemoryApplicationStore) Save(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.apps[app.ID]
	if !ok {
		return nil, domain.NotFound("MemoryApplicationStore.Save", "application", app.ID)
	}
	existing.Status = app.Status
	existing.UpdatedAt = app.UpdatedAt
	existing.Interview = app.Interview
	existing.Notes = app.Notes
	existing = cloneApplication(existing)
	s.apps[app.ID] = existing

	c := cloneApplication(existing)
	return &c, nil
}

// Upsert stores app under its own ID, replacing any previous value. The
// ID counter moves past mirrored IDs so later creates do not collide.
func (s *MemoryApplicationStore) Upsert(ctx context.Context, app *domain.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.apps {
		if id != app.ID && existing.JobID == app.JobID && existing.CandidateID == app.CandidateID {
			return domain.Duplicate("MemoryApplicationStore.Upsert", app.JobID, app.CandidateID)
		}
	}
	s.apps[app.ID] = cloneApplication(*app)
	if app.ID >= s.nextID {
		s.nextID = app.ID + 1
	}
	return nil
}

// cloneApplication copies app so callers never share the interview pointer
// with the stored value.
func cloneApplication(app domain.Application) domain.Application {
	if app.Interview != nil {
		iv := *app.Interview
		app.Interview = &iv
	}
	return app
}
