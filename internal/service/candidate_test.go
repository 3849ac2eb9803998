package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/repository"
)

type memoryObjects struct {
	objects map[string]string
	deleted []string
}

func (m *memoryObjects) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = string(b)
	return nil
}

func (m *memoryObjects) GetURL(key string) string { return "https://files.example.com/" + key }

func (m *memoryObjects) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *memoryObjects) EnsureBucket(ctx context.Context) error { return nil }

type mapStatusCache struct {
	data  map[uint]domain.DisplayStatus
	reads int
}

func (m *mapStatusCache) Get(ctx context.Context, id uint) (domain.DisplayStatus, bool, error) {
	m.reads++
	st, ok := m.data[id]
	return st, ok, nil
}

func (m *mapStatusCache) Set(ctx context.Context, id uint, st domain.DisplayStatus) error {
	m.data[id] = st
	return nil
}

func (m *mapStatusCache) Invalidate(ctx context.Context, id uint) error {
	delete(m.data, id)
	return nil
}

type candidateFixture struct {
	svc      *CandidateService
	pipeline *PipelineService
	cache    *mapStatusCache
	files    *memoryObjects
}

func newCandidateFixture(t *testing.T) *candidateFixture {
	t.Helper()
	db := newTestDB(t)
	apps := repository.NewApplicationRepository(db)
	cache := &mapStatusCache{data: map[uint]domain.DisplayStatus{}}
	files := &memoryObjects{objects: map[string]string{}}
	return &candidateFixture{
		svc:      NewCandidateService(repository.NewCandidateRepository(db), apps, cache, files, testLogger()),
		pipeline: NewPipelineService(apps, testLogger(), WithStatusCache(cache)),
		cache:    cache,
		files:    files,
	}
}

func (f *candidateFixture) create(t *testing.T, name, position string) *domain.CandidateView {
	t.Helper()
	view, err := f.svc.Create(context.Background(), &domain.Candidate{Name: name, Email: strings.ToLower(strings.Fields(name)[0]) + "@example.com", Position: position})
	if err != nil {
		t.Fatalf("Create(%q) error = %v", name, err)
	}
	return view
}

func TestCandidateServiceListFiltersByDerivedStatus(t *testing.T) {
	ctx := context.Background()
	f := newCandidateFixture(t)

	ada := f.create(t, "Ada Lovelace", "Engineer")
	grace := f.create(t, "Grace Hopper", "Engineer")
	alan := f.create(t, "Alan Turing", "Researcher")

	a1, _ := f.pipeline.Apply(ctx, 1, ada.ID, "")
	f.pipeline.Transition(ctx, a1.ID, domain.StageHired)
	g1, _ := f.pipeline.Apply(ctx, 1, grace.ID, "")
	f.pipeline.Transition(ctx, g1.ID, domain.StageScreening)
	f.pipeline.Apply(ctx, 2, alan.ID, "")

	tests := []struct {
		status domain.DisplayStatus
		search string
		want   []string
	}{
		{"", "", []string{"Ada Lovelace", "Alan Turing", "Grace Hopper"}},
		{domain.DisplayHired, "", []string{"Ada Lovelace"}},
		{domain.DisplayInterviewed, "", []string{"Grace Hopper"}},
		{domain.DisplayNew, "", []string{"Alan Turing"}},
		{"", "engineer", []string{"Ada Lovelace", "Grace Hopper"}},
		{domain.DisplayRejected, "", nil},
	}
	for _, tt := range tests {
		views, err := f.svc.List(ctx, tt.status, tt.search)
		if err != nil {
			t.Fatalf("List(%q, %q) error = %v", tt.status, tt.search, err)
		}
		if len(views) != len(tt.want) {
			t.Fatalf("List(%q, %q) returned %d, want %d", tt.status, tt.search, len(views), len(tt.want))
		}
		for i := range views {
			if views[i].Name != tt.want[i] {
				t.Errorf("List(%q, %q)[%d] = %q, want %q", tt.status, tt.search, i, views[i].Name, tt.want[i])
			}
		}
	}

	counts, err := f.svc.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts() error = %v", err)
	}
	want := map[domain.DisplayStatus]int{domain.DisplayNew: 1, domain.DisplayInterviewed: 1, domain.DisplayHired: 1, domain.DisplayRejected: 0}
	for st, n := range want {
		if counts[st] != n {
			t.Errorf("StatusCounts()[%q] = %d, want %d", st, counts[st], n)
		}
	}
}

func TestCandidateStatusCacheIsRefreshedAfterTransitions(t *testing.T) {
	ctx := context.Background()
	f := newCandidateFixture(t)
	ada := f.create(t, "Ada Lovelace", "Engineer")

	app, _ := f.pipeline.Apply(ctx, 1, ada.ID, "")
	if st, _ := f.svc.Status(ctx, ada.ID); st != domain.DisplayNew {
		t.Fatalf("Status() = %q, want new", st)
	}
	if f.cache.data[ada.ID] != domain.DisplayNew {
		t.Errorf("status was not cached")
	}

	f.pipeline.Transition(ctx, app.ID, domain.StageRejected)
	if _, ok := f.cache.data[ada.ID]; ok {
		t.Fatal("transition did not invalidate the cached status")
	}
	if st, _ := f.svc.Status(ctx, ada.ID); st != domain.DisplayRejected {
		t.Errorf("Status() after rejection = %q, want rejected", st)
	}
}

func TestCandidateServiceValidation(t *testing.T) {
	f := newCandidateFixture(t)
	_, err := f.svc.Create(context.Background(), &domain.Candidate{Name: " ", Email: "not-an-email"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || !verr.Has("name") || !verr.Has("email") {
		t.Errorf("Create() error = %v, want name and email failures", err)
	}
}

func TestCandidateServiceUploadResume(t *testing.T) {
	ctx := context.Background()
	f := newCandidateFixture(t)
	ada := f.create(t, "Ada Lovelace", "Engineer")

	url, err := f.svc.UploadResume(ctx, ada.ID, "Ada CV.PDF", strings.NewReader("%PDF"), 4, "application/pdf")
	if err != nil {
		t.Fatalf("UploadResume() error = %v", err)
	}
	if !strings.HasPrefix(url, "https://files.example.com/resumes/") || !strings.HasSuffix(url, ".pdf") {
		t.Errorf("UploadResume() url = %q", url)
	}

	first, _ := f.svc.Get(ctx, ada.ID)
	if _, ok := f.files.objects[first.ResumeKey]; !ok {
		t.Fatalf("resume key %q not stored", first.ResumeKey)
	}

	if _, err := f.svc.UploadResume(ctx, ada.ID, "v2.pdf", strings.NewReader("%PDF2"), 5, ""); err != nil {
		t.Fatalf("second UploadResume() error = %v", err)
	}
	if _, ok := f.files.objects[first.ResumeKey]; ok {
		t.Error("previous resume was not removed")
	}

	got, err := f.svc.ResumeURL(ctx, ada.ID)
	if err != nil || got == url {
		t.Errorf("ResumeURL() = %q, %v; want the new upload", got, err)
	}

	if _, err := f.svc.UploadResume(ctx, 999, "x.pdf", strings.NewReader(""), 0, ""); !domain.IsCode(err, domain.CodeNotFound) {
		t.Errorf("UploadResume(unknown) error = %v, want NOT_FOUND", err)
	}
}

func TestCandidateServiceWithoutStorage(t *testing.T) {
	db := newTestDB(t)
	svc := NewCandidateService(repository.NewCandidateRepository(db), repository.NewApplicationRepository(db), nil, nil, testLogger())
	_, err := svc.UploadResume(context.Background(), 1, "cv.pdf", strings.NewReader(""), 0, "")
	if !domain.IsCode(err, domain.CodeUnavailable) {
		t.Errorf("UploadResume() error = %v, want UNAVAILABLE", err)
	}
}
