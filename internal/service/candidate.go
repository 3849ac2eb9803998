package service

import (
	"context"
	"io"
	"strings"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
	"github.com/timmy/hirelane/internal/storage"
)

// CandidateStore is the persistence contract for candidates.
type CandidateStore interface {
	CandidateLookup
	List(ctx context.Context, search string) ([]domain.Candidate, error)
	Create(ctx context.Context, c *domain.Candidate) error
	Update(ctx context.Context, c *domain.Candidate) error
	Delete(ctx context.Context, id uint) error
}

// CandidateService serves candidates together with their derived status.
type CandidateService struct {
	store  CandidateStore
	apps   ApplicationStore
	cache  CandidateStatusCache
	files  storage.ObjectStorage
	logger *logger.Logger
}

// NewCandidateService creates a new CandidateService. cache and files may be nil.
// Parameters:
//   - store: candidate persistence.
//   - apps: application store used to derive display statuses.
//   - cache: optional display status cache.
//   - files: optional object storage for resumes.
//   - log: logger used when the context carries none.
//
// Returns:
//   - *CandidateService: initialized service.
func NewCandidateService(store CandidateStore, apps ApplicationStore, cache CandidateStatusCache, files storage.ObjectStorage, log *logger.Logger) *CandidateService {
	return &CandidateService{store: store, apps: apps, cache: cache, files: files, logger: log}
}

func (s *CandidateService) log(ctx context.Context) *logger.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// List returns candidates with their display status. An empty status matches
// every candidate; search matches name, email or position.
func (s *CandidateService) List(ctx context.Context, status domain.DisplayStatus, search string) ([]domain.CandidateView, error) {
	candidates, err := s.store.List(ctx, search)
	if err != nil {
		return nil, err
	}
	byCandidate, err := s.applicationsByCandidate(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]domain.CandidateView, 0, len(candidates))
	for _, c := range candidates {
		view := domain.CandidateView{Candidate: c, Status: ComputeCandidateStatus(byCandidate[c.ID])}
		if status != "" && view.Status != status {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns one candidate with its display status.
func (s *CandidateService) Get(ctx context.Context, id uint) (*domain.CandidateView, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	status, err := s.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.CandidateView{Candidate: *c, Status: status}, nil
}

// Status returns the display status of one candidate, consulting the cache
// first when one is configured. Cache failures fall back to computing.
func (s *CandidateService) Status(ctx context.Context, candidateID uint) (domain.DisplayStatus, error) {
	if s.cache != nil {
		status, hit, err := s.cache.Get(ctx, candidateID)
		if err != nil {
			s.log(ctx).WithError(err).WithField(logger.FieldCandidateID, candidateID).
				Warn("Candidate status cache read failed")
		} else if hit {
			return status, nil
		}
	}

	apps, err := s.apps.List(ctx, &domain.ApplicationFilter{CandidateID: candidateID})
	if err != nil {
		return "", err
	}
	status := ComputeCandidateStatus(apps)

	if s.cache != nil {
		if err := s.cache.Set(ctx, candidateID, status); err != nil {
			s.log(ctx).WithError(err).WithField(logger.FieldCandidateID, candidateID).
				Warn("Candidate status cache write failed")
		}
	}
	return status, nil
}

// StatusCounts returns the number of candidates per display status. Every
// display status is present.
func (s *CandidateService) StatusCounts(ctx context.Context) (map[domain.DisplayStatus]int, error) {
	views, err := s.List(ctx, "", "")
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.DisplayStatus]int, len(domain.DisplayStatuses))
	for _, st := range domain.DisplayStatuses {
		counts[st] = 0
	}
	for _, v := range views {
		counts[v.Status]++
	}
	return counts, nil
}

// Create validates and stores a new candidate.
func (s *CandidateService) Create(ctx context.Context, c *domain.Candidate) (*domain.CandidateView, error) {
	normalizeCandidate(c)
	if err := validateCandidate(c); err != nil {
		return nil, err
	}
	c.ID = 0
	c.ResumeKey = ""
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log(ctx).WithField(logger.FieldCandidateID, c.ID).Info("Candidate created")
	return &domain.CandidateView{Candidate: *c, Status: domain.DisplayNew}, nil
}

// Update replaces the profile fields of a candidate. The stored resume key is kept.
func (s *CandidateService) Update(ctx context.Context, id uint, c *domain.Candidate) (*domain.CandidateView, error) {
	normalizeCandidate(c)
	if err := validateCandidate(c); err != nil {
		return nil, err
	}
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.ResumeKey = existing.ResumeKey
	c.CreatedAt = existing.CreatedAt
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a candidate and its resume object.
func (s *CandidateService) Delete(ctx context.Context, id uint) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.log(ctx).WithError(err).WithField(logger.FieldCandidateID, id).
				Warn("Failed to invalidate candidate status cache")
		}
	}
	s.removeObject(ctx, existing.ResumeKey)
	return nil
}

// UploadResume stores a resume file for the candidate and returns its URL.
// A previously stored resume is removed.
func (s *CandidateService) UploadResume(ctx context.Context, id uint, filename string, r io.Reader, size int64, contentType string) (string, error) {
	const op = "CandidateService.UploadResume"
	if s.files == nil {
		return "", domain.E(domain.CodeUnavailable, op, "resume storage is not configured", nil)
	}
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.ResumeKey(id, filename)
	if err := s.files.Upload(ctx, key, r, size, contentType); err != nil {
		return "", domain.Internal(op, "failed to store resume", err)
	}

	previous := c.ResumeKey
	c.ResumeKey = key
	if err := s.store.Update(ctx, c); err != nil {
		s.removeObject(ctx, key)
		return "", err
	}
	s.removeObject(ctx, previous)

	logger.With(logger.Fields{
		logger.FieldCandidateID: id,
		"key":                   key,
	}).WithField(logger.FieldSize, size).Info(ctx, "Resume uploaded")
	return s.files.GetURL(key), nil
}

// ResumeURL returns the URL of the candidate's resume.
func (s *CandidateService) ResumeURL(ctx context.Context, id uint) (string, error) {
	const op = "CandidateService.ResumeURL"
	if s.files == nil {
		return "", domain.E(domain.CodeUnavailable, op, "resume storage is not configured", nil)
	}
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if c.ResumeKey == "" {
		return "", domain.E(domain.CodeNotFound, op, "candidate has no resume", nil)
	}
	return s.files.GetURL(c.ResumeKey), nil
}

func (s *CandidateService) removeObject(ctx context.Context, key string) {
	if key == "" || s.files == nil {
		return
	}
	if err := s.files.Delete(ctx, key); err != nil {
		s.log(ctx).WithError(err).WithField("key", key).Warn("Failed to delete stored object")
	}
}

func (s *CandidateService) applicationsByCandidate(ctx context.Context) (map[uint][]domain.Application, error) {
	apps, err := s.apps.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	grouped := make(map[uint][]domain.Application)
	for _, app := range apps {
		grouped[app.CandidateID] = append(grouped[app.CandidateID], app)
	}
	return grouped, nil
}

func normalizeCandidate(c *domain.Candidate) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Position = strings.TrimSpace(c.Position)
}

func validateCandidate(c *domain.Candidate) error {
	verr := &domain.ValidationError{}
	if c.Name == "" {
		verr.Add("name", "name is required")
	}
	if c.Email != "" && !looksLikeEmail(c.Email) {
		verr.Add("email", "email address is invalid")
	}
	return verr.OrNil()
}

func looksLikeEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
