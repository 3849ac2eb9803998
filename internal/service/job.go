package service

import (
	"context"
	"strings"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
)

// JobStore is the persistence contract for job openings.
type JobStore interface {
	JobLookup
	List(ctx context.Context, status domain.JobStatus) ([]domain.Job, error)
	Create(ctx context.Context, job *domain.Job) error
	Update(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error)
}

// ClientLookup resolves client references.
type ClientLookup interface {
	GetByID(ctx context.Context, id uint) (*domain.Client, error)
}

// JobService manages job openings and their applicant aggregates.
type JobService struct {
	store   JobStore
	apps    ApplicationStore
	clients ClientLookup
	logger  *logger.Logger
}

// NewJobService creates a new JobService. clients may be nil, in which case
// client references are not checked.
func NewJobService(store JobStore, apps ApplicationStore, clients ClientLookup, log *logger.Logger) *JobService {
	return &JobService{store: store, apps: apps, clients: clients, logger: log}
}

func (s *JobService) log(ctx context.Context) *logger.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// List returns jobs with their applicant counts, optionally restricted to one status.
func (s *JobService) List(ctx context.Context, status domain.JobStatus) ([]domain.JobSummary, error) {
	if status != "" && !status.IsValid() {
		return nil, jobStatusError(status)
	}
	jobs, err := s.store.List(ctx, status)
	if err != nil {
		return nil, err
	}
	apps, err := s.apps.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	byJob := make(map[uint][]domain.Application)
	for _, app := range apps {
		byJob[app.JobID] = append(byJob[app.JobID], app)
	}

	summaries := make([]domain.JobSummary, len(jobs))
	for i, job := range jobs {
		summaries[i] = summarize(job, byJob[job.ID])
	}
	return summaries, nil
}

// Summary returns one job with its applicant count and stage breakdown.
func (s *JobService) Summary(ctx context.Context, id uint) (*domain.JobSummary, error) {
	job, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apps, err := s.apps.List(ctx, &domain.ApplicationFilter{JobID: id})
	if err != nil {
		return nil, err
	}
	summary := summarize(*job, apps)
	return &summary, nil
}

// Create validates and stores a new job. An empty status becomes draft.
func (s *JobService) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	if err := s.prepare(ctx, job); err != nil {
		return nil, err
	}
	job.ID = 0
	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}
	s.log(ctx).WithFields(logger.Fields{
		logger.FieldJobID:  job.ID,
		logger.FieldStatus: job.Status,
	}).Info("Job created")
	return job, nil
}

// Update replaces every field of an existing job.
func (s *JobService) Update(ctx context.Context, id uint, job *domain.Job) (*domain.Job, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.prepare(ctx, job); err != nil {
		return nil, err
	}
	job.ID = existing.ID
	job.CreatedAt = existing.CreatedAt
	if err := s.store.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a job. Applications referencing it are left in place.
func (s *JobService) Delete(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}

func (s *JobService) prepare(ctx context.Context, job *domain.Job) error {
	job.Title = strings.TrimSpace(job.Title)
	job.Company = strings.TrimSpace(job.Company)
	if job.Status == "" {
		job.Status = domain.JobStatusDraft
	}

	verr := &domain.ValidationError{}
	if job.Title == "" {
		verr.Add("title", "title is required")
	}
	if !job.Status.IsValid() {
		verr.Add("status", "status must be one of active, draft, closed")
	}
	if job.SalaryMin < 0 || job.SalaryMax < 0 {
		verr.Add("salary", "salary cannot be negative")
	} else if job.SalaryMax > 0 && job.SalaryMin > job.SalaryMax {
		verr.Add("salary", "salary_min cannot exceed salary_max")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	if job.ClientID != nil && s.clients != nil {
		if _, err := s.clients.GetByID(ctx, *job.ClientID); err != nil {
			return err
		}
	}
	return nil
}

func summarize(job domain.Job, apps []domain.Application) domain.JobSummary {
	return domain.JobSummary{
		Job:         job,
		Applicants:  len(apps),
		StageCounts: StageCounts(apps),
	}
}

func jobStatusError(status domain.JobStatus) error {
	verr := &domain.ValidationError{}
	verr.Add("status", "unknown job status "+string(status))
	return verr
}
