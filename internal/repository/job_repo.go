package repository

import (
	"context"

	"github.com/timmy/hirelane/internal/domain"
	"gorm.io/gorm"
)

// JobRepository handles database operations for job openings.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// List returns jobs newest first, optionally restricted to one status.
func (r *JobRepository) List(ctx context.Context, status domain.JobStatus) ([]domain.Job, error) {
	query := r.db.WithContext(ctx)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var jobs []domain.Job
	if err := query.Order("created_at DESC").Order("id DESC").Find(&jobs).Error; err != nil {
		return nil, domain.Internal("JobRepository.List", "failed to list jobs", err)
	}
	return jobs, nil
}

// GetByID retrieves a job by ID.
func (r *JobRepository) GetByID(ctx context.Context, id uint) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, lookupError(err, "JobRepository.GetByID", "job", id)
	}
	return &job, nil
}

// Create inserts a new job.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return domain.Internal("JobRepository.Create", "failed to create job", err)
	}
	return nil
}

// Update writes every field of an existing job.
func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	if _, err := r.GetByID(ctx, job.ID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return domain.Internal("JobRepository.Update", "failed to update job", err)
	}
	return nil
}

// Delete removes a job by ID.
func (r *JobRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Job{}, id)
	if res.Error != nil {
		return domain.Internal("JobRepository.Delete", "failed to delete job", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("JobRepository.Delete", "job", id)
	}
	return nil
}

// CountByStatus returns the number of jobs in each status.
func (r *JobRepository) CountByStatus(ctx context.Context) (map[domain.JobStatus]int64, error) {
	var rows []struct {
		Status domain.JobStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Job{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.Internal("JobRepository.CountByStatus", "failed to count jobs", err)
	}
	counts := make(map[domain.JobStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
