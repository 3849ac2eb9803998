package repository

import (
	"context"
	"errors"
	"time"

	"github.com/timmy/hirelane/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplicationRepository stores applications in a SQL database.
type ApplicationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewApplicationRepository creates a new ApplicationRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *ApplicationRepository: repository instance bound to db.
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db, now: time.Now}
}

// List retrieves applications matching filter, newest first.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - filter: optional job, candidate and stage constraints.
//
// Returns:
//   - []domain.Application: matching records.
//   - error: non-nil if the query fails.
func (r *ApplicationRepository) List(ctx context.Context, filter *domain.ApplicationFilter) ([]domain.Application, error) {
	query := r.db.WithContext(ctx)
	if filter != nil {
		if filter.JobID != 0 {
			query = query.Where("job_id = ?", filter.JobID)
		}
		if filter.CandidateID != 0 {
			query = query.Where("candidate_id = ?", filter.CandidateID)
		}
		if len(filter.Statuses) > 0 {
			query = query.Where("status IN ?", filter.Statuses)
		}
	}
	var apps []domain.Application
	if err := query.Order("applied_at DESC").Order("id DESC").Find(&apps).Error; err != nil {
		return nil, domain.Internal("ApplicationRepository.List", "failed to list applications", err)
	}
	return apps, nil
}

// Get retrieves an application by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: application ID.
//
// Returns:
//   - *domain.Application: application record if found.
//   - error: NOT_FOUND if missing.
func (r *ApplicationRepository) Get(ctx context.Context, id uint) (*domain.Application, error) {
	var app domain.Application
	if err := r.db.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, lookupError(err, "ApplicationRepository.Get", "application", id)
	}
	return &app, nil
}

// Create inserts a new application in the applied stage.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: job applied to.
//   - candidateID: applying candidate.
//   - notes: optional free text.
//
// Returns:
//   - *domain.Application: stored record with its assigned ID.
//   - error: DUPLICATE if the candidate already applied to the job.
func (r *ApplicationRepository) Create(ctx context.Context, jobID, candidateID uint, notes string) (*domain.Application, error) {
	const op = "ApplicationRepository.Create"

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Application{}).
		Where("job_id = ? AND candidate_id = ?", jobID, candidateID).
		Count(&count).Error; err != nil {
		return nil, domain.Internal(op, "failed to check existing application", err)
	}
	if count > 0 {
		return nil, domain.Duplicate(op, jobID, candidateID)
	}

	now := r.now()
	app := &domain.Application{
		JobID:       jobID,
		CandidateID: candidateID,
		Status:      domain.StageApplied,
		AppliedAt:   now,
		UpdatedAt:   now,
		Notes:       notes,
	}
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		// the unique index catches a concurrent insert of the same pair
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.Duplicate(op, jobID, candidateID)
		}
		return nil, domain.Internal(op, "failed to create application", err)
	}
	return app, nil
}

// Save replaces the mutable fields of an existing application.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - app: application carrying the new status, interview and notes.
//
// Returns:
//   - *domain.Application: stored record.
//   - error: NOT_FOUND if the application does not exist.
func (r *ApplicationRepository) Save(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	const op = "ApplicationRepository.Save"

	existing, err := r.Get(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	existing.Status = app.Status
	existing.UpdatedAt = app.UpdatedAt
	existing.Interview = app.Interview
	existing.Notes = app.Notes

	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, domain.Internal(op, "failed to save application", err)
	}
	return existing, nil
}

// Upsert writes app keyed by its ID, creating or overwriting the row.
// Used when mirroring applications from another store.
func (r *ApplicationRepository) Upsert(ctx context.Context, app *domain.Application) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(app).Error
	if err != nil {
		// another ID already holds this (job, candidate) pair
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Duplicate("ApplicationRepository.Upsert", app.JobID, app.CandidateID)
		}
		return domain.Internal("ApplicationRepository.Upsert", "failed to upsert application", err)
	}
	return nil
}

// Delete removes an application by ID.
func (r *ApplicationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Application{}, id)
	if res.Error != nil {
		return domain.Internal("ApplicationRepository.Delete", "failed to delete application", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("ApplicationRepository.Delete", "application", id)
	}
	return nil
}
