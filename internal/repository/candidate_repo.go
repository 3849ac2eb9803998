package repository

import (
	"context"
	"strings"

	"github.com/timmy/hirelane/internal/domain"
	"gorm.io/gorm"
)

// CandidateRepository handles database operations for candidates.
type CandidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// List returns candidates ordered by name. A non-empty search matches name,
// email or position case-insensitively.
func (r *CandidateRepository) List(ctx context.Context, search string) ([]domain.Candidate, error) {
	query := r.db.WithContext(ctx)
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		like := "%" + term + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(position) LIKE ?", like, like, like)
	}
	var candidates []domain.Candidate
	if err := query.Order("name ASC").Order("id ASC").Find(&candidates).Error; err != nil {
		return nil, domain.Internal("CandidateRepository.List", "failed to list candidates", err)
	}
	return candidates, nil
}

// GetByID retrieves a candidate by ID.
// Returns a NOT_FOUND error when the candidate does not exist.
func (r *CandidateRepository) GetByID(ctx context.Context, id uint) (*domain.Candidate, error) {
	var c domain.Candidate
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, lookupError(err, "CandidateRepository.GetByID", "candidate", id)
	}
	return &c, nil
}

// Create inserts a new candidate.
func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return domain.Internal("CandidateRepository.Create", "failed to create candidate", err)
	}
	return nil
}

// Update writes every field of an existing candidate.
func (r *CandidateRepository) Update(ctx context.Context, c *domain.Candidate) error {
	if _, err := r.GetByID(ctx, c.ID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return domain.Internal("CandidateRepository.Update", "failed to update candidate", err)
	}
	return nil
}

// Delete removes a candidate by ID.
func (r *CandidateRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Candidate{}, id)
	if res.Error != nil {
		return domain.Internal("CandidateRepository.Delete", "failed to delete candidate", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("CandidateRepository.Delete", "candidate", id)
	}
	return nil
}

// Count returns the total number of candidates.
func (r *CandidateRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Candidate{}).Count(&n).Error; err != nil {
		return 0, domain.Internal("CandidateRepository.Count", "failed to count candidates", err)
	}
	return n, nil
}
