package repository

import (
	"context"

	"github.com/timmy/hirelane/internal/domain"
	"gorm.io/gorm"
)

// NoteRepository handles database operations for notes.
type NoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// ListByEntity returns the notes attached to one record, newest first.
func (r *NoteRepository) ListByEntity(ctx context.Context, entityType domain.NoteEntityType, entityID uint) ([]domain.Note, error) {
	var notes []domain.Note
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").Order("id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, domain.Internal("NoteRepository.ListByEntity", "failed to list notes", err)
	}
	return notes, nil
}

// GetByID retrieves a note by ID.
func (r *NoteRepository) GetByID(ctx context.Context, id uint) (*domain.Note, error) {
	var n domain.Note
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, lookupError(err, "NoteRepository.GetByID", "note", id)
	}
	return &n, nil
}

// Create inserts a new note.
func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return domain.Internal("NoteRepository.Create", "failed to create note", err)
	}
	return nil
}

// Update writes the category and content of a note.
func (r *NoteRepository) Update(ctx context.Context, n *domain.Note) error {
	res := r.db.WithContext(ctx).Model(n).Updates(map[string]interface{}{
		"category":   n.Category,
		"content":    n.Content,
		"updated_at": n.UpdatedAt,
	})
	if res.Error != nil {
		return domain.Internal("NoteRepository.Update", "failed to update note", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("NoteRepository.Update", "note", n.ID)
	}
	return nil
}

// Delete removes a note by ID.
func (r *NoteRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Note{}, id)
	if res.Error != nil {
		return domain.Internal("NoteRepository.Delete", "failed to delete note", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("NoteRepository.Delete", "note", id)
	}
	return nil
}
