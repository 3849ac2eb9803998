package service

import (
	"context"
	"strings"
	"time"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
)

// DefaultNoteEditWindow is how long after creation a note may be edited.
const DefaultNoteEditWindow = 24 * time.Hour

// NoteStore is the persistence contract for notes.
type NoteStore interface {
	ListByEntity(ctx context.Context, entityType domain.NoteEntityType, entityID uint) ([]domain.Note, error)
	GetByID(ctx context.Context, id uint) (*domain.Note, error)
	Create(ctx context.Context, n *domain.Note) error
	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, id uint) error
}

// NoteService manages communication notes attached to other records.
type NoteService struct {
	store      NoteStore
	editWindow time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewNoteService creates a new NoteService. A non-positive editWindow uses
// DefaultNoteEditWindow.
func NewNoteService(store NoteStore, editWindow time.Duration, log *logger.Logger) *NoteService {
	if editWindow <= 0 {
		editWindow = DefaultNoteEditWindow
	}
	return &NoteService{store: store, editWindow: editWindow, logger: log, now: time.Now}
}

// CanEdit reports whether n is still inside the edit window at now.
func (s *NoteService) CanEdit(n *domain.Note, now time.Time) bool {
	return now.Sub(n.CreatedAt) < s.editWindow
}

// List returns the notes attached to one record, newest first.
func (s *NoteService) List(ctx context.Context, entityType domain.NoteEntityType, entityID uint) ([]domain.Note, error) {
	if !entityType.IsValid() {
		return nil, entityTypeError(entityType)
	}
	return s.store.ListByEntity(ctx, entityType, entityID)
}

// Get returns one note.
func (s *NoteService) Get(ctx context.Context, id uint) (*domain.Note, error) {
	return s.store.GetByID(ctx, id)
}

// Create attaches a new note to a record.
func (s *NoteService) Create(ctx context.Context, n *domain.Note) (*domain.Note, error) {
	n.Content = strings.TrimSpace(n.Content)
	n.Category = strings.TrimSpace(n.Category)

	verr := &domain.ValidationError{}
	if !n.EntityType.IsValid() {
		verr.Add("entity_type", "entity type must be one of candidate, job, client, application")
	}
	if n.EntityID == 0 {
		verr.Add("entity_id", "entity id is required")
	}
	if n.Content == "" {
		verr.Add("content", "content is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	n.ID = 0
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}
	logger.FromContextOr(ctx, s.logger).WithFields(logger.Fields{
		"note_id":     n.ID,
		"entity_type": n.EntityType,
		"entity_id":   n.EntityID,
	}).Info("Note created")
	return n, nil
}

// Update changes the content and category of a note inside its edit window.
func (s *NoteService) Update(ctx context.Context, id uint, category, content string) (*domain.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		verr := &domain.ValidationError{}
		verr.Add("content", "content is required")
		return nil, verr
	}

	n, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !s.CanEdit(n, now) {
		verr := &domain.ValidationError{}
		verr.Add("created_at", "notes can only be edited within "+s.editWindow.String()+" of creation")
		return nil, verr
	}

	n.Category = strings.TrimSpace(category)
	n.Content = content
	n.UpdatedAt = now
	if err := s.store.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}

func entityTypeError(t domain.NoteEntityType) error {
	verr := &domain.ValidationError{}
	verr.Add("entity_type", "unknown entity type "+string(t))
	return verr
}
