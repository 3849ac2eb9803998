package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
	"github.com/timmy/hirelane/internal/repository"
)

// TaskStore is the persistence contract for tasks.
type TaskStore interface {
	List(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error)
	GetByID(ctx context.Context, id uint) (*domain.Task, error)
	GetByIDs(ctx context.Context, ids []uint) ([]domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Save(ctx context.Context, t *domain.Task) error
	SaveAll(ctx context.Context, tasks []domain.Task) error
	Delete(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// SortTasks orders tasks by priority (high first), then by earlier due date
// when both tasks have one, then by newest creation time. The input slice is
// not modified.
func SortTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if a.DueDate != nil && b.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
			return a.DueDate.Before(*b.DueDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out
}

// TaskService manages the personal task list.
type TaskService struct {
	store  TaskStore
	logger *logger.Logger
	now    func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore, log *logger.Logger) *TaskService {
	return &TaskService{store: store, logger: log, now: time.Now}
}

func (s *TaskService) log(ctx context.Context) *logger.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

// List returns the tasks matching q in priority order.
func (s *TaskService) List(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	tasks, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return SortTasks(tasks), nil
}

// Get returns one task.
func (s *TaskService) Get(ctx context.Context, id uint) (*domain.Task, error) {
	return s.store.GetByID(ctx, id)
}

// Create validates and stores a new task. An empty priority becomes medium.
func (s *TaskService) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	t.Category = strings.TrimSpace(t.Category)
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if err := validateTask(t); err != nil {
		return nil, err
	}
	t.ID = 0
	t.CompletedAt = nil
	if t.Completed {
		now := s.now()
		t.CompletedAt = &now
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log(ctx).WithField(logger.FieldTaskID, t.ID).Info("Task created")
	return t, nil
}

// Update applies patch to one task.
func (s *TaskService) Update(ctx context.Context, id uint, patch domain.TaskPatch) (*domain.Task, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyPatch(t, patch)
	if err := validateTask(t); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Complete marks a task done or not done, stamping CompletedAt accordingly.
func (s *TaskService) Complete(ctx context.Context, id uint, completed bool) (*domain.Task, error) {
	return s.Update(ctx, id, domain.TaskPatch{Completed: &completed})
}

// Delete removes one task.
func (s *TaskService) Delete(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}

// BulkUpdate applies the completed, priority and category fields of patch to
// every task in ids. Unknown ids are ignored. Title and due date are never
// changed in bulk.
func (s *TaskService) BulkUpdate(ctx context.Context, ids []uint, patch domain.TaskPatch) ([]domain.Task, error) {
	patch.Title = nil
	patch.DueDate = nil
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	tasks, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		s.applyPatch(&tasks[i], patch)
	}
	if err := s.store.SaveAll(ctx, tasks); err != nil {
		return nil, err
	}

	logger.With(logger.Fields{"requested": len(ids)}).WithCount(len(tasks)).Info(ctx, "Bulk task update applied")
	return SortTasks(tasks), nil
}

// BulkDelete removes every task in ids and returns the tasks that were removed.
func (s *TaskService) BulkDelete(ctx context.Context, ids []uint) ([]domain.Task, error) {
	tasks, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	existing := make([]uint, len(tasks))
	for i := range tasks {
		existing[i] = tasks[i].ID
	}
	if _, err := s.store.DeleteByIDs(ctx, existing); err != nil {
		return nil, err
	}

	logger.With(logger.Fields{"requested": len(ids)}).WithCount(len(tasks)).Info(ctx, "Bulk task delete applied")
	return SortTasks(tasks), nil
}

// Categories returns every task category with its task count.
func (s *TaskService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.store.Categories(ctx)
}

func (s *TaskService) applyPatch(t *domain.Task, patch domain.TaskPatch) {
	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Category != nil {
		t.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		t.DueDate = &due
	}
	if patch.Completed != nil && *patch.Completed != t.Completed {
		t.Completed = *patch.Completed
		if t.Completed {
			now := s.now()
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
}

func validateTask(t *domain.Task) error {
	verr := &domain.ValidationError{}
	if t.Title == "" {
		verr.Add("title", "title is required")
	}
	if t.Category == "" {
		verr.Add("category", "category is required")
	}
	if !t.Priority.IsValid() {
		verr.Add("priority", "priority must be one of low, medium, high")
	}
	return verr.OrNil()
}

func validatePatch(p domain.TaskPatch) error {
	verr := &domain.ValidationError{}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		verr.Add("category", "category is required")
	}
	if p.Priority != nil && !p.Priority.IsValid() {
		verr.Add("priority", "priority must be one of low, medium, high")
	}
	return verr.OrNil()
}
