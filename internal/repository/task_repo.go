package repository

import (
	"context"
	"strings"

	"github.com/timmy/hirelane/internal/domain"
	"gorm.io/gorm"
)

// TaskQuery narrows a task listing. Zero values match everything.
type TaskQuery struct {
	Category  string
	Search    string
	Completed *bool
}

// TaskRepository handles database operations for tasks. Ordering is applied
// by the service layer.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns tasks matching q. Search is case-insensitive over title and
// category.
func (r *TaskRepository) List(ctx context.Context, q TaskQuery) ([]domain.Task, error) {
	query := r.db.WithContext(ctx)
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		like := "%" + term + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(category) LIKE ?", like, like)
	}
	if q.Completed != nil {
		query = query.Where("completed = ?", *q.Completed)
	}
	var tasks []domain.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, domain.Internal("TaskRepository.List", "failed to list tasks", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, id uint) (*domain.Task, error) {
	var t domain.Task
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, lookupError(err, "TaskRepository.GetByID", "task", id)
	}
	return &t, nil
}

// GetByIDs retrieves the tasks among ids that exist.
func (r *TaskRepository) GetByIDs(ctx context.Context, ids []uint) ([]domain.Task, error) {
	if len(ids) == 0 {
		return []domain.Task{}, nil
	}
	var tasks []domain.Task
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, domain.Internal("TaskRepository.GetByIDs", "failed to load tasks", err)
	}
	return tasks, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return domain.Internal("TaskRepository.Create", "failed to create task", err)
	}
	return nil
}

// Save writes every field of a task.
func (r *TaskRepository) Save(ctx context.Context, t *domain.Task) error {
	if err := r.db.WithContext(ctx).Save(t).Error; err != nil {
		return domain.Internal("TaskRepository.Save", "failed to save task", err)
	}
	return nil
}

// SaveAll writes tasks in a single transaction.
func (r *TaskRepository) SaveAll(ctx context.Context, tasks []domain.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tasks {
			if err := tx.Save(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Internal("TaskRepository.SaveAll", "failed to save tasks", err)
	}
	return nil
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Task{}, id)
	if res.Error != nil {
		return domain.Internal("TaskRepository.Delete", "failed to delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("TaskRepository.Delete", "task", id)
	}
	return nil
}

// DeleteByIDs removes every task in ids and reports how many were deleted.
func (r *TaskRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Task{})
	if res.Error != nil {
		return 0, domain.Internal("TaskRepository.DeleteByIDs", "failed to delete tasks", res.Error)
	}
	return res.RowsAffected, nil
}

// Categories returns every category in use with its task count, by name.
func (r *TaskRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	err := r.db.WithContext(ctx).Model(&domain.Task{}).
		Select("category AS name, COUNT(*) AS task_count").
		Group("category").
		Order("category ASC").
		Scan(&cats).Error
	if err != nil {
		return nil, domain.Internal("TaskRepository.Categories", "failed to list categories", err)
	}
	return cats, nil
}
