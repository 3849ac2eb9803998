package domain

import "time"

// Priority is a task priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns the sort weight of p: high=3, medium=2, low=1, unknown=0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	return p.Rank() > 0
}

// Task is an item on the personal to-do list.
type Task struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"type:text;not null" json:"title"`
	Category    string     `gorm:"type:text;not null;index:idx_tasks_category" json:"category"`
	Priority    Priority   `gorm:"type:text;not null;default:medium" json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title     *string    `json:"title,omitempty"`
	Category  *string    `json:"category,omitempty"`
	Priority  *Priority  `json:"priority,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
}

// Category is a task category with its derived task count.
type Category struct {
	Name      string `json:"name"`
	TaskCount int64  `json:"task_count"`
}
