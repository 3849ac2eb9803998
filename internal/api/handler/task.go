package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/repository"
	"github.com/timmy/hirelane/internal/service"
)

// TaskHandler exposes the recruiter's to-do list.
type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CompleteRequest is the body of PUT /tasks/:id/complete.
type CompleteRequest struct {
	Completed bool `json:"completed"`
}

// BulkUpdateRequest is the body of POST /tasks/bulk-update.
type BulkUpdateRequest struct {
	IDs   []uint           `json:"ids" binding:"required,min=1"`
	Patch domain.TaskPatch `json:"patch"`
}

// BulkDeleteRequest is the body of POST /tasks/bulk-delete.
type BulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

// List handles GET /api/v1/tasks?category=&search=&completed=.
func (h *TaskHandler) List(c *gin.Context) {
	q := repository.TaskQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "completed", "must be true or false")
			return
		}
		q.Completed = &completed
	}
	tasks, err := h.tasks.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "total": len(tasks)})
}

// Categories handles GET /api/v1/tasks/categories.
func (h *TaskHandler) Categories(c *gin.Context) {
	categories, err := h.tasks.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "total": len(categories)})
}

func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Create(c *gin.Context) {
	var task domain.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	created, err := h.tasks.Create(c.Request.Context(), &task)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PATCH /api/v1/tasks/:id. Absent fields are left untouched.
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch domain.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Complete handles PUT /api/v1/tasks/:id/complete.
func (h *TaskHandler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	task, err := h.tasks.Complete(c.Request.Context(), id, req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkUpdate handles POST /api/v1/tasks/bulk-update.
func (h *TaskHandler) BulkUpdate(c *gin.Context) {
	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ids", err.Error())
		return
	}
	tasks, err := h.tasks.BulkUpdate(c.Request.Context(), req.IDs, req.Patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "updated": len(tasks)})
}

// BulkDelete handles POST /api/v1/tasks/bulk-delete.
func (h *TaskHandler) BulkDelete(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ids", err.Error())
		return
	}
	tasks, err := h.tasks.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "deleted": len(tasks)})
}
