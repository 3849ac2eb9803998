package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/service"
)

// JobHandler exposes job openings.
type JobHandler struct {
	jobs *service.JobService
}

func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// List handles GET /api/v1/jobs?status=.
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context(), domain.JobStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": len(jobs)})
}

// Get handles GET /api/v1/jobs/:id and returns the job with its stage breakdown.
func (h *JobHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	summary, err := h.jobs.Summary(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Create handles POST /api/v1/jobs.
func (h *JobHandler) Create(c *gin.Context) {
	var job domain.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	created, err := h.jobs.Create(c.Request.Context(), &job)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/v1/jobs/:id.
func (h *JobHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var job domain.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	updated, err := h.jobs.Update(c.Request.Context(), id, &job)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/jobs/:id.
func (h *JobHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.jobs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
