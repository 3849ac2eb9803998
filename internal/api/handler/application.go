package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/service"
)

// ApplicationHandler exposes the hiring pipeline.
type ApplicationHandler struct {
	pipeline *service.PipelineService
}

func NewApplicationHandler(pipeline *service.PipelineService) *ApplicationHandler {
	return &ApplicationHandler{pipeline: pipeline}
}

// ApplyRequest is the body of POST /applications.
type ApplyRequest struct {
	JobID       uint   `json:"job_id" binding:"required"`
	CandidateID uint   `json:"candidate_id" binding:"required"`
	Notes       string `json:"notes"`
}

// TransitionRequest is the body of PUT /applications/:id/status.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// NotesRequest is the body of PUT /applications/:id/notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// List handles GET /api/v1/applications.
// Supported query parameters: job_id, candidate_id and status (comma separated).
func (h *ApplicationHandler) List(c *gin.Context) {
	jobID, ok := queryID(c, "job_id")
	if !ok {
		return
	}
	candidateID, ok := queryID(c, "candidate_id")
	if !ok {
		return
	}
	filter := &domain.ApplicationFilter{JobID: jobID, CandidateID: candidateID}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, valid := domain.ParseStage(part)
			if !valid {
				respondError(c, domain.InvalidStatus("ApplicationHandler.List", part))
				return
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}

	apps, err := h.pipeline.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "total": len(apps)})
}

// Get handles GET /api/v1/applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	app, err := h.pipeline.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Apply handles POST /api/v1/applications.
func (h *ApplicationHandler) Apply(c *gin.Context) {
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	app, err := h.pipeline.Apply(c.Request.Context(), req.JobID, req.CandidateID, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// Transition handles PUT /api/v1/applications/:id/status.
// Stage names are accepted in any case, with spaces or dashes ("Final Review").
func (h *ApplicationHandler) Transition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status", err.Error())
		return
	}
	stage, ok := domain.ParseStage(req.Status)
	if !ok {
		respondError(c, domain.InvalidStatus("ApplicationHandler.Transition", req.Status))
		return
	}
	app, err := h.pipeline.Transition(c.Request.Context(), id, stage)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// ScheduleInterview handles POST /api/v1/applications/:id/interview.
func (h *ApplicationHandler) ScheduleInterview(c *gin.Context) {
	h.interview(c, h.pipeline.ScheduleInterview)
}

// UpdateInterview handles PUT /api/v1/applications/:id/interview.
func (h *ApplicationHandler) UpdateInterview(c *gin.Context) {
	h.interview(c, h.pipeline.UpdateInterview)
}

func (h *ApplicationHandler) interview(c *gin.Context, apply func(context.Context, uint, domain.Interview) (*domain.Application, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var iv domain.Interview
	if err := c.ShouldBindJSON(&iv); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	app, err := apply(c.Request.Context(), id, iv)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// UpdateNotes handles PUT /api/v1/applications/:id/notes.
func (h *ApplicationHandler) UpdateNotes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req NotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	app, err := h.pipeline.UpdateNotes(c.Request.Context(), id, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Upcoming handles GET /api/v1/applications/upcoming?limit=N.
func (h *ApplicationHandler) Upcoming(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		badRequest(c, "limit", "must be a non-negative integer")
		return
	}
	apps, err := h.pipeline.UpcomingInterviews(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "total": len(apps)})
}
