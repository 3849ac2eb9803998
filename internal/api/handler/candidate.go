package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/service"
)

// MaxResumeSize caps resume uploads.
const MaxResumeSize = 10 << 20

// CandidateHandler exposes candidates and their resumes.
type CandidateHandler struct {
	candidates *service.CandidateService
	pipeline   *service.PipelineService
}

func NewCandidateHandler(candidates *service.CandidateService, pipeline *service.PipelineService) *CandidateHandler {
	return &CandidateHandler{candidates: candidates, pipeline: pipeline}
}

// List handles GET /api/v1/candidates?status=&search=.
func (h *CandidateHandler) List(c *gin.Context) {
	var status domain.DisplayStatus
	if raw := c.Query("status"); raw != "" {
		ds, ok := domain.ParseDisplayStatus(raw)
		if !ok {
			badRequest(c, "status", "must be one of new, interviewed, hired, rejected")
			return
		}
		status = ds
	}
	views, err := h.candidates.List(c.Request.Context(), status, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": views, "total": len(views)})
}

// StatusCounts handles GET /api/v1/candidates/status-counts.
func (h *CandidateHandler) StatusCounts(c *gin.Context) {
	counts, err := h.candidates.StatusCounts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Get handles GET /api/v1/candidates/:id.
func (h *CandidateHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.candidates.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Applications handles GET /api/v1/candidates/:id/applications.
func (h *CandidateHandler) Applications(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	apps, err := h.pipeline.List(c.Request.Context(), &domain.ApplicationFilter{CandidateID: id})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps, "total": len(apps)})
}

// Create handles POST /api/v1/candidates.
func (h *CandidateHandler) Create(c *gin.Context) {
	var cand domain.Candidate
	if err := c.ShouldBindJSON(&cand); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	view, err := h.candidates.Create(c.Request.Context(), &cand)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Update handles PUT /api/v1/candidates/:id.
func (h *CandidateHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var cand domain.Candidate
	if err := c.ShouldBindJSON(&cand); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	view, err := h.candidates.Update(c.Request.Context(), id, &cand)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete handles DELETE /api/v1/candidates/:id.
func (h *CandidateHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.candidates.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadResume handles POST /api/v1/candidates/:id/resume (multipart field "file").
func (h *CandidateHandler) UploadResume(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxResumeSize+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file", "a resume file is required")
		return
	}
	if fh.Size > MaxResumeSize {
		badRequest(c, "file", "resume exceeds 10MB")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "file", "resume could not be read")
		return
	}
	defer f.Close()

	url, err := h.candidates.UploadResume(c.Request.Context(), id, fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// ResumeURL handles GET /api/v1/candidates/:id/resume.
func (h *CandidateHandler) ResumeURL(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	url, err := h.candidates.ResumeURL(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
