package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/service"
)

// NoteHandler exposes communication notes.
type NoteHandler struct {
	notes *service.NoteService
}

func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// NoteView is a note together with whether it may still be edited.
type NoteView struct {
	domain.Note
	Edited  bool `json:"edited"`
	CanEdit bool `json:"can_edit"`
}

// UpdateNoteRequest is the body of PUT /notes/:id.
type UpdateNoteRequest struct {
	Category string `json:"category"`
	Content  string `json:"content"`
}

func (h *NoteHandler) view(n *domain.Note, now time.Time) NoteView {
	return NoteView{Note: *n, Edited: n.Edited(), CanEdit: h.notes.CanEdit(n, now)}
}

// List handles GET /api/v1/notes?entity_type=&entity_id=.
func (h *NoteHandler) List(c *gin.Context) {
	entityID, err := strconv.ParseUint(c.Query("entity_id"), 10, 64)
	if err != nil || entityID == 0 {
		badRequest(c, "entity_id", "must be a positive integer")
		return
	}
	notes, err := h.notes.List(c.Request.Context(), domain.NoteEntityType(c.Query("entity_type")), uint(entityID))
	if err != nil {
		respondError(c, err)
		return
	}
	now := time.Now()
	views := make([]NoteView, len(notes))
	for i := range notes {
		views[i] = h.view(&notes[i], now)
	}
	c.JSON(http.StatusOK, gin.H{"notes": views, "total": len(views)})
}

// Get handles GET /api/v1/notes/:id.
func (h *NoteHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, err := h.notes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(n, time.Now()))
}

// Create handles POST /api/v1/notes.
func (h *NoteHandler) Create(c *gin.Context) {
	var n domain.Note
	if err := c.ShouldBindJSON(&n); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	created, err := h.notes.Create(c.Request.Context(), &n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(created, time.Now()))
}

// Update handles PUT /api/v1/notes/:id.
func (h *NoteHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	n, err := h.notes.Update(c.Request.Context(), id, req.Category, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(n, time.Now()))
}

// Delete handles DELETE /api/v1/notes/:id.
func (h *NoteHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.notes.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
