package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
	"github.com/timmy/hirelane/internal/service"
)

// AdminHandler triggers and reports mirror runs from the hosted record API.
type AdminHandler struct {
	syncService *service.SyncService
	source      service.ApplicationSource

	// Sync job state
	mu            sync.RWMutex
	isRunning     bool
	currentStats  *service.SyncStats
	lastRunTime   time.Time
	lastRunStatus string
}

// NewAdminHandler creates a new admin handler. source may be nil when no
// remote store is configured; sync requests then fail with 503.
func NewAdminHandler(syncService *service.SyncService, source service.ApplicationSource) *AdminHandler {
	return &AdminHandler{syncService: syncService, source: source}
}

// SyncRequest is the body of POST /admin/sync.
type SyncRequest struct {
	Limit  int  `json:"limit" binding:"min=0,max=100000"`
	DryRun bool `json:"dry_run"`
}

// SyncResponse is returned when a run finishes.
type SyncResponse struct {
	Message string             `json:"message"`
	Stats   *service.SyncStats `json:"stats,omitempty"`
}

// SyncStatusResponse reports the state of the last run.
type SyncStatusResponse struct {
	IsRunning     bool               `json:"is_running"`
	LastRunTime   string             `json:"last_run_time,omitempty"`
	LastRunStatus string             `json:"last_run_status,omitempty"`
	CurrentStats  *service.SyncStats `json:"current_stats,omitempty"`
}

// TriggerSync handles POST /api/v1/admin/sync. Only one run may be active.
func (h *AdminHandler) TriggerSync(c *gin.Context) {
	ctx := c.Request.Context()
	if h.source == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "record API is not configured", Code: domain.CodeUnavailable})
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	h.mu.Lock()
	if h.isRunning {
		h.mu.Unlock()
		logger.CtxWarn(ctx, "Sync request rejected: already running, client_ip=%s", c.ClientIP())
		c.JSON(http.StatusConflict, ErrorResponse{Error: "sync is already running", Code: domain.CodeDuplicate})
		return
	}
	h.isRunning = true
	h.currentStats = nil
	h.mu.Unlock()

	// The run outlives a client disconnect but keeps the request logger.
	runCtx := context.WithoutCancel(ctx)
	stats, err := h.syncService.Run(runCtx, h.source, req.Limit, &service.SyncOptions{DryRun: req.DryRun})

	h.mu.Lock()
	h.isRunning = false
	h.currentStats = stats
	h.lastRunTime = time.Now()
	if err != nil {
		h.lastRunStatus = "failed: " + err.Error()
	} else {
		h.lastRunStatus = "success"
	}
	h.mu.Unlock()

	if err != nil {
		logger.CtxError(ctx, "Sync failed: source=%s, error=%v", h.source.SourceID(), err)
		c.JSON(http.StatusBadGateway, SyncResponse{Message: "sync failed: " + err.Error(), Stats: stats})
		return
	}
	c.JSON(http.StatusOK, SyncResponse{Message: "sync completed", Stats: stats})
}

// GetSyncStatus handles GET /api/v1/admin/sync/status.
func (h *AdminHandler) GetSyncStatus(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	resp := SyncStatusResponse{
		IsRunning:     h.isRunning,
		LastRunStatus: h.lastRunStatus,
		CurrentStats:  h.currentStats,
	}
	if !h.lastRunTime.IsZero() {
		resp.LastRunTime = h.lastRunTime.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}
