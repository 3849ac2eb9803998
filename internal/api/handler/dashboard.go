package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/service"
)

// DashboardHandler serves the recruiter overview.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Get handles GET /api/v1/dashboard.
func (h *DashboardHandler) Get(c *gin.Context) {
	d, err := h.dashboard.Build(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
