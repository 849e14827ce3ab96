package handlers

import (
	"net/http"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	status    *service.StatusService
	dashboard *service.DashboardService
}

func NewStatusHandler(status *service.StatusService, dashboard *service.DashboardService) *StatusHandler {
	return &StatusHandler{status: status, dashboard: dashboard}
}

func (h *StatusHandler) Catalogue(c *gin.Context) {
	c.JSON(http.StatusOK, h.status.Catalogue())
}

func parseDashboardFilter(c *gin.Context) *domain.DashboardFilter {
	year := strings.TrimSpace(c.Query("year"))
	importer := strings.TrimSpace(c.Query("importer"))
	if year == "" && importer == "" {
		return nil
	}
	return &domain.DashboardFilter{Year: year, Importer: importer}
}

func (h *StatusHandler) StatusCounts(c *gin.Context) {
	dashboard, err := h.dashboard.StatusDashboard(c.Request.Context(), parseDashboardFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *StatusHandler) Recompute(c *gin.Context) {
	result, err := h.status.RecomputeAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
