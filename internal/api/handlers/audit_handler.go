package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(service *service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// parseTime accepts RFC3339 timestamps or plain dates.
func parseTime(value string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (h *AuditHandler) List(c *gin.Context) {
	from, ok := parseTime(c.Query("from"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid from date")
		return
	}
	to, ok := parseTime(c.Query("to"))
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid to date")
		return
	}

	filter := domain.AuditFilter{
		Entity:   strings.TrimSpace(c.Query("entity")),
		EntityID: strings.TrimSpace(c.Query("entity_id")),
		Username: strings.TrimSpace(c.Query("username")),
		From:     from,
		To:       to,
		Page:     parsePositiveIntWithDefault(c.Query("page"), 1),
		PageSize: parsePositiveIntWithDefault(c.Query("page_size"), 50),
	}

	logs, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Items: logs, Total: total})
}
