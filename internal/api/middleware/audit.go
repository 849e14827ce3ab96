package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *domain.AuditLog) error
}

// Audit writes one audit entry for every non-GET request once the handler has
// finished. Services fill in the entity and field changes through the request
// context; anything they leave blank is derived from the route.
func Audit(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead || c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		entry := &domain.AuditLog{
			RequestID: GetRequestID(c),
			Username:  Username(c),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
		}
		c.Request = c.Request.WithContext(service.WithAuditEntry(c.Request.Context(), entry))

		c.Next()

		entry.StatusCode = c.Writer.Status()
		if entry.Action == "" {
			entry.Action = actionForMethod(c.Request.Method)
		}
		if entry.Entity == "" {
			entry.Entity = entityForRoute(c.FullPath())
		}
		if entry.EntityID == "" {
			entry.EntityID = c.Param("id")
		}
		if entry.Changes == nil {
			entry.Changes = domain.FieldChanges{}
		}

		ctx := context.WithoutCancel(c.Request.Context())
		if err := recorder.Record(ctx, entry); err != nil {
			log.Error().Err(err).Str("request_id", entry.RequestID).Str("path", entry.Path).Msg("failed to record audit entry")
		}
	}
}

func actionForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return domain.AuditCreate
	case http.MethodDelete:
		return domain.AuditDelete
	default:
		return domain.AuditUpdate
	}
}

// entityForRoute picks the first static segment after the API prefix, e.g.
// "/api/v1/jobs/:id/bill" yields "jobs".
func entityForRoute(route string) string {
	for _, seg := range strings.Split(strings.Trim(route, "/"), "/") {
		if seg == "" || seg == "api" || strings.HasPrefix(seg, ":") || (len(seg) > 1 && seg[0] == 'v' && seg[1] >= '0' && seg[1] <= '9') {
			continue
		}
		return seg
	}
	return route
}
