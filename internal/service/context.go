package service

import (
	"context"

	"github.com/andresuchdata/eximdesk/internal/domain"
)

type actorKey struct{}

type auditKey struct{}

// WithActor stores the acting username on ctx.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// Actor returns the acting username, or "system" outside a request.
func Actor(ctx context.Context) string {
	if name, ok := ctx.Value(actorKey{}).(string); ok && name != "" {
		return name
	}
	return "system"
}

// WithAuditEntry attaches the audit entry of the current request to ctx so that
// services can describe what they changed.
func WithAuditEntry(ctx context.Context, entry *domain.AuditLog) context.Context {
	return context.WithValue(ctx, auditKey{}, entry)
}

// AuditEntry returns the request's audit entry, if any.
func AuditEntry(ctx context.Context) (*domain.AuditLog, bool) {
	entry, ok := ctx.Value(auditKey{}).(*domain.AuditLog)
	return entry, ok && entry != nil
}

func annotate(ctx context.Context, action, entity, entityID string, changes domain.FieldChanges) {
	entry, ok := AuditEntry(ctx)
	if !ok {
		return
	}
	entry.Action = action
	entry.Entity = entity
	entry.EntityID = entityID
	entry.Changes = changes
}
