package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/jmoiron/sqlx"
)

type auditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Insert(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (request_id, username, action, entity, entity_id, method, path, status_code, changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		entry.RequestID, entry.Username, entry.Action, entry.Entity, entry.EntityID,
		entry.Method, entry.Path, entry.StatusCode, entry.Changes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func buildAuditFilterClause(filter domain.AuditFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	add := func(expr string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}

	if filter.Entity != "" {
		add("entity = $%d", filter.Entity)
	}
	if filter.EntityID != "" {
		add("entity_id = $%d", filter.EntityID)
	}
	if filter.Username != "" {
		add("username = $%d", filter.Username)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *auditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, int, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize, defaultListPageSize, maxListPageSize)
	where, args := buildAuditFilterClause(filter)

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM audit_logs`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, request_id, username, action, entity, entity_id, method, path, status_code, changes, created_at
		FROM audit_logs%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, filter.Offset())

	logs := []*domain.AuditLog{}
	if err := sqlx.SelectContext(ctx, r.db, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}
