package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/jmoiron/sqlx"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

type directoryRepository struct {
	db *DB
}

func NewDirectoryRepository(db *DB) repository.DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) Create(ctx context.Context, entry *domain.DirectoryEntry) error {
	query := `
		INSERT INTO directory_entries (kind, name, code, address, gstin, email, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		string(entry.Kind), entry.Name, entry.Code, entry.Address, entry.GSTIN, entry.Email, entry.Phone,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s entry: %w", entry.Kind, mapError(err))
	}
	return nil
}

func (r *directoryRepository) EnsureName(ctx context.Context, kind domain.DirectoryKind, name string) (int64, error) {
	query := `
		INSERT INTO directory_entries (kind, name)
		VALUES ($1, $2)
		ON CONFLICT (kind, name)
		DO UPDATE SET updated_at = directory_entries.updated_at
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, string(kind), name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to upsert %s %q: %w", kind, name, err)
	}
	return id, nil
}

func (r *directoryRepository) Get(ctx context.Context, kind domain.DirectoryKind, id int64) (*domain.DirectoryEntry, error) {
	query := `
		SELECT id, kind, name, code, address, gstin, email, phone, created_at, updated_at
		FROM directory_entries
		WHERE kind = $1 AND id = $2
	`
	entry := &domain.DirectoryEntry{}
	if err := sqlx.GetContext(ctx, r.db, entry, query, string(kind), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s entry %d: %w", kind, id, err)
	}
	return entry, nil
}

func (r *directoryRepository) Update(ctx context.Context, entry *domain.DirectoryEntry) error {
	query := `
		UPDATE directory_entries
		SET name = $1, code = $2, address = $3, gstin = $4, email = $5, phone = $6, updated_at = NOW()
		WHERE kind = $7 AND id = $8
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		entry.Name, entry.Code, entry.Address, entry.GSTIN, entry.Email, entry.Phone, string(entry.Kind), entry.ID,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update %s entry %d: %w", entry.Kind, entry.ID, mapError(err))
	}
	return nil
}

func (r *directoryRepository) Delete(ctx context.Context, kind domain.DirectoryKind, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM directory_entries WHERE kind = $1 AND id = $2`, string(kind), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s entry %d: %w", kind, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *directoryRepository) List(ctx context.Context, kind domain.DirectoryKind, filter domain.ListFilter) ([]*domain.DirectoryEntry, int, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize, defaultListPageSize, maxListPageSize)

	where := " WHERE kind = $1"
	args := []interface{}{string(kind)}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where += " AND (name ILIKE $2 OR code ILIKE $2 OR gstin ILIKE $2)"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM directory_entries`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s entries: %w", kind, err)
	}

	query := fmt.Sprintf(`
		SELECT id, kind, name, code, address, gstin, email, phone, created_at, updated_at
		FROM directory_entries%s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, filter.Offset())

	entries := []*domain.DirectoryEntry{}
	if err := sqlx.SelectContext(ctx, r.db, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list %s entries: %w", kind, err)
	}
	return entries, total, nil
}
