package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// importRepository tracks batch sheet imports
type importRepository struct {
	db *DB
}

func NewImportRepository(db *DB) repository.ImportRepository {
	return &importRepository{db: db}
}

// CreateRun creates a new import run record
func (r *importRepository) CreateRun(ctx context.Context, run *domain.ImportRun) error {
	query := `
		INSERT INTO import_runs (
			source, status, total_files, processed_files, total_rows, started_by, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		run.Source, string(run.Status), run.TotalFiles,
		run.ProcessedFiles, run.TotalRows, run.StartedBy, run.StartedAt,
	).Scan(&run.ID)
	if err != nil {
		return fmt.Errorf("failed to create import run: %w", err)
	}
	return nil
}

// UpdateRun writes the final state of a run. Counters are owned by RecordFileDone.
func (r *importRepository) UpdateRun(ctx context.Context, run *domain.ImportRun) error {
	query := `
		UPDATE import_runs
		SET status = $1, total_files = $2, completed_at = $3, error_message = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(
		ctx, query,
		string(run.Status), run.TotalFiles, run.CompletedAt, run.ErrorMessage, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update import run %d: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves an import run with its files
func (r *importRepository) GetRun(ctx context.Context, id int64) (*domain.ImportRun, error) {
	query := `
		SELECT id, source, status, total_files, processed_files, total_rows,
		       started_by, started_at, completed_at, error_message
		FROM import_runs
		WHERE id = $1
	`

	run := &domain.ImportRun{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Source, &run.Status, &run.TotalFiles,
		&run.ProcessedFiles, &run.TotalRows, &run.StartedBy,
		&run.StartedAt, &run.CompletedAt, &run.ErrorMessage,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import run %d: %w", id, err)
	}

	files, err := r.listFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Files = files

	return run, nil
}

func (r *importRepository) listFiles(ctx context.Context, runID int64) ([]*domain.ImportFile, error) {
	query := `
		SELECT id, run_id, file_name, status, rows, error_message, processed_at
		FROM import_files
		WHERE run_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list import files: %w", err)
	}
	defer rows.Close()

	var files []*domain.ImportFile
	for rows.Next() {
		f := &domain.ImportFile{}
		err := rows.Scan(
			&f.ID, &f.RunID, &f.FileName, &f.Status,
			&f.Rows, &f.ErrorMessage, &f.ProcessedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// ListRuns returns the most recent runs first
func (r *importRepository) ListRuns(ctx context.Context, limit int) ([]*domain.ImportRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	query := `
		SELECT id, source, status, total_files, processed_files, total_rows,
		       started_by, started_at, completed_at, error_message
		FROM import_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := []*domain.ImportRun{}
	for rows.Next() {
		run := &domain.ImportRun{}
		err := rows.Scan(
			&run.ID, &run.Source, &run.Status, &run.TotalFiles,
			&run.ProcessedFiles, &run.TotalRows, &run.StartedBy,
			&run.StartedAt, &run.CompletedAt, &run.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// CreateFile creates a new import file record
func (r *importRepository) CreateFile(ctx context.Context, f *domain.ImportFile) error {
	query := `
		INSERT INTO import_files (run_id, file_name, status, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, f.RunID, f.FileName, string(f.Status), f.ErrorMessage).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to create import file: %w", err)
	}
	return nil
}

// UpdateFile updates an existing import file
func (r *importRepository) UpdateFile(ctx context.Context, f *domain.ImportFile) error {
	query := `
		UPDATE import_files
		SET status = $1, rows = $2, error_message = $3, processed_at = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(ctx, query, string(f.Status), f.Rows, f.ErrorMessage, f.ProcessedAt, f.ID)
	if err != nil {
		return fmt.Errorf("failed to update import file %d: %w", f.ID, err)
	}
	return nil
}

// RecordFileDone atomically bumps the processed file and row counters
func (r *importRepository) RecordFileDone(ctx context.Context, runID int64, rows int) error {
	query := `
		UPDATE import_runs
		SET processed_files = processed_files + 1, total_rows = total_rows + $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, rows, runID)
	if err != nil {
		return fmt.Errorf("failed to record progress of import run %d: %w", runID, err)
	}
	return nil
}
