package repository

import (
	"context"
	"errors"

	"github.com/andresuchdata/eximdesk/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
)

type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id int64) (*domain.Job, error)
	GetByNumber(ctx context.Context, year, jobNo string) (*domain.Job, error)
	// Update writes the editable fields and the lifecycle status of a job whose
	// stored status is still expected. Billing and document columns are left
	// alone. A status mismatch yields ErrConflict.
	Update(ctx context.Context, job *domain.Job, expected domain.JobStatus) error
	// SaveDocument attaches doc to the job under a row lock, replacing a
	// document of the same name, and returns the list before and after.
	SaveDocument(ctx context.Context, jobID int64, doc domain.Document) (before, after domain.Documents, err error)
	// Upsert inserts or replaces the job identified by (year, job_no) and
	// reports whether a new row was created.
	Upsert(ctx context.Context, job *domain.Job) (bool, error)
	List(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, int, error)
	ListYears(ctx context.Context) ([]string, error)
	CountByDetailedStatus(ctx context.Context, filter *domain.DashboardFilter) ([]domain.StatusCount, error)
	CountByYear(ctx context.Context, filter *domain.DashboardFilter) ([]domain.YearCount, error)
	// ListAfter returns up to limit jobs with id greater than afterID, ordered by id.
	ListAfter(ctx context.Context, afterID int64, limit int) ([]*domain.Job, error)
	UpdateStatusFields(ctx context.Context, job *domain.Job) error
	// Bill inserts the invoice and marks the job billed in one transaction.
	Bill(ctx context.Context, job *domain.Job, invoice *domain.Invoice) error
	ListInvoices(ctx context.Context, jobID int64) ([]*domain.Invoice, error)
}

type DirectoryRepository interface {
	Create(ctx context.Context, entry *domain.DirectoryEntry) error
	// EnsureName inserts a bare entry of the given kind unless the name exists.
	EnsureName(ctx context.Context, kind domain.DirectoryKind, name string) (int64, error)
	Get(ctx context.Context, kind domain.DirectoryKind, id int64) (*domain.DirectoryEntry, error)
	Update(ctx context.Context, entry *domain.DirectoryEntry) error
	Delete(ctx context.Context, kind domain.DirectoryKind, id int64) error
	List(ctx context.Context, kind domain.DirectoryKind, filter domain.ListFilter) ([]*domain.DirectoryEntry, int, error)
}

type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	Get(ctx context.Context, id int64) (*domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, int, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, int, error)
}

type ImportRepository interface {
	CreateRun(ctx context.Context, run *domain.ImportRun) error
	UpdateRun(ctx context.Context, run *domain.ImportRun) error
	GetRun(ctx context.Context, id int64) (*domain.ImportRun, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.ImportRun, error)
	CreateFile(ctx context.Context, file *domain.ImportFile) error
	UpdateFile(ctx context.Context, file *domain.ImportFile) error
	// RecordFileDone adds a finished file's rows to the run counters.
	RecordFileDone(ctx context.Context, runID int64, rows int) error
}
