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
	"github.com/rs/zerolog/log"
)

const jobColumns = `id, year, job_no, importer, importer_address, custom_house, awb_bl_no, awb_bl_date,
	shipping_line, port_of_reporting, gross_weight, consignment_type, type_of_b_e, be_no, be_date,
	vessel_berthing, gateway_igm_date, discharge_date, pcv_date, out_of_charge, containers, documents,
	remarks, status, detailed_status, status_rank, row_color, bill_no, bill_date, created_at, updated_at`

const jobInsertColumns = `year, job_no, importer, importer_address, custom_house, awb_bl_no, awb_bl_date,
	shipping_line, port_of_reporting, gross_weight, consignment_type, type_of_b_e, be_no, be_date,
	vessel_berthing, gateway_igm_date, discharge_date, pcv_date, out_of_charge, containers, documents,
	remarks, status, detailed_status, status_rank, row_color, bill_no, bill_date`

// jobSheetColumns are the columns an imported sheet is allowed to overwrite.
var jobSheetColumns = []string{
	"importer", "importer_address", "custom_house", "awb_bl_no", "awb_bl_date", "shipping_line",
	"port_of_reporting", "gross_weight", "consignment_type", "type_of_b_e", "be_no", "be_date",
	"vessel_berthing", "gateway_igm_date", "discharge_date", "pcv_date", "out_of_charge",
	"containers", "detailed_status", "status_rank", "row_color",
}

type jobRepository struct {
	db *DB
}

func NewJobRepository(db *DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func jobArgs(job *domain.Job) []interface{} {
	return []interface{}{
		job.Year, job.JobNo, job.Importer, job.ImporterAddress, job.CustomHouse, job.AwbBlNo, job.AwbBlDate,
		job.ShippingLine, job.PortOfReporting, job.GrossWeight, job.ConsignmentType, job.TypeOfBE, job.BENo, job.BEDate,
		job.VesselBerthing, job.GatewayIGMDate, job.DischargeDate, job.PCVDate, job.OutOfCharge, job.Containers, job.Documents,
		job.Remarks, string(job.Status), job.DetailedStatus, job.StatusRank, job.RowColor, job.BillNo, job.BillDate,
	}
}

func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	args := jobArgs(job)
	query := fmt.Sprintf(`
		INSERT INTO jobs (%s)
		VALUES (%s)
		RETURNING id, created_at, updated_at
	`, jobInsertColumns, placeholders(1, len(args)))

	err := r.db.QueryRowxContext(ctx, query, args...).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", mapError(err))
	}
	return nil
}

func (r *jobRepository) Get(ctx context.Context, id int64) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`

	job := &domain.Job{}
	if err := sqlx.GetContext(ctx, r.db, job, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %d: %w", id, err)
	}
	return job, nil
}

func (r *jobRepository) GetByNumber(ctx context.Context, year, jobNo string) (*domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE year = $1 AND job_no = $2`

	job := &domain.Job{}
	if err := sqlx.GetContext(ctx, r.db, job, query, year, jobNo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s/%s: %w", year, jobNo, err)
	}
	return job, nil
}

// jobEditColumns are the columns Update may write. Billing and documents have
// their own writers.
var jobEditColumns = []string{
	"year", "job_no", "importer", "importer_address", "custom_house", "awb_bl_no", "awb_bl_date",
	"shipping_line", "port_of_reporting", "gross_weight", "consignment_type", "type_of_b_e", "be_no", "be_date",
	"vessel_berthing", "gateway_igm_date", "discharge_date", "pcv_date", "out_of_charge", "containers",
	"remarks", "status", "detailed_status", "status_rank", "row_color",
}

func jobEditArgs(job *domain.Job) []interface{} {
	return []interface{}{
		job.Year, job.JobNo, job.Importer, job.ImporterAddress, job.CustomHouse, job.AwbBlNo, job.AwbBlDate,
		job.ShippingLine, job.PortOfReporting, job.GrossWeight, job.ConsignmentType, job.TypeOfBE, job.BENo, job.BEDate,
		job.VesselBerthing, job.GatewayIGMDate, job.DischargeDate, job.PCVDate, job.OutOfCharge, job.Containers,
		job.Remarks, string(job.Status), job.DetailedStatus, job.StatusRank, job.RowColor,
	}
}

func (r *jobRepository) Update(ctx context.Context, job *domain.Job, expected domain.JobStatus) error {
	args := jobEditArgs(job)
	sets := make([]string, len(jobEditColumns))
	for i, col := range jobEditColumns {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args = append(args, job.ID, string(expected))

	query := fmt.Sprintf(`
		UPDATE jobs
		SET %s, updated_at = NOW()
		WHERE id = $%d AND status = $%d
		RETURNING bill_no, bill_date, documents, updated_at
	`, strings.Join(sets, ", "), len(args)-1, len(args))

	err := r.db.QueryRowxContext(ctx, query, args...).Scan(&job.BillNo, &job.BillDate, &job.Documents, &job.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update job %d: %w", job.ID, mapError(err))
	}

	var exists bool
	if err := r.db.QueryRowxContext(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, job.ID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check job %d: %w", job.ID, err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return fmt.Errorf("%w: job %d is no longer %s", repository.ErrConflict, job.ID, expected)
}

func (r *jobRepository) SaveDocument(ctx context.Context, jobID int64, doc domain.Document) (domain.Documents, domain.Documents, error) {
	var before, after domain.Documents
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `SELECT documents FROM jobs WHERE id = $1 FOR UPDATE`, jobID).Scan(&before); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrNotFound
			}
			return fmt.Errorf("failed to lock job %d: %w", jobID, err)
		}

		after = before.With(doc)
		if _, err := tx.ExecContext(ctx, `UPDATE jobs SET documents = $1, updated_at = NOW() WHERE id = $2`, after, jobID); err != nil {
			return fmt.Errorf("failed to save documents of job %d: %w", jobID, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Upsert only touches sheet-owned columns of an existing row, and only while
// that row is still pending. A closed job yields ErrConflict.
func (r *jobRepository) Upsert(ctx context.Context, job *domain.Job) (bool, error) {
	args := jobArgs(job)
	sets := make([]string, len(jobSheetColumns))
	for i, col := range jobSheetColumns {
		sets[i] = fmt.Sprintf("%[1]s = EXCLUDED.%[1]s", col)
	}

	query := fmt.Sprintf(`
		INSERT INTO jobs (%s)
		VALUES (%s)
		ON CONFLICT (year, job_no) DO UPDATE
		SET %s, updated_at = NOW()
		WHERE jobs.status = 'Pending'
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`, jobInsertColumns, placeholders(1, len(args)), strings.Join(sets, ", "))

	var inserted bool
	err := r.db.QueryRowxContext(ctx, query, args...).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt, &inserted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: job %s/%s is closed", repository.ErrConflict, job.Year, job.JobNo)
		}
		return false, fmt.Errorf("failed to upsert job %s/%s: %w", job.Year, job.JobNo, mapError(err))
	}
	return inserted, nil
}

func (r *jobRepository) List(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, int, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize, defaultJobPageSize, maxJobPageSize)

	where, args := buildJobFilterClause(filter, "", 1)

	var total int
	countQuery := `SELECT COUNT(*) FROM jobs` + where
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs%s%s LIMIT $%d OFFSET $%d`,
		jobColumns, where, buildJobOrderClause(filter, ""), len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, filter.Offset())

	jobs := []*domain.Job{}
	if err := sqlx.SelectContext(ctx, r.db, &jobs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	log.Debug().Int("total", total).Int("page", filter.Page).Int("rows", len(jobs)).Msg("jobs listed")
	return jobs, total, nil
}

func (r *jobRepository) ListYears(ctx context.Context) ([]string, error) {
	years := []string{}
	query := `SELECT DISTINCT year FROM jobs ORDER BY year DESC`
	if err := sqlx.SelectContext(ctx, r.db, &years, query); err != nil {
		return nil, fmt.Errorf("failed to list years: %w", err)
	}
	return years, nil
}

func (r *jobRepository) CountByDetailedStatus(ctx context.Context, filter *domain.DashboardFilter) ([]domain.StatusCount, error) {
	extra, args := buildDashboardFilterClause(filter, "", 2)
	query := fmt.Sprintf(`
		SELECT detailed_status, COUNT(*) AS count
		FROM jobs
		WHERE status = $1%s
		GROUP BY detailed_status
	`, extra)
	args = append([]interface{}{string(domain.JobStatusPending)}, args...)

	counts := []domain.StatusCount{}
	if err := sqlx.SelectContext(ctx, r.db, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count jobs by status: %w", err)
	}
	return counts, nil
}

func (r *jobRepository) CountByYear(ctx context.Context, filter *domain.DashboardFilter) ([]domain.YearCount, error) {
	extra, args := buildDashboardFilterClause(filter, "", 1)
	query := fmt.Sprintf(`
		SELECT year,
		       COUNT(*) FILTER (WHERE status = 'Pending') AS pending,
		       COUNT(*) FILTER (WHERE status = 'Completed') AS completed,
		       COUNT(*) FILTER (WHERE status = 'Cancelled') AS cancelled
		FROM jobs
		WHERE TRUE%s
		GROUP BY year
		ORDER BY year DESC
	`, extra)

	counts := []domain.YearCount{}
	if err := sqlx.SelectContext(ctx, r.db, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count jobs by year: %w", err)
	}
	return counts, nil
}

func (r *jobRepository) ListAfter(ctx context.Context, afterID int64, limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = defaultJobPageSize
	}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id > $1 ORDER BY id LIMIT $2`

	jobs := []*domain.Job{}
	if err := sqlx.SelectContext(ctx, r.db, &jobs, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("failed to list jobs after %d: %w", afterID, err)
	}
	return jobs, nil
}

func (r *jobRepository) UpdateStatusFields(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET detailed_status = $1, status_rank = $2, row_color = $3, updated_at = NOW()
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, job.DetailedStatus, job.StatusRank, job.RowColor, job.ID)
	if err != nil {
		return fmt.Errorf("failed to update status of job %d: %w", job.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *jobRepository) Bill(ctx context.Context, job *domain.Job, invoice *domain.Invoice) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO invoices (job_id, bill_no, bill_date, amount, currency)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, job.ID, invoice.BillNo, invoice.BillDate, invoice.Amount, invoice.Currency).Scan(&invoice.ID, &invoice.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", mapError(err))
		}

		err = tx.QueryRowxContext(ctx, `
			UPDATE jobs
			SET bill_no = $1, bill_date = $2, status = $3, updated_at = NOW()
			WHERE id = $4 AND status = $5 AND detailed_status = $6
			RETURNING updated_at
		`, invoice.BillNo, invoice.BillDate, string(domain.JobStatusCompleted), job.ID,
			string(domain.JobStatusPending), string(domain.StatusBillingPending)).Scan(&job.UpdatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: job %d is not billable", repository.ErrConflict, job.ID)
			}
			return fmt.Errorf("failed to mark job billed: %w", err)
		}

		invoice.JobID = job.ID
		job.BillNo = invoice.BillNo
		job.BillDate = invoice.BillDate
		job.Status = domain.JobStatusCompleted
		return nil
	})
}

func (r *jobRepository) ListInvoices(ctx context.Context, jobID int64) ([]*domain.Invoice, error) {
	query := `
		SELECT id, job_id, bill_no, bill_date, amount, currency, created_at
		FROM invoices
		WHERE job_id = $1
		ORDER BY created_at DESC
	`
	invoices := []*domain.Invoice{}
	if err := sqlx.SelectContext(ctx, r.db, &invoices, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list invoices for job %d: %w", jobID, err)
	}
	return invoices, nil
}
