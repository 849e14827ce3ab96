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

const employeeColumns = `id, employee_code, name, email, phone, designation, department, joining_date, status, created_at, updated_at`

type employeeRepository struct {
	db *DB
}

func NewEmployeeRepository(db *DB) repository.EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	query := `
		INSERT INTO employees (employee_code, name, email, phone, designation, department, joining_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		e.EmployeeCode, e.Name, e.Email, e.Phone, e.Designation, e.Department, e.JoiningDate, string(e.Status),
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", mapError(err))
	}
	return nil
}

func (r *employeeRepository) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	e := &domain.Employee{}
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.db, e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get employee %d: %w", id, err)
	}
	return e, nil
}

func (r *employeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	query := `
		UPDATE employees
		SET employee_code = $1, name = $2, email = $3, phone = $4, designation = $5,
		    department = $6, joining_date = $7, status = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		e.EmployeeCode, e.Name, e.Email, e.Phone, e.Designation, e.Department, e.JoiningDate, string(e.Status), e.ID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to update employee %d: %w", e.ID, mapError(err))
	}
	return nil
}

func (r *employeeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *employeeRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, int, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize, defaultListPageSize, maxListPageSize)

	where := ""
	var args []interface{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		where = " WHERE name ILIKE $1 OR employee_code ILIKE $1 OR department ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM employees`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM employees%s ORDER BY name LIMIT $%d OFFSET $%d`,
		employeeColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.PageSize, filter.Offset())

	employees := []*domain.Employee{}
	if err := sqlx.SelectContext(ctx, r.db, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, total, nil
}
