package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
)

const employeeEntity = "employee"

type EmployeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

func (s *EmployeeService) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Employee, int, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if employees == nil {
		employees = make([]*domain.Employee, 0)
	}
	return employees, total, nil
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	return s.repo.Get(ctx, id)
}

func (s *EmployeeService) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	if err := prepareEmployee(e); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	changes, _ := domain.DiffFields(nil, e)
	annotate(ctx, domain.AuditCreate, employeeEntity, strconv.FormatInt(e.ID, 10), changes)
	return e, nil
}

func (s *EmployeeService) Update(ctx context.Context, id int64, e *domain.Employee) (*domain.Employee, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	e.ID = id
	e.CreatedAt = existing.CreatedAt
	if err := prepareEmployee(e); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	changes, _ := domain.DiffFields(existing, e)
	annotate(ctx, domain.AuditUpdate, employeeEntity, strconv.FormatInt(id, 10), changes)
	return e, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	changes, _ := domain.DiffFields(existing, nil)
	annotate(ctx, domain.AuditDelete, employeeEntity, strconv.FormatInt(id, 10), changes)
	return nil
}

func prepareEmployee(e *domain.Employee) error {
	e.EmployeeCode = strings.ToUpper(strings.TrimSpace(e.EmployeeCode))
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	if e.Status == "" {
		e.Status = domain.EmployeeActive
	}
	if e.JoiningDate != "" {
		if !domain.IsValidDate(e.JoiningDate) {
			return invalidf("joining_date %q is not a valid date", e.JoiningDate)
		}
		e.JoiningDate = domain.NormalizeDate(e.JoiningDate)
	}
	return validate(e)
}
