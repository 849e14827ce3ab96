package service

import (
	"context"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
)

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Record(ctx context.Context, entry *domain.AuditLog) error {
	return s.repo.Insert(ctx, entry)
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, int, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if logs == nil {
		logs = make([]*domain.AuditLog, 0)
	}
	return logs, total, nil
}
