package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
)

type DirectoryService struct {
	repo repository.DirectoryRepository
}

func NewDirectoryService(repo repository.DirectoryRepository) *DirectoryService {
	return &DirectoryService{repo: repo}
}

func (s *DirectoryService) List(ctx context.Context, kind domain.DirectoryKind, filter domain.ListFilter) ([]*domain.DirectoryEntry, int, error) {
	entries, total, err := s.repo.List(ctx, kind, filter)
	if err != nil {
		return nil, 0, err
	}
	if entries == nil {
		entries = make([]*domain.DirectoryEntry, 0)
	}
	return entries, total, nil
}

func (s *DirectoryService) Get(ctx context.Context, kind domain.DirectoryKind, id int64) (*domain.DirectoryEntry, error) {
	return s.repo.Get(ctx, kind, id)
}

func (s *DirectoryService) Create(ctx context.Context, kind domain.DirectoryKind, entry *domain.DirectoryEntry) (*domain.DirectoryEntry, error) {
	entry.Kind = kind
	normalizeEntry(entry)
	if err := validate(entry); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	changes, _ := domain.DiffFields(nil, entry)
	annotate(ctx, domain.AuditCreate, string(kind), strconv.FormatInt(entry.ID, 10), changes)
	return entry, nil
}

func (s *DirectoryService) Update(ctx context.Context, kind domain.DirectoryKind, id int64, entry *domain.DirectoryEntry) (*domain.DirectoryEntry, error) {
	existing, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	entry.ID = id
	entry.Kind = kind
	entry.CreatedAt = existing.CreatedAt
	normalizeEntry(entry)
	if err := validate(entry); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	changes, _ := domain.DiffFields(existing, entry)
	annotate(ctx, domain.AuditUpdate, string(kind), strconv.FormatInt(id, 10), changes)
	return entry, nil
}

func (s *DirectoryService) Delete(ctx context.Context, kind domain.DirectoryKind, id int64) error {
	existing, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}

	changes, _ := domain.DiffFields(existing, nil)
	annotate(ctx, domain.AuditDelete, string(kind), strconv.FormatInt(id, 10), changes)
	return nil
}

func normalizeEntry(entry *domain.DirectoryEntry) {
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Code = strings.TrimSpace(entry.Code)
	entry.GSTIN = strings.ToUpper(strings.TrimSpace(entry.GSTIN))
	entry.Email = strings.TrimSpace(entry.Email)
}
