package service

import (
	"context"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
)

// ImportStarter launches an import run over sheets saved on disk.
type ImportStarter interface {
	Start(ctx context.Context, source, startedBy string, files []domain.UploadedFile) (*domain.ImportRun, error)
}

type ImportService struct {
	repo    repository.ImportRepository
	starter ImportStarter
}

func NewImportService(repo repository.ImportRepository, starter ImportStarter) *ImportService {
	return &ImportService{repo: repo, starter: starter}
}

// Start queues the files for import and returns the pending run.
func (s *ImportService) Start(ctx context.Context, source string, files []domain.UploadedFile) (*domain.ImportRun, error) {
	if len(files) == 0 {
		return nil, invalidf("no files uploaded")
	}
	return s.starter.Start(ctx, source, Actor(ctx), files)
}

func (s *ImportService) ListRuns(ctx context.Context, limit int) ([]*domain.ImportRun, error) {
	runs, err := s.repo.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = make([]*domain.ImportRun, 0)
	}
	return runs, nil
}

func (s *ImportService) GetRun(ctx context.Context, id int64) (*domain.ImportRun, error) {
	return s.repo.GetRun(ctx, id)
}
