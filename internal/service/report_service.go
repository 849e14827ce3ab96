package service

import (
	"context"
	"fmt"
	"io"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/jobsheet"
	"github.com/andresuchdata/eximdesk/internal/repository"
)

const exportPageSize = 500

type ReportService struct {
	repo repository.JobRepository
}

func NewReportService(repo repository.JobRepository) *ReportService {
	return &ReportService{repo: repo}
}

// ParseExportFormat accepts "xlsx" (the default) or "csv".
func ParseExportFormat(value string) (jobsheet.Format, error) {
	switch value {
	case "", string(jobsheet.FormatXLSX):
		return jobsheet.FormatXLSX, nil
	case string(jobsheet.FormatCSV):
		return jobsheet.FormatCSV, nil
	default:
		return "", invalidf("unsupported export format %q", value)
	}
}

// ExportJobs writes every job matching filter to w. Paging fields of the filter
// are ignored.
func (s *ReportService) ExportJobs(ctx context.Context, filter domain.JobFilter, format jobsheet.Format, w io.Writer) (int, error) {
	jobs, err := s.collect(ctx, filter)
	if err != nil {
		return 0, err
	}

	switch format {
	case jobsheet.FormatCSV:
		err = jobsheet.WriteCSV(w, jobs)
	case jobsheet.FormatXLSX:
		err = jobsheet.WriteXLSX(w, jobs)
	default:
		return 0, invalidf("unsupported export format %q", format)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	return len(jobs), nil
}

func (s *ReportService) collect(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error) {
	filter.PageSize = exportPageSize
	var all []*domain.Job
	for page := 1; ; page++ {
		filter.Page = page
		jobs, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, jobs...)
		if len(jobs) < exportPageSize || len(all) >= total {
			return all, nil
		}
	}
}
