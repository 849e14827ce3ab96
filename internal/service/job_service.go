package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/andresuchdata/eximdesk/internal/cache"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/rs/zerolog/log"
)

const jobEntity = "job"

type JobService struct {
	repo      repository.JobRepository
	directory repository.DirectoryRepository
	cache     cache.DashboardCache
	// imports serialises sheet merges of the same year and job number.
	imports keyLocks
}

func NewJobService(repo repository.JobRepository, directory repository.DirectoryRepository, cacheImpl cache.DashboardCache) *JobService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &JobService{repo: repo, directory: directory, cache: cacheImpl}
}

func (s *JobService) Get(ctx context.Context, id int64) (*domain.Job, error) {
	return s.repo.Get(ctx, id)
}

func (s *JobService) List(ctx context.Context, filter domain.JobFilter) (*domain.JobPage, error) {
	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = make([]*domain.Job, 0)
	}
	return &domain.JobPage{Items: jobs, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *JobService) Years(ctx context.Context) ([]string, error) {
	years, err := s.repo.ListYears(ctx)
	if err != nil {
		return nil, err
	}
	if years == nil {
		years = make([]string, 0)
	}
	return years, nil
}

// Create stores a new pending job with its derived status fields.
func (s *JobService) Create(ctx context.Context, input *domain.Job) (*domain.Job, error) {
	job := &domain.Job{}
	applyEditable(job, input)
	job.Year = input.Year
	job.JobNo = input.JobNo
	job.Status = domain.JobStatusPending
	job.Normalize()

	if err := validate(job); err != nil {
		return nil, err
	}
	job.ApplyDerivedStatus()

	if err := s.repo.Create(ctx, job); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("job %s already exists for year %s: %w", job.JobNo, job.Year, repository.ErrConflict)
		}
		return nil, err
	}

	s.registerNames(ctx, job)
	s.recordChange(ctx, domain.AuditCreate, nil, job)
	s.invalidate(ctx)
	return job, nil
}

// Update applies client edits to a job. Closed jobs only accept remark changes.
func (s *JobService) Update(ctx context.Context, id int64, input *domain.Job) (*domain.Job, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	applyEditable(&updated, input)
	if input.Year != "" {
		updated.Year = input.Year
	}
	if input.JobNo != "" {
		updated.JobNo = input.JobNo
	}
	updated.Normalize()

	if !existing.IsOpen() {
		base := *existing
		if len(base.Containers) == 0 {
			base.Containers = nil
		}
		changes, err := domain.DiffFields(&base, &updated)
		if err != nil {
			return nil, err
		}
		for _, ch := range changes {
			if ch.Field != "remarks" {
				return nil, fmt.Errorf("%w: job is %s, only remarks can change", ErrInvalidState, existing.Status)
			}
		}
		updated = *existing
		updated.Remarks = input.Remarks
	}

	if err := validate(&updated); err != nil {
		return nil, err
	}
	updated.ApplyDerivedStatus()

	if err := s.repo.Update(ctx, &updated, existing.Status); err != nil {
		return nil, err
	}

	s.registerNames(ctx, &updated)
	s.recordChange(ctx, domain.AuditUpdate, existing, &updated)
	s.invalidate(ctx)
	return &updated, nil
}

// Cancel closes an open job without billing it.
func (s *JobService) Cancel(ctx context.Context, id int64) (*domain.Job, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.IsOpen() {
		return nil, fmt.Errorf("%w: job is already %s", ErrInvalidState, existing.Status)
	}

	updated := *existing
	updated.Status = domain.JobStatusCancelled
	if err := s.repo.Update(ctx, &updated, existing.Status); err != nil {
		return nil, err
	}

	s.recordChange(ctx, domain.AuditUpdate, existing, &updated)
	s.invalidate(ctx)
	return &updated, nil
}

// registerNames adds the party names a job refers to into the directory.
func (s *JobService) registerNames(ctx context.Context, job *domain.Job) {
	if s.directory == nil {
		return
	}
	names := []struct {
		kind domain.DirectoryKind
		name string
	}{
		{domain.DirectoryImporter, job.Importer},
		{domain.DirectoryShippingLine, job.ShippingLine},
		{domain.DirectoryCustomHouse, job.CustomHouse},
	}
	for _, n := range names {
		if n.name == "" {
			continue
		}
		if _, err := s.directory.EnsureName(ctx, n.kind, n.name); err != nil {
			log.Warn().Err(err).Str("kind", string(n.kind)).Str("name", n.name).Msg("jobs: failed to register directory name")
		}
	}
}

func (s *JobService) recordChange(ctx context.Context, action string, before, after *domain.Job) {
	var prev interface{}
	if before != nil {
		prev = before
	}
	changes, err := domain.DiffFields(prev, after)
	if err != nil {
		log.Warn().Err(err).Int64("job_id", after.ID).Msg("jobs: failed to diff job")
	}
	annotate(ctx, action, jobEntity, strconv.FormatInt(after.ID, 10), changes)
}

func (s *JobService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("jobs: cache invalidate failed")
	}
}

// applyEditable copies the client-editable fields of src onto dst. Identity,
// lifecycle, billing, documents and derived status fields are left alone.
func applyEditable(dst, src *domain.Job) {
	dst.Importer = src.Importer
	dst.ImporterAddress = src.ImporterAddress
	dst.CustomHouse = src.CustomHouse
	dst.AwbBlNo = src.AwbBlNo
	dst.AwbBlDate = src.AwbBlDate
	dst.ShippingLine = src.ShippingLine
	dst.PortOfReporting = src.PortOfReporting
	dst.GrossWeight = src.GrossWeight
	dst.ConsignmentType = src.ConsignmentType
	dst.TypeOfBE = src.TypeOfBE
	dst.BENo = src.BENo
	dst.BEDate = src.BEDate
	dst.VesselBerthing = src.VesselBerthing
	dst.GatewayIGMDate = src.GatewayIGMDate
	dst.DischargeDate = src.DischargeDate
	dst.PCVDate = src.PCVDate
	dst.OutOfCharge = src.OutOfCharge
	dst.Containers = nil
	if len(src.Containers) > 0 {
		dst.Containers = append(domain.Containers(nil), src.Containers...)
	}
	dst.Remarks = src.Remarks
}
