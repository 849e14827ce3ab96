package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/importer"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/rs/zerolog/log"
)

// ImportJob merges one job parsed from a sheet into the stored job of the same
// year and number. Blank sheet cells keep the stored values. Jobs that are
// already completed or cancelled are skipped. sheet names the file the job was
// read from.
func (s *JobService) ImportJob(ctx context.Context, job *domain.Job, sheet string) (importer.Outcome, error) {
	job.Normalize()
	if job.Year == "" || job.JobNo == "" {
		return importer.OutcomeSkipped, invalidf("year and job number are required")
	}

	unlock := s.imports.Lock(job.Year + "|" + strings.ToUpper(job.JobNo))
	defer unlock()

	existing, err := s.repo.GetByNumber(ctx, job.Year, job.JobNo)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		existing = nil
	case err != nil:
		return importer.OutcomeSkipped, err
	}

	merged := job
	if existing != nil {
		if !existing.IsOpen() {
			log.Debug().Str("job_no", job.JobNo).Str("year", job.Year).Str("sheet", sheet).Msg("import: skipping closed job")
			return importer.OutcomeSkipped, nil
		}
		merged = mergeSheetJob(existing, job)
	}
	merged.Status = domain.JobStatusPending

	if err := validate(merged); err != nil {
		return importer.OutcomeSkipped, err
	}
	merged.ApplyDerivedStatus()

	created, err := s.repo.Upsert(ctx, merged)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return importer.OutcomeSkipped, nil
		}
		return importer.OutcomeSkipped, fmt.Errorf("failed to upsert job %s/%s: %w", job.Year, job.JobNo, err)
	}

	s.registerNames(ctx, merged)
	s.invalidate(ctx)

	if created {
		return importer.OutcomeCreated, nil
	}
	return importer.OutcomeUpdated, nil
}

// mergeSheetJob overlays the non-blank sheet values of incoming onto a copy of existing.
func mergeSheetJob(existing, incoming *domain.Job) *domain.Job {
	merged := *existing
	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}

	overlay(&merged.Importer, incoming.Importer)
	overlay(&merged.ImporterAddress, incoming.ImporterAddress)
	overlay(&merged.CustomHouse, incoming.CustomHouse)
	overlay(&merged.AwbBlNo, incoming.AwbBlNo)
	overlay(&merged.AwbBlDate, incoming.AwbBlDate)
	overlay(&merged.ShippingLine, incoming.ShippingLine)
	overlay(&merged.PortOfReporting, incoming.PortOfReporting)
	overlay(&merged.GrossWeight, incoming.GrossWeight)
	overlay(&merged.ConsignmentType, incoming.ConsignmentType)
	overlay(&merged.TypeOfBE, incoming.TypeOfBE)
	overlay(&merged.BENo, incoming.BENo)
	overlay(&merged.BEDate, incoming.BEDate)
	overlay(&merged.VesselBerthing, incoming.VesselBerthing)
	overlay(&merged.GatewayIGMDate, incoming.GatewayIGMDate)
	overlay(&merged.DischargeDate, incoming.DischargeDate)
	overlay(&merged.PCVDate, incoming.PCVDate)
	overlay(&merged.OutOfCharge, incoming.OutOfCharge)

	merged.Containers = append(domain.Containers(nil), existing.Containers...)
	for _, c := range incoming.Containers {
		idx := -1
		for i := range merged.Containers {
			if merged.Containers[i].Number == c.Number {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged.Containers = append(merged.Containers, c)
			continue
		}
		dst := &merged.Containers[idx]
		overlay(&dst.Size, c.Size)
		overlay(&dst.ArrivalDate, c.ArrivalDate)
		overlay(&dst.RailOutDate, c.RailOutDate)
		overlay(&dst.EmptyOffloadDate, c.EmptyOffloadDate)
		overlay(&dst.DeliveryDate, c.DeliveryDate)
	}
	return &merged
}
