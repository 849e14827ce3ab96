package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/andresuchdata/eximdesk/internal/cache"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRecomputeBatch   = 500
	defaultRecomputeWorkers = 8
)

// RecomputeResult reports a status recompute pass.
type RecomputeResult struct {
	Scanned    int   `json:"scanned"`
	Changed    int   `json:"changed"`
	DurationMS int64 `json:"duration_ms"`
}

// StatusService keeps the stored detailed status of every job in line with
// its dates, e.g. after the decision rules change.
type StatusService struct {
	repo      repository.JobRepository
	cache     cache.DashboardCache
	batchSize int
	workers   int
}

func NewStatusService(repo repository.JobRepository, cacheImpl cache.DashboardCache) *StatusService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &StatusService{
		repo:      repo,
		cache:     cacheImpl,
		batchSize: defaultRecomputeBatch,
		workers:   defaultRecomputeWorkers,
	}
}

// Catalogue lists every detailed status with its rank and color.
func (s *StatusService) Catalogue() []domain.StatusInfo {
	return domain.StatusCatalogue()
}

// RecomputeAll walks all jobs in id order and rewrites the ones whose derived
// status fields changed.
func (s *StatusService) RecomputeAll(ctx context.Context) (*RecomputeResult, error) {
	started := time.Now()
	var scanned, changed int64
	var afterID int64

	for {
		jobs, err := s.repo.ListAfter(ctx, afterID, s.batchSize)
		if err != nil {
			return nil, err
		}
		if len(jobs) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for _, job := range jobs {
			g.Go(func() error {
				atomic.AddInt64(&scanned, 1)
				if !job.ApplyDerivedStatus() {
					return nil
				}
				if err := s.repo.UpdateStatusFields(gctx, job); err != nil {
					return err
				}
				atomic.AddInt64(&changed, 1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		afterID = jobs[len(jobs)-1].ID
		if len(jobs) < s.batchSize {
			break
		}
	}

	if changed > 0 {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("status: cache invalidate failed")
		}
	}

	result := &RecomputeResult{
		Scanned:    int(scanned),
		Changed:    int(changed),
		DurationMS: time.Since(started).Milliseconds(),
	}
	log.Info().Int("scanned", result.Scanned).Int("changed", result.Changed).Dur("duration", time.Since(started)).Msg("detailed status recomputed")
	return result, nil
}
