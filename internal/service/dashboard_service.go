package service

import (
	"context"
	"sort"

	"github.com/andresuchdata/eximdesk/internal/cache"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/rs/zerolog/log"
)

type DashboardService struct {
	repo  repository.JobRepository
	cache cache.DashboardCache
}

func NewDashboardService(repo repository.JobRepository, cacheImpl cache.DashboardCache) *DashboardService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &DashboardService{repo: repo, cache: cacheImpl}
}

// StatusDashboard returns the open job counts per detailed status, ordered by
// rank, plus per-year totals.
func (s *DashboardService) StatusDashboard(ctx context.Context, filter *domain.DashboardFilter) (*domain.Dashboard, error) {
	if dashboard, ok, err := s.cache.Get(ctx, filter); err == nil && ok {
		return dashboard, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("dashboard: cache get failed")
	}

	counts, err := s.repo.CountByDetailedStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	years, err := s.repo.CountByYear(ctx, filter)
	if err != nil {
		return nil, err
	}

	dashboard := &domain.Dashboard{
		StatusCounts: make([]domain.StatusCount, 0, len(counts)),
		YearCounts:   years,
	}
	if dashboard.YearCounts == nil {
		dashboard.YearCounts = make([]domain.YearCount, 0)
	}
	for _, c := range counts {
		c.Rank = domain.StatusRank(c.Status)
		c.Color = domain.StatusColor(c.Status)
		dashboard.StatusCounts = append(dashboard.StatusCounts, c)
		dashboard.TotalOpen += c.Count
	}
	sort.SliceStable(dashboard.StatusCounts, func(i, j int) bool {
		a, b := dashboard.StatusCounts[i], dashboard.StatusCounts[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Status < b.Status
	})

	if err := s.cache.Set(ctx, filter, dashboard); err != nil {
		log.Warn().Err(err).Msg("dashboard: cache set failed")
	}
	return dashboard, nil
}
