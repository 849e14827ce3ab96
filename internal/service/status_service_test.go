package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusService_RecomputeAll(t *testing.T) {
	var jobs []*domain.Job
	for i := 0; i < 7; i++ {
		job := &domain.Job{Year: "24-25", JobNo: fmt.Sprintf("J%d", i), VesselBerthing: "2024-04-18"}
		if i%2 == 0 {
			job.ApplyDerivedStatus()
		}
		jobs = append(jobs, job)
	}
	repo := newFakeJobRepo(jobs...)
	c := newFakeCache()

	svc := NewStatusService(repo, c)
	svc.batchSize = 3
	svc.workers = 2

	result, err := svc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, result.Scanned)
	assert.Equal(t, 3, result.Changed)
	assert.Equal(t, 3, repo.statusUpdates)
	assert.Equal(t, 1, c.invalidated)

	for id := int64(1); id <= 7; id++ {
		job, _ := repo.Get(context.Background(), id)
		assert.Equal(t, string(domain.StatusEstimatedTimeOfArrival), job.DetailedStatus)
	}

	result, err = svc.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Changed)
	assert.Equal(t, 1, c.invalidated, "nothing changed, cache left alone")
}

func TestStatusService_Catalogue(t *testing.T) {
	svc := NewStatusService(newFakeJobRepo(), nil)
	catalogue := svc.Catalogue()
	require.Len(t, catalogue, 11)
	assert.Equal(t, string(domain.StatusBillingPending), catalogue[0].Status)
}

func TestDashboardService_StatusDashboard(t *testing.T) {
	repo := newFakeJobRepo()
	repo.counts = []domain.StatusCount{
		{Status: string(domain.StatusETADatePending), Count: 4},
		{Status: "Legacy Status", Count: 1},
		{Status: string(domain.StatusBillingPending), Count: 2},
	}
	repo.years = []domain.YearCount{{Year: "24-25", Pending: 7}}
	c := newFakeCache()
	svc := NewDashboardService(repo, c)

	filter := &domain.DashboardFilter{Year: "24-25"}
	dashboard, err := svc.StatusDashboard(context.Background(), filter)
	require.NoError(t, err)

	require.Len(t, dashboard.StatusCounts, 3)
	assert.Equal(t, string(domain.StatusBillingPending), dashboard.StatusCounts[0].Status)
	assert.Equal(t, 1, dashboard.StatusCounts[0].Rank)
	assert.Equal(t, "bg-blue", dashboard.StatusCounts[0].Color)
	assert.Equal(t, "Legacy Status", dashboard.StatusCounts[2].Status)
	assert.Equal(t, domain.UnknownStatusRank, dashboard.StatusCounts[2].Rank)
	assert.Equal(t, domain.DefaultStatusColor, dashboard.StatusCounts[2].Color)
	assert.Equal(t, 7, dashboard.TotalOpen)
	assert.Equal(t, repo.years, dashboard.YearCounts)

	_, err = svc.StatusDashboard(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countCalls, "second read served from cache")
}
