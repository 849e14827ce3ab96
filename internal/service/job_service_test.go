package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/importer"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobService(jobs ...*domain.Job) (*JobService, *fakeJobRepo, *fakeDirectoryRepo, *fakeCache) {
	repo := newFakeJobRepo(jobs...)
	dir := newFakeDirectoryRepo()
	c := newFakeCache()
	return NewJobService(repo, dir, c), repo, dir, c
}

func auditCtx() (context.Context, *domain.AuditLog) {
	entry := &domain.AuditLog{}
	return WithAuditEntry(WithActor(context.Background(), "ops"), entry), entry
}

func TestJobService_CreateDerivesStatus(t *testing.T) {
	svc, repo, dir, c := newJobService()
	ctx, entry := auditCtx()

	job, err := svc.Create(ctx, &domain.Job{
		Year:           " 24-25 ",
		JobNo:          "IMP-101",
		Importer:       "Acme Traders",
		ShippingLine:   "Maersk",
		VesselBerthing: "18/04/2024",
		DetailedStatus: "Billing Pending",
		Status:         domain.JobStatusCompleted,
		BillNo:         "B-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "24-25", job.Year)
	assert.Equal(t, domain.JobStatusPending, job.Status)
	assert.Empty(t, job.BillNo)
	assert.Equal(t, "2024-04-18", job.VesselBerthing)
	assert.Equal(t, string(domain.StatusEstimatedTimeOfArrival), job.DetailedStatus)
	assert.Equal(t, 10, job.StatusRank)
	assert.Equal(t, "bg-white", job.RowColor)

	stored, err := repo.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.DetailedStatus, stored.DetailedStatus)

	assert.ElementsMatch(t, []string{"importer:Acme Traders", "shipping_line:Maersk"}, dir.ensured)
	assert.Equal(t, 1, c.invalidated)
	assert.Equal(t, domain.AuditCreate, entry.Action)
	assert.Equal(t, "job", entry.Entity)
	assert.NotEmpty(t, entry.Changes)
}

func TestJobService_CreateValidation(t *testing.T) {
	svc, _, _, _ := newJobService()

	_, err := svc.Create(context.Background(), &domain.Job{Year: "24-25"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), &domain.Job{Year: "24-25", JobNo: "J1",
		Containers: domain.Containers{{Number: "CSQU3054384"}}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJobService_CreateDuplicate(t *testing.T) {
	svc, _, _, _ := newJobService(&domain.Job{Year: "24-25", JobNo: "J1"})

	_, err := svc.Create(context.Background(), &domain.Job{Year: "24-25", JobNo: "J1"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestJobService_UpdateRecomputesAndDiffs(t *testing.T) {
	svc, _, _, _ := newJobService(&domain.Job{Year: "24-25", JobNo: "J1", VesselBerthing: "2024-04-18",
		DetailedStatus: string(domain.StatusEstimatedTimeOfArrival), StatusRank: 10, RowColor: "bg-white"})
	ctx, entry := auditCtx()

	updated, err := svc.Update(ctx, 1, &domain.Job{VesselBerthing: "2024-04-18", DischargeDate: "2024-04-20"})
	require.NoError(t, err)
	assert.Equal(t, "24-25", updated.Year)
	assert.Equal(t, "J1", updated.JobNo)
	assert.Equal(t, string(domain.StatusDischarged), updated.DetailedStatus)

	fields := map[string]bool{}
	for _, ch := range entry.Changes {
		fields[ch.Field] = true
	}
	assert.True(t, fields["discharge_date"])
	assert.True(t, fields["detailed_status"])
	assert.False(t, fields["vessel_berthing"])
}

func TestJobService_UpdateClosedJobOnlyRemarks(t *testing.T) {
	closed := &domain.Job{Year: "24-25", JobNo: "J1", Status: domain.JobStatusCompleted, BillNo: "B-1",
		OutOfCharge: "2024-05-02", BENo: "1", Containers: domain.Containers{}}
	svc, repo, _, _ := newJobService(closed)

	_, err := svc.Update(context.Background(), 1, &domain.Job{OutOfCharge: "2024-05-03", BENo: "1"})
	assert.ErrorIs(t, err, ErrInvalidState)

	updated, err := svc.Update(context.Background(), 1, &domain.Job{OutOfCharge: "2024-05-02", BENo: "1", Remarks: "paid late"})
	require.NoError(t, err)
	assert.Equal(t, "paid late", updated.Remarks)
	assert.Equal(t, domain.JobStatusCompleted, updated.Status)

	stored, _ := repo.Get(context.Background(), 1)
	assert.Equal(t, "B-1", stored.BillNo)
}

func TestJobService_Cancel(t *testing.T) {
	svc, _, _, c := newJobService(&domain.Job{Year: "24-25", JobNo: "J1"})

	job, err := svc.Cancel(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCancelled, job.Status)
	assert.Equal(t, 1, c.invalidated)

	_, err = svc.Cancel(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Cancel(context.Background(), 42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestJobService_ImportJobCreatesAndMerges(t *testing.T) {
	svc, repo, _, _ := newJobService()
	ctx := context.Background()

	outcome, err := svc.ImportJob(ctx, &domain.Job{Year: "24-25", JobNo: "J1", Importer: "Acme",
		Containers: domain.Containers{{Number: "CSQU3054383", ArrivalDate: "2024-04-25"}}}, "sheet.csv")
	require.NoError(t, err)
	assert.Equal(t, importer.OutcomeCreated, outcome)

	outcome, err = svc.ImportJob(ctx, &domain.Job{Year: "24-25", JobNo: "J1", BENo: "7654321",
		Containers: domain.Containers{
			{Number: "CSQU3054383", DeliveryDate: "2024-05-04"},
			{Number: "MSKU1234565"},
		}}, "sheet.csv")
	require.NoError(t, err)
	assert.Equal(t, importer.OutcomeUpdated, outcome)

	job, err := repo.GetByNumber(ctx, "24-25", "J1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", job.Importer, "blank cells keep stored values")
	assert.Equal(t, "7654321", job.BENo)
	require.Len(t, job.Containers, 2)
	assert.Equal(t, "2024-04-25", job.Containers[0].ArrivalDate)
	assert.Equal(t, "2024-05-04", job.Containers[0].DeliveryDate)
	assert.Equal(t, string(domain.StatusBENotedClearancePending), job.DetailedStatus)
}

func TestJobService_ImportJobSkipsClosed(t *testing.T) {
	svc, repo, _, _ := newJobService(&domain.Job{Year: "24-25", JobNo: "J1", Status: domain.JobStatusCancelled})

	outcome, err := svc.ImportJob(context.Background(), &domain.Job{Year: "24-25", JobNo: "J1", BENo: "1"}, "sheet.csv")
	require.NoError(t, err)
	assert.Equal(t, importer.OutcomeSkipped, outcome)

	job, _ := repo.Get(context.Background(), 1)
	assert.Empty(t, job.BENo)
}

func TestJobService_ImportJobRequiresIdentity(t *testing.T) {
	svc, _, _, _ := newJobService()

	outcome, err := svc.ImportJob(context.Background(), &domain.Job{Year: "24-25"}, "sheet.csv")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, importer.OutcomeSkipped, outcome)
}

func TestJobService_List(t *testing.T) {
	svc, _, _, _ := newJobService(&domain.Job{Year: "24-25", JobNo: "J1"}, &domain.Job{Year: "23-24", JobNo: "J2"})

	page, err := svc.List(context.Background(), domain.JobFilter{Year: "24-25", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "J1", page.Items[0].JobNo)
}

func TestJobService_ImportJobSameJobFromTwoSheets(t *testing.T) {
	svc, repo, _, _ := newJobService()
	repo.afterGetByNumber = func(string, string) { time.Sleep(20 * time.Millisecond) }

	sheets := map[string]string{"north.csv": "CSQU3054383", "south.xlsx": "MSKU1234565"}
	outcomes := make(chan importer.Outcome, len(sheets))
	var wg sync.WaitGroup
	for sheet, container := range sheets {
		wg.Add(1)
		go func(sheet, container string) {
			defer wg.Done()
			outcome, err := svc.ImportJob(context.Background(), &domain.Job{Year: "24-25", JobNo: "j1",
				Containers: domain.Containers{{Number: container}}}, sheet)
			assert.NoError(t, err)
			outcomes <- outcome
		}(sheet, container)
	}
	wg.Wait()
	close(outcomes)

	var got []importer.Outcome
	for o := range outcomes {
		got = append(got, o)
	}
	assert.ElementsMatch(t, []importer.Outcome{importer.OutcomeCreated, importer.OutcomeUpdated}, got)

	job, err := repo.GetByNumber(context.Background(), "24-25", "J1")
	require.NoError(t, err)
	assert.Len(t, job.Containers, 2)
	assert.Zero(t, svc.imports.size())
}

func TestKeyLocks(t *testing.T) {
	var locks keyLocks

	unlockA := locks.Lock("24-25|J1")
	unlockB := locks.Lock("24-25|J2")
	assert.Equal(t, 2, locks.size())

	acquired := make(chan struct{})
	go func() {
		unlock := locks.Lock("24-25|J1")
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("same key acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	unlockA()
	<-acquired
	unlockB()
	assert.Eventually(t, func() bool { return locks.size() == 0 }, time.Second, 5*time.Millisecond)
}
