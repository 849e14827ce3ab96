package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/eximdesk/internal/cache"
	"github.com/andresuchdata/eximdesk/internal/domain"
	"github.com/andresuchdata/eximdesk/internal/repository"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const defaultCurrency = "INR"

// BillRequest is the input for billing a cleared job.
type BillRequest struct {
	BillNo   string          `json:"bill_no" binding:"required,max=50"`
	BillDate string          `json:"bill_date"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"omitempty,len=3"`
}

type BillingService struct {
	repo  repository.JobRepository
	cache cache.DashboardCache
	now   func() time.Time
}

func NewBillingService(repo repository.JobRepository, cacheImpl cache.DashboardCache) *BillingService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDashboardCache()
	}
	return &BillingService{repo: repo, cache: cacheImpl, now: time.Now}
}

// Bill raises an invoice for a job waiting on billing and completes the job.
func (s *BillingService) Bill(ctx context.Context, jobID int64, req BillRequest) (*domain.Job, *domain.Invoice, error) {
	req.BillNo = strings.TrimSpace(req.BillNo)
	if err := validate(&req); err != nil {
		return nil, nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, nil, invalidf("amount must be greater than zero")
	}

	billDate := s.now().Format("2006-01-02")
	if req.BillDate != "" {
		if !domain.IsValidDate(req.BillDate) {
			return nil, nil, invalidf("bill_date %q is not a valid date", req.BillDate)
		}
		billDate = domain.NormalizeDate(req.BillDate)
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	job, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	if !job.IsBillable() {
		return nil, nil, fmt.Errorf("%w: job %s is %s / %s, billing needs %s", ErrInvalidState,
			job.JobNo, job.Status, job.DetailedStatus, domain.StatusBillingPending)
	}

	before := *job
	invoice := &domain.Invoice{
		BillNo:   req.BillNo,
		BillDate: billDate,
		Amount:   req.Amount.Round(2),
		Currency: currency,
	}
	if err := s.repo.Bill(ctx, job, invoice); err != nil {
		return nil, nil, err
	}

	changes, err := domain.DiffFields(&before, job)
	if err != nil {
		log.Warn().Err(err).Int64("job_id", job.ID).Msg("billing: failed to diff job")
	}
	annotate(ctx, domain.AuditUpdate, jobEntity, strconv.FormatInt(job.ID, 10), changes)
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("billing: cache invalidate failed")
	}

	log.Info().Int64("job_id", job.ID).Str("bill_no", invoice.BillNo).Str("amount", invoice.Amount.StringFixed(2)).Msg("job billed")
	return job, invoice, nil
}

func (s *BillingService) ListInvoices(ctx context.Context, jobID int64) ([]*domain.Invoice, error) {
	if _, err := s.repo.Get(ctx, jobID); err != nil {
		return nil, err
	}
	return s.repo.ListInvoices(ctx, jobID)
}
