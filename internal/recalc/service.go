package recalc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/metrics"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Report summarizes one supplier+month recalculation pass.
type Report struct {
	SupplierID   string         `json:"supplierId"`
	Month        types.Month    `json:"month"`
	MonthlyTotal float64        `json:"monthlyTotal"`
	Tier         enums.TierRank `json:"tier"`
	DiscountRate float64        `json:"discountRate"`
	ReceiptCount int            `json:"receiptCount"`
	UpdatedCount int            `json:"updatedCount"`
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
}

// MonthReport aggregates the per-supplier reports of a month-wide pass.
type MonthReport struct {
	Month         types.Month `json:"month"`
	SupplierCount int         `json:"supplierCount"`
	UpdatedCount  int         `json:"updatedCount"`
	FailedCount   int         `json:"failedCount"`
	Reports       []*Report   `json:"reports"`
}

// Service is the consistency repair engine. One supplier+month is one unit of
// work: a single transaction that freezes the monthly total, reprices every
// receipt against it, and re-sums the derived rollups.
type Service interface {
	RecalculateSupplier(ctx context.Context, supplierID string, month types.Month) (*Report, error)
	RecalculateMonth(ctx context.Context, month types.Month) (*MonthReport, error)
	RecalculateForPurchase(ctx context.Context, purchaseID string) ([]*Report, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type monthAggregator interface {
	SupplierMonthTotalTx(tx *gorm.DB, supplierID string, month types.Month) (float64, error)
	SupplierIDsForMonth(ctx context.Context, month types.Month) ([]string, error)
}

type ServiceParams struct {
	DB             txRunner
	Repository     *Repository
	Aggregator     monthAggregator
	Logger         *logger.Logger
	Metrics        *metrics.RecalcMetrics
	MaxConcurrency int
}

type service struct {
	db             txRunner
	repo           *Repository
	aggregator     monthAggregator
	logg           *logger.Logger
	metrics        *metrics.RecalcMetrics
	maxConcurrency int
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if params.Aggregator == nil {
		return nil, errors.New("aggregator is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	concurrency := params.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &service{
		db:             params.DB,
		repo:           params.Repository,
		aggregator:     params.Aggregator,
		logg:           params.Logger,
		metrics:        params.Metrics,
		maxConcurrency: concurrency,
	}, nil
}

func (s *service) RecalculateSupplier(ctx context.Context, supplierID string, month types.Month) (*Report, error) {
	if supplierID == "" {
		return nil, errors.New("supplier id is required")
	}

	logCtx := s.logg.WithSupplierID(ctx, supplierID)
	logCtx = s.logg.WithMonth(logCtx, month.String())

	started := time.Now()
	report := &Report{SupplierID: supplierID, Month: month}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.recalculateSupplierTx(tx, supplierID, month, report)
	})
	s.observe(enums.RecalcScopeSupplier, started, report, err)

	if err != nil {
		s.logg.Error(logCtx, "supplier recalculation failed", err)
		report.Success = false
		report.Message = err.Error()
		return report, err
	}

	report.Success = true
	report.Message = fmt.Sprintf("recalculated %d receipts, %d updated", report.ReceiptCount, report.UpdatedCount)
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{
		"monthly_total": report.MonthlyTotal,
		"tier":          report.Tier,
		"receipts":      report.ReceiptCount,
		"updated":       report.UpdatedCount,
	}), "supplier recalculation complete")
	return report, nil
}

// recalculateSupplierTx runs the whole unit inside one transaction. The
// monthly total is computed once at the start and every receipt is priced
// against that frozen value, so a pass can never see two different totals.
func (s *service) recalculateSupplierTx(tx *gorm.DB, supplierID string, month types.Month, report *Report) error {
	frozenTotal, err := s.aggregator.SupplierMonthTotalTx(tx, supplierID, month)
	if err != nil {
		return err
	}

	tiers, err := s.repo.TiersTx(tx, supplierID)
	if err != nil {
		return err
	}
	bands := discount.BandsFromTiers(tiers)
	tier, rate := discount.ResolveTier(bands, frozenTotal)

	report.MonthlyTotal = frozenTotal
	report.Tier = tier
	report.DiscountRate = rate

	receipts, err := s.repo.ReceiptsForSupplierMonthTx(tx, supplierID, month)
	if err != nil {
		return err
	}
	report.ReceiptCount = len(receipts)

	// All purchases seen in the pass are re-summed, not only the ones whose
	// receipts changed. A deletion elsewhere can leave a purchase's derived
	// totals stale while every surviving receipt is already correct.
	seenPurchases := make(map[string]struct{})
	for _, receipt := range receipts {
		seenPurchases[receipt.PurchaseID] = struct{}{}

		equivalent := discount.To21kEquivalent(receipt.Grams18k, receipt.Grams21k)
		result := discount.Compute(bands, frozenTotal, equivalent, receipt.BaseFees)

		if receipt.TotalGrams21k == result.TotalGrams21k &&
			receipt.DiscountRate == result.DiscountRate &&
			receipt.DiscountAmount == result.DiscountAmount &&
			receipt.NetFees == result.NetFees {
			continue
		}

		if err := s.repo.UpdateReceiptTx(tx, receipt.ID, result); err != nil {
			return err
		}
		report.UpdatedCount++
	}

	purchaseIDs := make([]string, 0, len(seenPurchases))
	for id := range seenPurchases {
		purchaseIDs = append(purchaseIDs, id)
	}
	sort.Strings(purchaseIDs)

	for _, purchaseID := range purchaseIDs {
		if err := s.resumPurchaseTx(tx, purchaseID, supplierID); err != nil {
			return err
		}
	}
	return nil
}

// resumPurchaseTx replaces the derived totals on a purchase and on the
// supplier's rollup row with a full re-sum of the current receipts.
func (s *service) resumPurchaseTx(tx *gorm.DB, purchaseID, supplierID string) error {
	receipts, err := s.repo.ReceiptsForPurchaseTx(tx, purchaseID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePurchaseTotalsTx(tx, purchaseID, discount.SumReceipts(receipts)); err != nil {
		return err
	}
	supplierTotals := discount.SumReceiptsForSupplier(receipts, supplierID)
	return s.repo.UpdatePurchaseSupplierTotalsTx(tx, purchaseID, supplierID, supplierTotals)
}

func (s *service) RecalculateMonth(ctx context.Context, month types.Month) (*MonthReport, error) {
	started := time.Now()

	supplierIDs, err := s.aggregator.SupplierIDsForMonth(ctx, month)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncFailure(enums.RecalcScopeMonth.String())
		}
		return nil, err
	}

	monthReport := &MonthReport{
		Month:         month,
		SupplierCount: len(supplierIDs),
		Reports:       make([]*Report, len(supplierIDs)),
	}

	var mu sync.Mutex
	var failures error

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.maxConcurrency)
	for i, supplierID := range supplierIDs {
		i, supplierID := i, supplierID
		group.Go(func() error {
			report, err := s.RecalculateSupplier(groupCtx, supplierID, month)
			mu.Lock()
			defer mu.Unlock()
			monthReport.Reports[i] = report
			if err != nil {
				monthReport.FailedCount++
				failures = multierr.Append(failures, fmt.Errorf("supplier %s: %w", supplierID, err))
				return nil
			}
			monthReport.UpdatedCount += report.UpdatedCount
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		failures = multierr.Append(failures, err)
	}

	if s.metrics != nil {
		s.metrics.ObserveDuration(enums.RecalcScopeMonth.String(), time.Since(started))
		if failures != nil {
			s.metrics.IncFailure(enums.RecalcScopeMonth.String())
		} else {
			s.metrics.IncSuccess(enums.RecalcScopeMonth.String())
		}
	}
	return monthReport, failures
}

func (s *service) RecalculateForPurchase(ctx context.Context, purchaseID string) ([]*Report, error) {
	purchase, err := s.repo.PurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	month := types.MonthOf(purchase.Date)

	supplierIDs, err := s.repo.SupplierIDsForPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	reports := make([]*Report, 0, len(supplierIDs))
	var failures error
	for _, supplierID := range supplierIDs {
		report, err := s.RecalculateSupplier(ctx, supplierID, month)
		reports = append(reports, report)
		if err != nil {
			failures = multierr.Append(failures, fmt.Errorf("supplier %s: %w", supplierID, err))
		}
	}

	// The supplier passes only re-sum purchases that still have receipts in
	// the month. Re-sum this purchase directly so an emptied one lands on
	// zero totals instead of its last snapshot.
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, supplierID := range supplierIDs {
			if err := s.resumPurchaseTx(tx, purchaseID, supplierID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		failures = multierr.Append(failures, err)
	}
	return reports, failures
}

func (s *service) observe(scope enums.RecalcScope, started time.Time, report *Report, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(scope.String(), time.Since(started))
	if err != nil {
		s.metrics.IncFailure(scope.String())
		return
	}
	s.metrics.IncSuccess(scope.String())
	s.metrics.AddUpdated(scope.String(), report.UpdatedCount)
}
