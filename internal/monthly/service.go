package monthly

import (
	"context"
	"errors"
	"fmt"

	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"gorm.io/gorm"
)

// defaultHistoryMonths bounds the history endpoint.
const defaultHistoryMonths = 12

type monthAggregator interface {
	SupplierMonthTotal(ctx context.Context, supplierID string, month types.Month) (float64, error)
	MonthsForSupplier(ctx context.Context, supplierID string) ([]types.Month, error)
}

type tierSource interface {
	TiersBySupplier(ctx context.Context, supplierID string) ([]models.DiscountTier, error)
}

type supplierLookup interface {
	FindByID(ctx context.Context, id string) (*models.Supplier, error)
}

type discountEngine interface {
	Calculate(ctx context.Context, in discount.CalcInput) discount.CalcResult
}

// Service answers read-only monthly volume questions: where a supplier
// stands this month, how past months looked, and what a hypothetical
// receipt would cost.
type Service interface {
	MonthTotal(ctx context.Context, supplierID string, month types.Month) (*MonthTotalDTO, error)
	History(ctx context.Context, supplierID string, limit int) ([]MonthTotalDTO, error)
	Preview(ctx context.Context, input PreviewInput) (*PreviewDTO, error)
}

type service struct {
	aggregator     monthAggregator
	tiers          tierSource
	suppliers      supplierLookup
	engine         discountEngine
	baseFeePerGram float64
}

// NewService builds the monthly totals service.
func NewService(aggregator monthAggregator, tiers tierSource, suppliers supplierLookup, engine discountEngine, baseFeePerGram float64) (Service, error) {
	if aggregator == nil {
		return nil, fmt.Errorf("monthly aggregator required")
	}
	if tiers == nil {
		return nil, fmt.Errorf("tier source required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("discount engine required")
	}
	if baseFeePerGram <= 0 {
		return nil, fmt.Errorf("base fee per gram must be positive")
	}
	return &service{
		aggregator:     aggregator,
		tiers:          tiers,
		suppliers:      suppliers,
		engine:         engine,
		baseFeePerGram: baseFeePerGram,
	}, nil
}

func (s *service) MonthTotal(ctx context.Context, supplierID string, month types.Month) (*MonthTotalDTO, error) {
	if err := s.checkSupplier(ctx, supplierID); err != nil {
		return nil, err
	}
	return s.monthTotal(ctx, supplierID, month)
}

func (s *service) History(ctx context.Context, supplierID string, limit int) ([]MonthTotalDTO, error) {
	if err := s.checkSupplier(ctx, supplierID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > defaultHistoryMonths {
		limit = defaultHistoryMonths
	}

	months, err := s.aggregator.MonthsForSupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list supplier months")
	}
	if len(months) > limit {
		months = months[:limit]
	}

	history := make([]MonthTotalDTO, 0, len(months))
	for _, month := range months {
		total, err := s.monthTotal(ctx, supplierID, month)
		if err != nil {
			return nil, err
		}
		history = append(history, *total)
	}
	return history, nil
}

func (s *service) Preview(ctx context.Context, input PreviewInput) (*PreviewDTO, error) {
	if input.Grams18k < 0 || input.Grams21k < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "grams must not be negative")
	}
	if input.Grams18k == 0 && input.Grams21k == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "grams are required")
	}
	if input.BaseFees != nil && *input.BaseFees < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base fees must not be negative")
	}
	if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}

	equivalent := discount.To21kEquivalent(input.Grams18k, input.Grams21k)
	baseFees := equivalent * s.baseFeePerGram
	if input.BaseFees != nil {
		baseFees = *input.BaseFees
	}

	result := s.engine.Calculate(ctx, discount.CalcInput{
		SupplierID: input.SupplierID,
		Month:      input.Month,
		Grams18k:   input.Grams18k,
		Grams21k:   input.Grams21k,
		BaseFees:   baseFees,
	})
	return &PreviewDTO{
		SupplierID:     input.SupplierID,
		Month:          input.Month,
		Grams21k:       result.TotalGrams21k,
		MonthlyTotal:   result.MonthlyTotal,
		Tier:           result.Tier,
		DiscountRate:   result.DiscountRate,
		DiscountAmount: result.DiscountAmount,
		BaseFees:       baseFees,
		NetFees:        result.NetFees,
		Degraded:       result.Degraded,
	}, nil
}

func (s *service) monthTotal(ctx context.Context, supplierID string, month types.Month) (*MonthTotalDTO, error) {
	total, err := s.aggregator.SupplierMonthTotal(ctx, supplierID, month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum supplier month")
	}
	tiers, err := s.tiers.TiersBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tiers")
	}
	rank, rate := discount.ResolveTier(discount.BandsFromTiers(tiers), total)
	return &MonthTotalDTO{
		SupplierID:    supplierID,
		Month:         month,
		TotalGrams21k: total,
		Tier:          rank,
		DiscountRate:  rate,
	}, nil
}

func (s *service) checkSupplier(ctx context.Context, supplierID string) error {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return nil
}
