package discount

import (
	"context"
	"fmt"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"github.com/shopspring/decimal"
)

// TierSource loads a supplier's discount bands.
type TierSource interface {
	TiersBySupplier(ctx context.Context, supplierID string) ([]models.DiscountTier, error)
}

// MonthTotals loads a supplier's stored 21k-equivalent total for a month.
type MonthTotals interface {
	SupplierMonthTotal(ctx context.Context, supplierID string, month types.Month) (float64, error)
}

// CalcInput describes one incoming receipt before its discount is known.
type CalcInput struct {
	SupplierID string
	Month      types.Month
	Grams18k   float64
	Grams21k   float64
	BaseFees   float64
}

// CalcResult is a fully priced receipt. When Degraded is set the tier lookup
// failed and the result carries a zero discount; Err holds the cause.
type CalcResult struct {
	TotalGrams21k  float64
	MonthlyTotal   float64
	Tier           enums.TierRank
	DiscountRate   float64
	DiscountAmount float64
	NetFees        float64
	Degraded       bool
	Err            error
}

// Compute prices a receipt against a frozen monthly total. It is pure: the
// caller supplies the bands and the total, so every receipt in one
// recalculation pass sees the same snapshot.
func Compute(bands []TierBand, monthlyTotal, grams21kEquivalent, baseFees float64) CalcResult {
	rank, rate := ResolveTier(bands, monthlyTotal)
	fees := decimal.NewFromFloat(baseFees)
	discountAmount := roundFees(fees.Mul(decimal.NewFromFloat(rate)))
	netFees := roundFees(fees.Sub(decimal.NewFromFloat(discountAmount)))
	return CalcResult{
		TotalGrams21k:  roundGrams(decimal.NewFromFloat(grams21kEquivalent)),
		MonthlyTotal:   monthlyTotal,
		Tier:           rank,
		DiscountRate:   rate,
		DiscountAmount: discountAmount,
		NetFees:        netFees,
	}
}

// Engine prices receipts at creation time. It is the degraded path: a failed
// lookup yields a zero-discount snapshot instead of an error, so a receipt is
// never rejected over discount state. The recalculation service repairs the
// snapshot afterwards.
type Engine struct {
	tiers  TierSource
	totals MonthTotals
	log    *logger.Logger
}

func NewEngine(tiers TierSource, totals MonthTotals, log *logger.Logger) (*Engine, error) {
	if tiers == nil {
		return nil, fmt.Errorf("discount engine requires a tier source")
	}
	if totals == nil {
		return nil, fmt.Errorf("discount engine requires a month totals source")
	}
	if log == nil {
		return nil, fmt.Errorf("discount engine requires a logger")
	}
	return &Engine{tiers: tiers, totals: totals, log: log}, nil
}

// Calculate prices one receipt. The tier is resolved against the month total
// including the candidate receipt itself.
func (e *Engine) Calculate(ctx context.Context, in CalcInput) CalcResult {
	equivalent := To21kEquivalent(in.Grams18k, in.Grams21k)

	stored, err := e.totals.SupplierMonthTotal(ctx, in.SupplierID, in.Month)
	if err != nil {
		return e.degrade(ctx, equivalent, in.BaseFees, err)
	}
	monthlyTotal := roundGrams(decimal.NewFromFloat(stored).Add(decimal.NewFromFloat(equivalent)))

	tiers, err := e.tiers.TiersBySupplier(ctx, in.SupplierID)
	if err != nil {
		return e.degrade(ctx, equivalent, in.BaseFees, err)
	}

	return Compute(BandsFromTiers(tiers), monthlyTotal, equivalent, in.BaseFees)
}

func (e *Engine) degrade(ctx context.Context, equivalent, baseFees float64, cause error) CalcResult {
	e.log.Error(ctx, "discount lookup failed, storing zero-discount snapshot", cause)
	return CalcResult{
		TotalGrams21k: equivalent,
		Tier:          enums.TierRankLow,
		NetFees:       roundFees(decimal.NewFromFloat(baseFees)),
		Degraded:      true,
		Err:           cause,
	}
}
