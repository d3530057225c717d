package monthly

import (
	"context"
	"testing"

	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"gorm.io/gorm"
)

type stubAggregator struct {
	totals map[types.Month]float64
	months []types.Month
}

func (a *stubAggregator) SupplierMonthTotal(ctx context.Context, supplierID string, month types.Month) (float64, error) {
	return a.totals[month], nil
}

func (a *stubAggregator) MonthsForSupplier(ctx context.Context, supplierID string) ([]types.Month, error) {
	return a.months, nil
}

type stubTierSource struct {
	tiers []models.DiscountTier
}

func (s *stubTierSource) TiersBySupplier(ctx context.Context, supplierID string) ([]models.DiscountTier, error) {
	return s.tiers, nil
}

type stubSupplierLookup struct {
	supplier *models.Supplier
}

func (l *stubSupplierLookup) FindByID(ctx context.Context, id string) (*models.Supplier, error) {
	if l.supplier == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return l.supplier, nil
}

type stubEngine struct {
	result discount.CalcResult
	input  discount.CalcInput
}

func (e *stubEngine) Calculate(ctx context.Context, in discount.CalcInput) discount.CalcResult {
	e.input = in
	return e.result
}

func threeTiers() []models.DiscountTier {
	return []models.DiscountTier{
		{ID: "tier-1", SupplierID: "supplier-1", KaratType: enums.Karat21, Threshold: 0, DiscountPercentage: 0.05},
		{ID: "tier-2", SupplierID: "supplier-1", KaratType: enums.Karat21, Threshold: 500, DiscountPercentage: 0.10},
		{ID: "tier-3", SupplierID: "supplier-1", KaratType: enums.Karat21, Threshold: 1000, DiscountPercentage: 0.15},
	}
}

func newTestService(t *testing.T, aggregator *stubAggregator, tiers *stubTierSource, engine *stubEngine) Service {
	t.Helper()
	svc, err := NewService(
		aggregator,
		tiers,
		&stubSupplierLookup{supplier: &models.Supplier{ID: "supplier-1", Name: "Aurum", Code: "AUR"}},
		engine,
		5,
	)
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}
	return svc
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubTierSource{}, &stubSupplierLookup{}, &stubEngine{}, 5); err == nil {
		t.Fatal("expected error without aggregator")
	}
	if _, err := NewService(&stubAggregator{}, &stubTierSource{}, &stubSupplierLookup{}, &stubEngine{}, 0); err == nil {
		t.Fatal("expected error with non-positive fee per gram")
	}
}

func TestMonthTotalResolvesTier(t *testing.T) {
	aggregator := &stubAggregator{totals: map[types.Month]float64{"2025-03": 620}}
	svc := newTestService(t, aggregator, &stubTierSource{tiers: threeTiers()}, &stubEngine{})

	total, err := svc.MonthTotal(context.Background(), "supplier-1", types.Month("2025-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.TotalGrams21k != 620 {
		t.Fatalf("expected total 620, got %v", total.TotalGrams21k)
	}
	if total.Tier != enums.TierRankMedium || total.DiscountRate != 0.10 {
		t.Fatalf("expected medium tier at 0.10, got %s at %v", total.Tier, total.DiscountRate)
	}
}

func TestMonthTotalSupplierNotFound(t *testing.T) {
	svc, err := NewService(&stubAggregator{}, &stubTierSource{}, &stubSupplierLookup{}, &stubEngine{}, 5)
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}
	_, err = svc.MonthTotal(context.Background(), "missing", types.Month("2025-03"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestHistoryReturnsMostRecentMonths(t *testing.T) {
	aggregator := &stubAggregator{
		totals: map[types.Month]float64{"2025-03": 620, "2025-02": 300, "2025-01": 90},
		months: []types.Month{"2025-03", "2025-02", "2025-01"},
	}
	svc := newTestService(t, aggregator, &stubTierSource{tiers: threeTiers()}, &stubEngine{})

	history, err := svc.History(context.Background(), "supplier-1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 months, got %d", len(history))
	}
	if history[0].Month != types.Month("2025-03") || history[1].Month != types.Month("2025-02") {
		t.Fatalf("expected newest months first, got %v", history)
	}
	if history[1].Tier != enums.TierRankLow {
		t.Fatalf("expected 300g to stay in the low tier, got %s", history[1].Tier)
	}
}

func TestPreviewValidatesAndPrices(t *testing.T) {
	engine := &stubEngine{result: discount.CalcResult{
		TotalGrams21k:  85.7,
		MonthlyTotal:   700,
		Tier:           enums.TierRankMedium,
		DiscountRate:   0.10,
		DiscountAmount: 42.85,
		NetFees:        385.65,
	}}
	svc := newTestService(t, &stubAggregator{}, &stubTierSource{}, engine)

	if _, err := svc.Preview(context.Background(), PreviewInput{SupplierID: "supplier-1", Month: "2025-03"}); err == nil {
		t.Fatal("expected validation error without grams")
	}

	preview, err := svc.Preview(context.Background(), PreviewInput{
		SupplierID: "supplier-1",
		Month:      types.Month("2025-03"),
		Grams18k:   100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Default fees are the 21k-equivalent weight at 5 per gram.
	if engine.input.BaseFees != 428.5 {
		t.Fatalf("expected default base fees 428.5, got %v", engine.input.BaseFees)
	}
	if preview.Tier != enums.TierRankMedium || preview.NetFees != 385.65 {
		t.Fatalf("unexpected preview: %+v", preview)
	}
}
