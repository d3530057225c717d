package discount

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
)

type stubTierSource struct {
	tiers []models.DiscountTier
	err   error
}

func (s *stubTierSource) TiersBySupplier(ctx context.Context, supplierID string) ([]models.DiscountTier, error) {
	return s.tiers, s.err
}

type stubMonthTotals struct {
	total float64
	err   error
}

func (s *stubMonthTotals) SupplierMonthTotal(ctx context.Context, supplierID string, month types.Month) (float64, error) {
	return s.total, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func threeTiers() []models.DiscountTier {
	return []models.DiscountTier{
		{ID: "dt-3", SupplierID: "sup-1", KaratType: enums.Karat21, Name: "Gold", Threshold: 1000, DiscountPercentage: 0.15},
		{ID: "dt-1", SupplierID: "sup-1", KaratType: enums.Karat21, Name: "Basic", Threshold: 0, DiscountPercentage: 0.05},
		{ID: "dt-2", SupplierID: "sup-1", KaratType: enums.Karat21, Name: "Silver", Threshold: 500, DiscountPercentage: 0.10},
	}
}

func TestTo21kEquivalent(t *testing.T) {
	if got := To21kEquivalent(100, 0); got != 85.7 {
		t.Fatalf("expected 85.7, got %v", got)
	}
	if got := To21kEquivalent(0, 120.5); got != 120.5 {
		t.Fatalf("expected 120.5, got %v", got)
	}
	if got := To21kEquivalent(100, 50); got != 135.7 {
		t.Fatalf("expected 135.7, got %v", got)
	}
	if got := To21kEquivalent(0, 0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestResolveTierByOrdinal(t *testing.T) {
	bands := BandsFromTiers(threeTiers())
	if len(bands) != 3 {
		t.Fatalf("expected 3 bands, got %d", len(bands))
	}
	if bands[0].Rank != enums.TierRankLow || bands[1].Rank != enums.TierRankMedium || bands[2].Rank != enums.TierRankHigh {
		t.Fatalf("unexpected rank order: %v %v %v", bands[0].Rank, bands[1].Rank, bands[2].Rank)
	}

	cases := []struct {
		monthlyTotal float64
		wantRank     enums.TierRank
		wantRate     float64
	}{
		{50, enums.TierRankLow, 0.05},
		{600, enums.TierRankMedium, 0.10},
		{1000, enums.TierRankHigh, 0.15},
		{1200, enums.TierRankHigh, 0.15},
		{500, enums.TierRankMedium, 0.10},
	}
	for _, tc := range cases {
		rank, rate := ResolveTier(bands, tc.monthlyTotal)
		if rank != tc.wantRank || rate != tc.wantRate {
			t.Fatalf("total %v: expected %v/%v, got %v/%v", tc.monthlyTotal, tc.wantRank, tc.wantRate, rank, rate)
		}
	}
}

func TestResolveTierNoBands(t *testing.T) {
	rank, rate := ResolveTier(nil, 900)
	if rank != enums.TierRankLow {
		t.Fatalf("expected low rank, got %v", rank)
	}
	if rate != 0 {
		t.Fatalf("expected zero rate, got %v", rate)
	}
}

func TestResolveTierBeyondThirdOrdinal(t *testing.T) {
	tiers := append(threeTiers(), models.DiscountTier{
		ID: "dt-4", SupplierID: "sup-1", KaratType: enums.Karat21,
		Name: "Platinum", Threshold: 2000, DiscountPercentage: 0.20,
	})
	bands := BandsFromTiers(tiers)
	if bands[3].Rank != enums.TierRank("tier-4") {
		t.Fatalf("expected tier-4, got %v", bands[3].Rank)
	}
	rank, rate := ResolveTier(bands, 2500)
	if rank != enums.TierRank("tier-4") || rate != 0.20 {
		t.Fatalf("expected tier-4/0.20, got %v/%v", rank, rate)
	}
}

func TestComputeFeeProportionalDiscount(t *testing.T) {
	result := Compute(BandsFromTiers(threeTiers()), 600, 200, 1000)
	if result.Tier != enums.TierRankMedium {
		t.Fatalf("expected medium tier, got %v", result.Tier)
	}
	if result.DiscountAmount != 100 {
		t.Fatalf("expected discount 100, got %v", result.DiscountAmount)
	}
	if result.NetFees != 900 {
		t.Fatalf("expected net fees 900, got %v", result.NetFees)
	}
	if result.Degraded {
		t.Fatal("expected non-degraded result")
	}
}

func TestComputeZeroRate(t *testing.T) {
	result := Compute(nil, 600, 200, 1000)
	if result.DiscountAmount != 0 {
		t.Fatalf("expected zero discount, got %v", result.DiscountAmount)
	}
	if result.NetFees != 1000 {
		t.Fatalf("expected net fees 1000, got %v", result.NetFees)
	}
}

func TestEngineCalculateIncludesCandidateInMonthTotal(t *testing.T) {
	engine, err := NewEngine(
		&stubTierSource{tiers: threeTiers()},
		&stubMonthTotals{total: 450},
		testLogger(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 450 stored + 100 candidate crosses the 500 threshold.
	result := engine.Calculate(context.Background(), CalcInput{
		SupplierID: "sup-1",
		Month:      "2025-03",
		Grams21k:   100,
		BaseFees:   500,
	})
	if result.Tier != enums.TierRankMedium {
		t.Fatalf("expected medium tier, got %v", result.Tier)
	}
	if result.MonthlyTotal != 550 {
		t.Fatalf("expected monthly total 550, got %v", result.MonthlyTotal)
	}
	if result.DiscountAmount != 50 {
		t.Fatalf("expected discount 50, got %v", result.DiscountAmount)
	}
	if result.NetFees != 450 {
		t.Fatalf("expected net fees 450, got %v", result.NetFees)
	}
}

func TestEngineCalculateDegradesOnTierFailure(t *testing.T) {
	cause := errors.New("tier store down")
	engine, err := NewEngine(
		&stubTierSource{err: cause},
		&stubMonthTotals{total: 450},
		testLogger(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := engine.Calculate(context.Background(), CalcInput{
		SupplierID: "sup-1",
		Month:      "2025-03",
		Grams18k:   100,
		BaseFees:   428.5,
	})
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if !errors.Is(result.Err, cause) {
		t.Fatalf("expected cause to be carried, got %v", result.Err)
	}
	if result.DiscountAmount != 0 {
		t.Fatalf("expected zero discount, got %v", result.DiscountAmount)
	}
	if result.NetFees != 428.5 {
		t.Fatalf("expected net fees 428.5, got %v", result.NetFees)
	}
	if result.TotalGrams21k != 85.7 {
		t.Fatalf("expected 85.7 equivalent grams, got %v", result.TotalGrams21k)
	}
}

func TestEngineCalculateDegradesOnTotalFailure(t *testing.T) {
	engine, err := NewEngine(
		&stubTierSource{tiers: threeTiers()},
		&stubMonthTotals{err: errors.New("sum failed")},
		testLogger(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := engine.Calculate(context.Background(), CalcInput{
		SupplierID: "sup-1",
		Month:      "2025-03",
		Grams21k:   100,
		BaseFees:   500,
	})
	if !result.Degraded {
		t.Fatal("expected degraded result")
	}
	if result.NetFees != 500 {
		t.Fatalf("expected net fees 500, got %v", result.NetFees)
	}
}

func TestNewEngineRequiresDependencies(t *testing.T) {
	if _, err := NewEngine(nil, &stubMonthTotals{}, testLogger()); err == nil {
		t.Fatal("expected error for nil tier source")
	}
	if _, err := NewEngine(&stubTierSource{}, nil, testLogger()); err == nil {
		t.Fatal("expected error for nil month totals")
	}
	if _, err := NewEngine(&stubTierSource{}, &stubMonthTotals{}, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}

func TestSumReceipts(t *testing.T) {
	receipts := []models.PurchaseReceipt{
		{SupplierID: "sup-1", Grams18k: 100, TotalGrams21k: 85.7, BaseFees: 428.5, DiscountAmount: 42.85, NetFees: 385.65},
		{SupplierID: "sup-2", Grams21k: 50, TotalGrams21k: 50, BaseFees: 250, DiscountAmount: 0, NetFees: 250},
	}

	totals := SumReceipts(receipts)
	if totals.Grams21kEquivalent != 135.7 {
		t.Fatalf("expected 135.7 grams, got %v", totals.Grams21kEquivalent)
	}
	if totals.BaseFees != 678.5 {
		t.Fatalf("expected base fees 678.5, got %v", totals.BaseFees)
	}
	if totals.DiscountAmount != 42.85 {
		t.Fatalf("expected discount 42.85, got %v", totals.DiscountAmount)
	}
	if totals.NetFees != 635.65 {
		t.Fatalf("expected net fees 635.65, got %v", totals.NetFees)
	}
	if totals.ReceiptCount != 2 {
		t.Fatalf("expected 2 receipts, got %d", totals.ReceiptCount)
	}

	supplierTotals := SumReceiptsForSupplier(receipts, "sup-2")
	if supplierTotals.ReceiptCount != 1 || supplierTotals.Grams21k != 50 {
		t.Fatalf("unexpected supplier totals: %+v", supplierTotals)
	}
}
