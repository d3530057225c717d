package discount

import (
	"sort"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
)

// TierBand is one resolved discount band: its ordinal rank name, the monthly
// 21k-equivalent threshold that activates it, and the fee fraction it grants.
type TierBand struct {
	Rank      enums.TierRank
	Threshold float64
	Rate      float64
}

// BandsFromTiers orders a supplier's 21k tiers by ascending threshold and
// assigns ordinal rank names. The ordinal position, not the literal threshold,
// is what the resolver keys on. Tiers for other karat types exist in data but
// never participate in pricing.
func BandsFromTiers(tiers []models.DiscountTier) []TierBand {
	sorted := make([]models.DiscountTier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.KaratType == enums.Karat21 {
			sorted = append(sorted, tier)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold < sorted[j].Threshold
	})

	bands := make([]TierBand, 0, len(sorted))
	for i, tier := range sorted {
		bands = append(bands, TierBand{
			Rank:      enums.RankForOrdinal(i),
			Threshold: tier.Threshold,
			Rate:      tier.DiscountPercentage,
		})
	}
	return bands
}

// ResolveTier picks the applicable band for a monthly total: the highest band
// whose threshold the total meets, falling back to the lowest band when none
// qualify. A supplier with no bands gets the conventional zero-rate low rank.
func ResolveTier(bands []TierBand, monthlyTotal float64) (enums.TierRank, float64) {
	if len(bands) == 0 {
		return enums.TierRankLow, 0
	}
	for i := len(bands) - 1; i > 0; i-- {
		if monthlyTotal >= bands[i].Threshold {
			return bands[i].Rank, bands[i].Rate
		}
	}
	return bands[0].Rank, bands[0].Rate
}
