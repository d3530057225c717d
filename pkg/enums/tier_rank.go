package enums

import "fmt"

// TierRank names a discount tier by its ascending-threshold position.
// The first three ordinals carry the historical low/medium/high names;
// ranks beyond the third are reported as "tier-N".
type TierRank string

const (
	TierRankLow    TierRank = "low"
	TierRankMedium TierRank = "medium"
	TierRankHigh   TierRank = "high"
)

// String implements fmt.Stringer.
func (t TierRank) String() string {
	return string(t)
}

// RankForOrdinal maps a zero-based ascending-threshold position to its name.
func RankForOrdinal(ordinal int) TierRank {
	switch ordinal {
	case 0:
		return TierRankLow
	case 1:
		return TierRankMedium
	case 2:
		return TierRankHigh
	default:
		return TierRank(fmt.Sprintf("tier-%d", ordinal+1))
	}
}
