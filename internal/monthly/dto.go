package monthly

import (
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
)

// MonthTotalDTO is one supplier's 21k-equivalent total for one month, with
// the tier that total currently resolves to.
type MonthTotalDTO struct {
	SupplierID    string         `json:"supplier_id"`
	Month         types.Month    `json:"month"`
	TotalGrams21k float64        `json:"total_grams_21k"`
	Tier          enums.TierRank `json:"tier"`
	DiscountRate  float64        `json:"discount_rate"`
}

// PreviewInput describes a hypothetical receipt to price without persisting.
type PreviewInput struct {
	SupplierID string
	Month      types.Month
	Grams18k   float64
	Grams21k   float64
	BaseFees   *float64
}

// PreviewDTO is the priced outcome of a hypothetical receipt.
type PreviewDTO struct {
	SupplierID     string         `json:"supplier_id"`
	Month          types.Month    `json:"month"`
	Grams21k       float64        `json:"grams_21k_equivalent"`
	MonthlyTotal   float64        `json:"monthly_total"`
	Tier           enums.TierRank `json:"tier"`
	DiscountRate   float64        `json:"discount_rate"`
	DiscountAmount float64        `json:"discount_amount"`
	BaseFees       float64        `json:"base_fees"`
	NetFees        float64        `json:"net_fees"`
	Degraded       bool           `json:"degraded,omitempty"`
}
