package discount

import "github.com/shopspring/decimal"

// Business constants carried over from the legacy tracker.
const (
	// KaratConversionRate converts 18k weight into its 21k equivalent (18/21).
	KaratConversionRate = 0.857
	// GramsPrecision is the stored decimal precision for weights.
	GramsPrecision = 1
	// FeesPrecision is the stored decimal precision for monetary amounts.
	FeesPrecision = 2
	// RatePrecision is the stored decimal precision for discount fractions.
	RatePrecision = 4
)

var conversionRate = decimal.NewFromFloat(KaratConversionRate)

// To21kEquivalent converts a mixed 18k/21k delivery into 21k-equivalent grams,
// rounded to the stored weight precision so repeated recalculation cannot
// drift the value. Negative inputs are a caller contract violation and are
// rejected upstream.
func To21kEquivalent(grams18k, grams21k float64) float64 {
	equivalent := decimal.NewFromFloat(grams18k).
		Mul(conversionRate).
		Add(decimal.NewFromFloat(grams21k))
	return roundGrams(equivalent)
}

func roundGrams(d decimal.Decimal) float64 {
	f, _ := d.Round(GramsPrecision).Float64()
	return f
}

func roundFees(d decimal.Decimal) float64 {
	f, _ := d.Round(FeesPrecision).Float64()
	return f
}
