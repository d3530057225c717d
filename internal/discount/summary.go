package discount

import (
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/shopspring/decimal"
)

// Totals is a re-summed rollup over a set of receipts. Stored rollups are
// always replaced with a fresh fold; deltas are never applied.
type Totals struct {
	Grams18k           float64
	Grams21k           float64
	Grams21kEquivalent float64
	BaseFees           float64
	DiscountAmount     float64
	NetFees            float64
	ReceiptCount       int
}

// SumReceipts folds receipt rows into a Totals, accumulating in decimal and
// rounding once at the end.
func SumReceipts(receipts []models.PurchaseReceipt) Totals {
	var (
		grams18k   decimal.Decimal
		grams21k   decimal.Decimal
		equivalent decimal.Decimal
		baseFees   decimal.Decimal
		discount   decimal.Decimal
		netFees    decimal.Decimal
	)
	for _, receipt := range receipts {
		grams18k = grams18k.Add(decimal.NewFromFloat(receipt.Grams18k))
		grams21k = grams21k.Add(decimal.NewFromFloat(receipt.Grams21k))
		equivalent = equivalent.Add(decimal.NewFromFloat(receipt.TotalGrams21k))
		baseFees = baseFees.Add(decimal.NewFromFloat(receipt.BaseFees))
		discount = discount.Add(decimal.NewFromFloat(receipt.DiscountAmount))
		netFees = netFees.Add(decimal.NewFromFloat(receipt.NetFees))
	}
	return Totals{
		Grams18k:           roundGrams(grams18k),
		Grams21k:           roundGrams(grams21k),
		Grams21kEquivalent: roundGrams(equivalent),
		BaseFees:           roundFees(baseFees),
		DiscountAmount:     roundFees(discount),
		NetFees:            roundFees(netFees),
		ReceiptCount:       len(receipts),
	}
}

// SumReceiptsForSupplier folds only the receipts belonging to one supplier.
func SumReceiptsForSupplier(receipts []models.PurchaseReceipt, supplierID string) Totals {
	filtered := make([]models.PurchaseReceipt, 0, len(receipts))
	for _, receipt := range receipts {
		if receipt.SupplierID == supplierID {
			filtered = append(filtered, receipt)
		}
	}
	return SumReceipts(filtered)
}
