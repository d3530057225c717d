package discount

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"gorm.io/gorm"
)

// MonthlyAggregator sums stored 21k-equivalent grams per supplier and month.
// A month is keyed by the business date on the purchase, not by row creation
// time.
type MonthlyAggregator struct {
	db *gorm.DB
}

func NewMonthlyAggregator(db *gorm.DB) (*MonthlyAggregator, error) {
	if db == nil {
		return nil, fmt.Errorf("monthly aggregator requires a database handle")
	}
	return &MonthlyAggregator{db: db}, nil
}

// SupplierMonthTotal sums a supplier's receipt grams across the month.
func (a *MonthlyAggregator) SupplierMonthTotal(ctx context.Context, supplierID string, month types.Month) (float64, error) {
	return a.SupplierMonthTotalTx(a.db.WithContext(ctx), supplierID, month)
}

// SupplierMonthTotalTx is the in-transaction variant so a recalculation pass
// can freeze the total it resolves tiers against.
func (a *MonthlyAggregator) SupplierMonthTotalTx(tx *gorm.DB, supplierID string, month types.Month) (float64, error) {
	start, end, err := month.Bounds()
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid month key")
	}

	var total float64
	err = tx.
		Table("purchase_receipts").
		Joins("JOIN purchases ON purchases.id = purchase_receipts.purchase_id").
		Where("purchase_receipts.supplier_id = ?", supplierID).
		Where("purchases.date >= ? AND purchases.date < ?", start, end).
		Select("COALESCE(SUM(purchase_receipts.total_grams_21k), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to sum monthly supplier grams")
	}
	return total, nil
}

// SupplierIDsForMonth lists the distinct suppliers with at least one receipt
// dated inside the month.
func (a *MonthlyAggregator) SupplierIDsForMonth(ctx context.Context, month types.Month) ([]string, error) {
	start, end, err := month.Bounds()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid month key")
	}

	var supplierIDs []string
	err = a.db.WithContext(ctx).
		Table("purchase_receipts").
		Joins("JOIN purchases ON purchases.id = purchase_receipts.purchase_id").
		Where("purchases.date >= ? AND purchases.date < ?", start, end).
		Distinct("purchase_receipts.supplier_id").
		Order("purchase_receipts.supplier_id").
		Pluck("purchase_receipts.supplier_id", &supplierIDs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list suppliers for month")
	}
	return supplierIDs, nil
}

// MonthsForSupplier lists the distinct month keys a supplier has receipts in,
// most recent first.
func (a *MonthlyAggregator) MonthsForSupplier(ctx context.Context, supplierID string) ([]types.Month, error) {
	var dates []time.Time
	err := a.db.WithContext(ctx).
		Table("purchase_receipts").
		Joins("JOIN purchases ON purchases.id = purchase_receipts.purchase_id").
		Where("purchase_receipts.supplier_id = ?", supplierID).
		Distinct("purchases.date").
		Order("purchases.date DESC").
		Pluck("purchases.date", &dates).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list months for supplier")
	}

	seen := make(map[types.Month]struct{}, len(dates))
	months := make([]types.Month, 0, len(dates))
	for _, date := range dates {
		month := types.MonthOf(date)
		if _, ok := seen[month]; ok {
			continue
		}
		seen[month] = struct{}{}
		months = append(months, month)
	}
	return months, nil
}
