package recalc

import (
	"context"
	"errors"

	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"gorm.io/gorm"
)

// Repository reads and rewrites the rows a recalculation pass touches. Every
// method takes the pass transaction so the whole supplier+month unit commits
// or rolls back together.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) TiersTx(tx *gorm.DB, supplierID string) ([]models.DiscountTier, error) {
	var tiers []models.DiscountTier
	err := tx.
		Where("supplier_id = ?", supplierID).
		Order("threshold ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load discount tiers")
	}
	return tiers, nil
}

func (r *Repository) ReceiptsForSupplierMonthTx(tx *gorm.DB, supplierID string, month types.Month) ([]models.PurchaseReceipt, error) {
	start, end, err := month.Bounds()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid month key")
	}

	var receipts []models.PurchaseReceipt
	err = tx.
		Select("purchase_receipts.*").
		Joins("JOIN purchases ON purchases.id = purchase_receipts.purchase_id").
		Where("purchase_receipts.supplier_id = ?", supplierID).
		Where("purchases.date >= ? AND purchases.date < ?", start, end).
		Order("purchase_receipts.purchase_id ASC").
		Order("purchase_receipts.receipt_number ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load monthly receipts")
	}
	return receipts, nil
}

func (r *Repository) ReceiptsForPurchaseTx(tx *gorm.DB, purchaseID string) ([]models.PurchaseReceipt, error) {
	var receipts []models.PurchaseReceipt
	err := tx.
		Where("purchase_id = ?", purchaseID).
		Order("receipt_number ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load purchase receipts")
	}
	return receipts, nil
}

func (r *Repository) UpdateReceiptTx(tx *gorm.DB, id string, result discount.CalcResult) error {
	err := tx.Model(&models.PurchaseReceipt{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"total_grams_21k": result.TotalGrams21k,
			"discount_rate":   result.DiscountRate,
			"discount_amount": result.DiscountAmount,
			"net_fees":        result.NetFees,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update receipt discount")
	}
	return nil
}

func (r *Repository) UpdatePurchaseTotalsTx(tx *gorm.DB, purchaseID string, totals discount.Totals) error {
	err := tx.Model(&models.Purchase{}).
		Where("id = ?", purchaseID).
		Updates(map[string]any{
			"total_grams_21k_equivalent": totals.Grams21kEquivalent,
			"total_base_fees":            totals.BaseFees,
			"total_discount_amount":      totals.DiscountAmount,
			"total_net_fees":             totals.NetFees,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update purchase totals")
	}
	return nil
}

func (r *Repository) UpdatePurchaseSupplierTotalsTx(tx *gorm.DB, purchaseID, supplierID string, totals discount.Totals) error {
	err := tx.Model(&models.PurchaseSupplier{}).
		Where("purchase_id = ? AND supplier_id = ?", purchaseID, supplierID).
		Updates(map[string]any{
			"total_grams_18k":            totals.Grams18k,
			"total_grams_21k":            totals.Grams21k,
			"total_grams_21k_equivalent": totals.Grams21kEquivalent,
			"total_base_fees":            totals.BaseFees,
			"total_discount_amount":      totals.DiscountAmount,
			"total_net_fees":             totals.NetFees,
			"receipt_count":              totals.ReceiptCount,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to update purchase supplier totals")
	}
	return nil
}

func (r *Repository) PurchaseByID(ctx context.Context, id string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load purchase")
	}
	return &purchase, nil
}

// SupplierIDsForPurchase unions the suppliers referenced by the purchase's
// rollup rows and by its receipts, so a supplier whose last receipt was just
// deleted is still recalculated.
func (r *Repository) SupplierIDsForPurchase(ctx context.Context, purchaseID string) ([]string, error) {
	var fromRollups []string
	err := r.db.WithContext(ctx).
		Model(&models.PurchaseSupplier{}).
		Where("purchase_id = ?", purchaseID).
		Distinct("supplier_id").
		Pluck("supplier_id", &fromRollups).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list purchase suppliers")
	}

	var fromReceipts []string
	err = r.db.WithContext(ctx).
		Model(&models.PurchaseReceipt{}).
		Where("purchase_id = ?", purchaseID).
		Distinct("supplier_id").
		Pluck("supplier_id", &fromReceipts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list receipt suppliers")
	}

	seen := make(map[string]struct{}, len(fromRollups)+len(fromReceipts))
	supplierIDs := make([]string, 0, len(fromRollups)+len(fromReceipts))
	for _, id := range append(fromRollups, fromReceipts...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		supplierIDs = append(supplierIDs, id)
	}
	return supplierIDs, nil
}
