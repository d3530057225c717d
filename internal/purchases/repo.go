package purchases

import (
	"context"
	"fmt"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles purchase persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to purchase operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new purchase row.
func (r *Repository) Create(ctx context.Context, input CreatePurchaseInput) (*models.Purchase, error) {
	purchase := input.ToModel()
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

// FindByID loads a purchase with its supplier rollups.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Suppliers").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// List returns purchases newest business date first.
func (r *Repository) List(ctx context.Context) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Suppliers").
		Order("date DESC").
		Order("id ASC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// ListByStore returns a store's purchases newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Suppliers").
		Where("store_id = ?", storeID).
		Order("date DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	return purchases, nil
}

// UpdateWithTx saves the purchase inside the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, purchase *models.Purchase) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if purchase == nil {
		return fmt.Errorf("purchase is required")
	}
	return tx.Omit("Suppliers", "Receipts", "Payments").Save(purchase).Error
}

// DeleteWithTx removes a purchase and its children inside the transaction.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id string) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Delete(&models.PurchaseReceipt{}, "purchase_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.PurchaseSupplier{}, "purchase_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.Delete(&models.Payment{}, "purchase_id = ?", id).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Purchase{}, "id = ?", id).Error
}

// SuppliersForPurchase lists a purchase's rollup rows.
func (r *Repository) SuppliersForPurchase(ctx context.Context, purchaseID string) ([]models.PurchaseSupplier, error) {
	var rollups []models.PurchaseSupplier
	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("supplier_id ASC").
		Find(&rollups).Error
	if err != nil {
		return nil, err
	}
	return rollups, nil
}

// FindSupplierRollup loads one rollup row.
func (r *Repository) FindSupplierRollup(ctx context.Context, purchaseID, supplierID string) (*models.PurchaseSupplier, error) {
	var rollup models.PurchaseSupplier
	err := r.db.WithContext(ctx).
		First(&rollup, "purchase_id = ? AND supplier_id = ?", purchaseID, supplierID).Error
	if err != nil {
		return nil, err
	}
	return &rollup, nil
}

// DeleteSupplierRollupWithTx removes a supplier's rollup and receipts from a
// purchase inside the transaction.
func (r *Repository) DeleteSupplierRollupWithTx(tx *gorm.DB, purchaseID, supplierID string) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Delete(&models.PurchaseReceipt{}, "purchase_id = ? AND supplier_id = ?", purchaseID, supplierID).Error; err != nil {
		return err
	}
	return tx.Delete(&models.PurchaseSupplier{}, "purchase_id = ? AND supplier_id = ?", purchaseID, supplierID).Error
}

// ReceiptsForPurchaseTx loads a purchase's receipts inside the transaction.
func (r *Repository) ReceiptsForPurchaseTx(tx *gorm.DB, purchaseID string) ([]models.PurchaseReceipt, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var receipts []models.PurchaseReceipt
	err := tx.
		Where("purchase_id = ?", purchaseID).
		Order("receipt_number ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// UpdateTotalsWithTx overwrites the purchase's derived totals.
func (r *Repository) UpdateTotalsWithTx(tx *gorm.DB, purchaseID string, grams, baseFees, discountAmount, netFees float64) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.Purchase{}).
		Where("id = ?", purchaseID).
		Updates(map[string]any{
			"total_grams_21k_equivalent": grams,
			"total_base_fees":            baseFees,
			"total_discount_amount":      discountAmount,
			"total_net_fees":             netFees,
		}).Error
}
