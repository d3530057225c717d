package receipts

import (
	"context"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles receipt persistence and the rollup rows receipts feed.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to receipt operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a receipt.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.PurchaseReceipt, error) {
	var receipt models.PurchaseReceipt
	if err := r.db.WithContext(ctx).First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListForPurchase returns a purchase's receipts in receipt-number order.
func (r *Repository) ListForPurchase(ctx context.Context, purchaseID string) ([]models.PurchaseReceipt, error) {
	var receipts []models.PurchaseReceipt
	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("supplier_id ASC").
		Order("receipt_number ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// NextReceiptNumberTx returns the next number in the purchase+supplier series.
func (r *Repository) NextReceiptNumberTx(tx *gorm.DB, purchaseID, supplierID string) (int, error) {
	var current int
	err := tx.Model(&models.PurchaseReceipt{}).
		Where("purchase_id = ? AND supplier_id = ?", purchaseID, supplierID).
		Select("COALESCE(MAX(receipt_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// CreateWithTx persists a receipt inside the transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, receipt *models.PurchaseReceipt) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(receipt).Error
}

// DeleteWithTx removes a receipt inside the transaction.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id string) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Delete(&models.PurchaseReceipt{}, "id = ?", id).Error
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

// EnsureRollupTx creates the purchase+supplier rollup row if it is missing.
func (r *Repository) EnsureRollupTx(tx *gorm.DB, rollup *models.PurchaseSupplier) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.
		Where("purchase_id = ? AND supplier_id = ?", rollup.PurchaseID, rollup.SupplierID).
		FirstOrCreate(rollup).Error
}

// UpdateRollupTx overwrites a rollup row's derived totals.
func (r *Repository) UpdateRollupTx(tx *gorm.DB, purchaseID, supplierID string, updates map[string]any) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.PurchaseSupplier{}).
		Where("purchase_id = ? AND supplier_id = ?", purchaseID, supplierID).
		Updates(updates).Error
}

// UpdatePurchaseTotalsTx overwrites the purchase's derived totals.
func (r *Repository) UpdatePurchaseTotalsTx(tx *gorm.DB, purchaseID string, updates map[string]any) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.Purchase{}).
		Where("id = ?", purchaseID).
		Updates(updates).Error
}
