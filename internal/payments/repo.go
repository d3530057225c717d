package payments

import (
	"context"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles payment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to payment operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a payment.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListForPurchase returns a purchase's payments in date order.
func (r *Repository) ListForPurchase(ctx context.Context, purchaseID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("date ASC").
		Order("id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// CreateWithTx persists a payment inside the transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, payment *models.Payment) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(payment).Error
}

// UpdateWithTx saves payment field changes inside the transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, payment *models.Payment) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Save(payment).Error
}

// DeleteWithTx removes a payment inside the transaction.
func (r *Repository) DeleteWithTx(tx *gorm.DB, id string) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Delete(&models.Payment{}, "id = ?", id).Error
}

// TotalFeesPaid sums the fees paid against a purchase.
func (r *Repository) TotalFeesPaid(ctx context.Context, purchaseID string) (float64, error) {
	return r.totalFeesPaid(r.db.WithContext(ctx), purchaseID)
}

// TotalFeesPaidTx sums the fees paid against a purchase inside the transaction.
func (r *Repository) TotalFeesPaidTx(tx *gorm.DB, purchaseID string) (float64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	return r.totalFeesPaid(tx, purchaseID)
}

func (r *Repository) totalFeesPaid(db *gorm.DB, purchaseID string) (float64, error) {
	var total float64
	err := db.Model(&models.Payment{}).
		Where("purchase_id = ?", purchaseID).
		Select("COALESCE(SUM(fees_paid), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// FindPurchaseTx loads the parent purchase inside the transaction.
func (r *Repository) FindPurchaseTx(tx *gorm.DB, purchaseID string) (*models.Purchase, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var purchase models.Purchase
	if err := tx.First(&purchase, "id = ?", purchaseID).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// UpdatePurchaseStatusTx overwrites the purchase status inside the transaction.
func (r *Repository) UpdatePurchaseStatusTx(tx *gorm.DB, purchaseID string, status string) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.Purchase{}).
		Where("id = ?", purchaseID).
		Update("status", status).Error
}
