package suppliers

import (
	"context"
	"fmt"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles supplier and discount-tier persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to supplier operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new supplier row.
func (r *Repository) Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error) {
	supplier := input.ToModel()
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

// FindByID loads a supplier with its tiers ordered by threshold.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.Supplier, error) {
	var supplier models.Supplier
	err := r.db.WithContext(ctx).
		Preload("DiscountTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("threshold ASC")
		}).
		First(&supplier, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

// List returns all suppliers with tiers, ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := r.db.WithContext(ctx).
		Preload("DiscountTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("threshold ASC")
		}).
		Order("name ASC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

// Update saves the provided supplier.
func (r *Repository) Update(ctx context.Context, supplier *models.Supplier) error {
	if supplier == nil {
		return fmt.Errorf("supplier is required")
	}
	return r.db.WithContext(ctx).Omit("DiscountTiers").Save(supplier).Error
}

// Delete removes a supplier and, by cascade, its tiers.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Select("DiscountTiers").Delete(&models.Supplier{ID: id}).Error
}

// TiersBySupplier lists a supplier's tiers by ascending threshold. It also
// serves the discount engine as its tier source.
func (r *Repository) TiersBySupplier(ctx context.Context, supplierID string) ([]models.DiscountTier, error) {
	var tiers []models.DiscountTier
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("threshold ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

// FindTier loads one tier belonging to the supplier.
func (r *Repository) FindTier(ctx context.Context, supplierID, tierID string) (*models.DiscountTier, error) {
	var tier models.DiscountTier
	err := r.db.WithContext(ctx).
		First(&tier, "id = ? AND supplier_id = ?", tierID, supplierID).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// CreateTierWithTx persists a tier inside the provided transaction.
func (r *Repository) CreateTierWithTx(tx *gorm.DB, tier *models.DiscountTier) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(tier).Error
}

// UpdateTierWithTx saves a tier inside the provided transaction.
func (r *Repository) UpdateTierWithTx(tx *gorm.DB, tier *models.DiscountTier) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if tier == nil {
		return fmt.Errorf("tier is required")
	}
	return tx.Save(tier).Error
}

// DeleteTierWithTx removes a tier inside the provided transaction.
func (r *Repository) DeleteTierWithTx(tx *gorm.DB, supplierID, tierID string) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Delete(&models.DiscountTier{}, "id = ? AND supplier_id = ?", tierID, supplierID).Error
}
