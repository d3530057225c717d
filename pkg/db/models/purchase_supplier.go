package models

import "time"

// PurchaseSupplier is the denormalized per-(purchase, supplier) rollup so
// supplier subtotals inside a purchase do not fan out across receipts.
type PurchaseSupplier struct {
	ID                      string    `gorm:"column:id;size:50;primaryKey"`
	PurchaseID              string    `gorm:"column:purchase_id;size:50;not null;uniqueIndex:ux_purchase_supplier"`
	SupplierID              string    `gorm:"column:supplier_id;size:50;not null;uniqueIndex:ux_purchase_supplier"`
	TotalGrams18k           float64   `gorm:"column:total_grams_18k;type:decimal(10,2);not null;default:0"`
	TotalGrams21k           float64   `gorm:"column:total_grams_21k;type:decimal(10,2);not null;default:0"`
	TotalGrams21kEquivalent float64   `gorm:"column:total_grams_21k_equivalent;type:decimal(10,2);not null;default:0"`
	TotalBaseFees           float64   `gorm:"column:total_base_fees;type:decimal(12,2);not null;default:0"`
	TotalDiscountAmount     float64   `gorm:"column:total_discount_amount;type:decimal(12,2);not null;default:0"`
	TotalNetFees            float64   `gorm:"column:total_net_fees;type:decimal(12,2);not null;default:0"`
	ReceiptCount            int       `gorm:"column:receipt_count;not null;default:0"`
	CreatedAt               time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}
