package models

import "time"

// PurchaseReceipt is the atomic fact: one delivery of gold from one supplier
// within one purchase. DiscountRate and DiscountAmount are rewritten by the
// recalculation service whenever the monthly total moves.
type PurchaseReceipt struct {
	ID             string    `gorm:"column:id;size:50;primaryKey"`
	PurchaseID     string    `gorm:"column:purchase_id;size:50;not null;uniqueIndex:ux_receipt_number;index"`
	SupplierID     string    `gorm:"column:supplier_id;size:50;not null;uniqueIndex:ux_receipt_number;index"`
	ReceiptNumber  int       `gorm:"column:receipt_number;not null;uniqueIndex:ux_receipt_number"`
	Grams18k       float64   `gorm:"column:grams_18k;type:decimal(10,2);not null;default:0"`
	Grams21k       float64   `gorm:"column:grams_21k;type:decimal(10,2);not null;default:0"`
	TotalGrams21k  float64   `gorm:"column:total_grams_21k;type:decimal(10,2);not null"`
	BaseFees       float64   `gorm:"column:base_fees;type:decimal(12,2);not null"`
	DiscountRate   float64   `gorm:"column:discount_rate;type:decimal(5,4);not null;default:0"`
	DiscountAmount float64   `gorm:"column:discount_amount;type:decimal(12,2);not null;default:0"`
	NetFees        float64   `gorm:"column:net_fees;type:decimal(12,2);not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
