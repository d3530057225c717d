package models

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
)

// Purchase is one transaction batch. Its four totals are derived: they are
// always re-summed from the child receipts, never written independently.
type Purchase struct {
	ID                       string               `gorm:"column:id;size:50;primaryKey"`
	StoreID                  string               `gorm:"column:store_id;size:50;not null;index"`
	Date                     time.Time            `gorm:"column:date;type:date;not null;index"`
	Status                   enums.PurchaseStatus `gorm:"column:status;size:10;not null;default:'Pending'"`
	TotalGrams21kEquivalent  float64              `gorm:"column:total_grams_21k_equivalent;type:decimal(10,2);not null;default:0"`
	TotalBaseFees            float64              `gorm:"column:total_base_fees;type:decimal(12,2);not null;default:0"`
	TotalDiscountAmount      float64              `gorm:"column:total_discount_amount;type:decimal(12,2);not null;default:0"`
	TotalNetFees             float64              `gorm:"column:total_net_fees;type:decimal(12,2);not null;default:0"`
	DueDate                  *time.Time           `gorm:"column:due_date;type:date"`
	CreatedAt                time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time            `gorm:"column:updated_at;autoUpdateTime"`

	Store     *Store            `gorm:"foreignKey:StoreID"`
	Suppliers []PurchaseSupplier `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Receipts  []PurchaseReceipt  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Payments  []Payment          `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
}
