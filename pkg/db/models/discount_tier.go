package models

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
)

// DiscountTier is one threshold/rate band of a supplier's volume discount.
// DiscountPercentage is a fraction in [0,1]; Threshold is grams, 21k-equivalent.
type DiscountTier struct {
	ID                 string          `gorm:"column:id;size:50;primaryKey"`
	SupplierID         string          `gorm:"column:supplier_id;size:50;not null;uniqueIndex:ux_tier_supplier_karat_threshold"`
	KaratType          enums.KaratType `gorm:"column:karat_type;size:2;not null;uniqueIndex:ux_tier_supplier_karat_threshold"`
	Name               string          `gorm:"column:name;not null"`
	Threshold          float64         `gorm:"column:threshold;type:decimal(10,2);not null;uniqueIndex:ux_tier_supplier_karat_threshold"`
	DiscountPercentage float64         `gorm:"column:discount_percentage;type:decimal(5,4);not null"`
	IsProtected        bool            `gorm:"column:is_protected;not null;default:false"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
