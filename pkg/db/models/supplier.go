package models

import "time"

// Supplier represents a gold supplier with its own discount-tier set.
type Supplier struct {
	ID        string    `gorm:"column:id;size:50;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Code      string    `gorm:"column:code;size:10;not null;uniqueIndex"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	DiscountTiers []DiscountTier `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
}
