package models

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
)

// Payment records a partial or full settlement against a purchase.
type Payment struct {
	ID         string          `gorm:"column:id;size:50;primaryKey"`
	PurchaseID string          `gorm:"column:purchase_id;size:50;not null;index"`
	Date       time.Time       `gorm:"column:date;type:date;not null"`
	GramsPaid  float64         `gorm:"column:grams_paid;type:decimal(10,2);not null"`
	FeesPaid   float64         `gorm:"column:fees_paid;type:decimal(12,2);not null"`
	KaratType  enums.KaratType `gorm:"column:karat_type;size:2;not null"`
	Note       *string         `gorm:"column:note"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
