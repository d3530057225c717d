package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
)

// RecalcJob is a persisted pending-recalculation marker. Mutating writes
// enqueue one in the same transaction; the worker sweep drains them, so a
// crash between commit and recalculation cannot leave stale discounts.
type RecalcJob struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Scope        enums.RecalcScope     `gorm:"column:scope;size:10;not null"`
	SupplierID   *string               `gorm:"column:supplier_id;size:50"`
	Month        string                `gorm:"column:month;size:7;not null"`
	Status       enums.RecalcJobStatus `gorm:"column:status;size:10;not null;default:'pending';index"`
	AttemptCount int                   `gorm:"column:attempt_count;not null;default:0"`
	LastError    *string               `gorm:"column:last_error"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	CompletedAt  *time.Time            `gorm:"column:completed_at"`
}
