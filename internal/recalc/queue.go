package recalc

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Queue persists pending-recalculation markers. Writers enqueue in the same
// transaction as the mutation they compensate for, so a commit implies a
// durable marker and a crashed worker can never orphan a stale discount.
type Queue struct {
	db *gorm.DB
}

func NewQueue(db *gorm.DB) *Queue {
	return &Queue{db: db}
}

// EnqueueSupplierTx queues a supplier+month pass, skipping the insert when an
// identical pending job already exists.
func (q *Queue) EnqueueSupplierTx(tx *gorm.DB, supplierID string, month types.Month) error {
	return q.enqueueTx(tx, models.RecalcJob{
		ID:         uuid.New(),
		Scope:      enums.RecalcScopeSupplier,
		SupplierID: &supplierID,
		Month:      month.String(),
		Status:     enums.RecalcJobStatusPending,
	})
}

// EnqueueMonthTx queues a month-wide pass covering every supplier with
// receipts in the month.
func (q *Queue) EnqueueMonthTx(tx *gorm.DB, month types.Month) error {
	return q.enqueueTx(tx, models.RecalcJob{
		ID:     uuid.New(),
		Scope:  enums.RecalcScopeMonth,
		Month:  month.String(),
		Status: enums.RecalcJobStatusPending,
	})
}

func (q *Queue) enqueueTx(tx *gorm.DB, job models.RecalcJob) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required to enqueue recalc job")
	}

	query := tx.Model(&models.RecalcJob{}).
		Where("scope = ? AND month = ? AND status = ?", job.Scope, job.Month, enums.RecalcJobStatusPending)
	if job.SupplierID != nil {
		query = query.Where("supplier_id = ?", *job.SupplierID)
	} else {
		query = query.Where("supplier_id IS NULL")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to check pending recalc jobs")
	}
	if count > 0 {
		return nil
	}

	if err := tx.Create(&job).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to enqueue recalc job")
	}
	return nil
}

// FetchPendingTx claims a batch of runnable jobs, oldest first. Exclusive
// access across sweeper replicas comes from the Redis cycle lock, not from
// row locks.
func (q *Queue) FetchPendingTx(tx *gorm.DB, limit, maxAttempts int) ([]models.RecalcJob, error) {
	var jobs []models.RecalcJob
	err := tx.
		Where("status = ?", enums.RecalcJobStatusPending).
		Where("attempt_count < ?", maxAttempts).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch pending recalc jobs")
	}
	return jobs, nil
}

func (q *Queue) MarkDoneTx(tx *gorm.DB, id uuid.UUID) error {
	err := tx.Model(&models.RecalcJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       enums.RecalcJobStatusDone,
			"completed_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to mark recalc job done")
	}
	return nil
}

// MarkFailedTx records a failed attempt. The job stays pending until it burns
// through maxAttempts, then flips to failed.
func (q *Queue) MarkFailedTx(tx *gorm.DB, id uuid.UUID, cause error, maxAttempts int) error {
	var job models.RecalcJob
	if err := tx.First(&job, "id = ?", id).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load recalc job")
	}

	updates := map[string]any{
		"attempt_count": gorm.Expr("attempt_count + 1"),
		"last_error":    cause.Error(),
	}
	if job.AttemptCount+1 >= maxAttempts {
		updates["status"] = enums.RecalcJobStatusFailed
	}

	err := tx.Model(&models.RecalcJob{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to mark recalc job failed")
	}
	return nil
}

// PendingCount reports the queue depth, used by the worker health endpoint.
func (q *Queue) PendingCount() (int64, error) {
	var count int64
	err := q.db.Model(&models.RecalcJob{}).
		Where("status = ?", enums.RecalcJobStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to count pending recalc jobs")
	}
	return count, nil
}
