package recalc

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/config"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestQueueEnqueueDeduplicatesPendingJobs(t *testing.T) {
	db := setupRecalcTestDB(t)
	queue := NewQueue(db)

	supplierID := uuid.NewString()
	month := types.Month("2025-03")

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, supplierID, month)
	}))
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, supplierID, month)
	}))

	var count int64
	require.NoError(t, db.Model(&models.RecalcJob{}).
		Where("supplier_id = ? AND month = ?", supplierID, month).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// A different month is a different job.
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, supplierID, "2025-04")
	}))
	require.NoError(t, db.Model(&models.RecalcJob{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestQueueEnqueueAfterCompletionCreatesNewJob(t *testing.T) {
	db := setupRecalcTestDB(t)
	queue := NewQueue(db)

	supplierID := uuid.NewString()
	month := types.Month("2025-05")

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, supplierID, month)
	}))

	var job models.RecalcJob
	require.NoError(t, db.First(&job, "supplier_id = ?", supplierID).Error)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.MarkDoneTx(tx, job.ID)
	}))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, supplierID, month)
	}))

	var count int64
	require.NoError(t, db.Model(&models.RecalcJob{}).
		Where("supplier_id = ?", supplierID).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestQueueFetchPendingSkipsExhaustedJobs(t *testing.T) {
	db := setupRecalcTestDB(t)
	queue := NewQueue(db)

	month := types.Month("2025-06")
	fresh := uuid.NewString()
	exhausted := uuid.NewString()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, fresh, month)
	}))
	require.NoError(t, db.Create(&models.RecalcJob{
		ID:           uuid.New(),
		Scope:        enums.RecalcScopeSupplier,
		SupplierID:   &exhausted,
		Month:        month.String(),
		Status:       enums.RecalcJobStatusPending,
		AttemptCount: 3,
	}).Error)

	var fetched []models.RecalcJob
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		fetched, err = queue.FetchPendingTx(tx, 10, 3)
		return err
	}))

	ids := make([]string, 0, len(fetched))
	for _, job := range fetched {
		if job.SupplierID != nil {
			ids = append(ids, *job.SupplierID)
		}
	}
	assert.Contains(t, ids, fresh)
	assert.NotContains(t, ids, exhausted)
}

func TestQueueMarkFailedFlipsToFailedAtMaxAttempts(t *testing.T) {
	db := setupRecalcTestDB(t)
	queue := NewQueue(db)

	supplierID := uuid.NewString()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, supplierID, "2025-07")
	}))

	var job models.RecalcJob
	require.NoError(t, db.First(&job, "supplier_id = ?", supplierID).Error)

	cause := errors.New("tier lookup failed")
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.MarkFailedTx(tx, job.ID, cause, 2)
	}))

	require.NoError(t, db.First(&job, "id = ?", job.ID).Error)
	assert.Equal(t, enums.RecalcJobStatusPending, job.Status)
	assert.Equal(t, 1, job.AttemptCount)
	require.NotNil(t, job.LastError)
	assert.Equal(t, "tier lookup failed", *job.LastError)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.MarkFailedTx(tx, job.ID, cause, 2)
	}))
	require.NoError(t, db.First(&job, "id = ?", job.ID).Error)
	assert.Equal(t, enums.RecalcJobStatusFailed, job.Status)
	assert.Equal(t, 2, job.AttemptCount)
}

type recordingRunner struct {
	supplierCalls []string
	monthCalls    []types.Month
	err           error
}

func (r *recordingRunner) RecalculateSupplier(ctx context.Context, supplierID string, month types.Month) (*Report, error) {
	r.supplierCalls = append(r.supplierCalls, supplierID)
	if r.err != nil {
		return nil, r.err
	}
	return &Report{SupplierID: supplierID, Month: month, Success: true}, nil
}

func (r *recordingRunner) RecalculateMonth(ctx context.Context, month types.Month) (*MonthReport, error) {
	r.monthCalls = append(r.monthCalls, month)
	if r.err != nil {
		return nil, r.err
	}
	return &MonthReport{Month: month}, nil
}

func (r *recordingRunner) RecalculateForPurchase(ctx context.Context, purchaseID string) ([]*Report, error) {
	return nil, nil
}

func newTestSweeper(t *testing.T, db *gorm.DB, runner Service) *Sweeper {
	t.Helper()

	sweeper, err := NewSweeper(SweeperParams{
		Config: config.RecalcConfig{
			BatchSize:    10,
			PollInterval: 10 * time.Millisecond,
			MaxAttempts:  3,
		},
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:     &testTxRunner{db: db},
		Queue:  NewQueue(db),
		Runner: runner,
	})
	require.NoError(t, err)
	return sweeper
}

func TestSweeperRunsPendingJobs(t *testing.T) {
	db := setupRecalcTestDB(t)
	queue := NewQueue(db)
	runner := &recordingRunner{}
	sweeper := newTestSweeper(t, db, runner)

	supplierID := uuid.NewString()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := queue.EnqueueSupplierTx(tx, supplierID, "2025-03"); err != nil {
			return err
		}
		return queue.EnqueueMonthTx(tx, "2025-04")
	}))

	processed, err := sweeper.sweepOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Equal(t, []string{supplierID}, runner.supplierCalls)
	assert.Equal(t, []types.Month{"2025-04"}, runner.monthCalls)

	var pending int64
	require.NoError(t, db.Model(&models.RecalcJob{}).
		Where("status = ?", enums.RecalcJobStatusPending).
		Where("supplier_id = ? OR (supplier_id IS NULL AND month = ?)", supplierID, "2025-04").
		Count(&pending).Error)
	assert.Equal(t, int64(0), pending)
}

func TestSweeperRecordsJobFailure(t *testing.T) {
	db := setupRecalcTestDB(t)
	queue := NewQueue(db)
	runner := &recordingRunner{err: errors.New("database busy")}
	sweeper := newTestSweeper(t, db, runner)

	supplierID := uuid.NewString()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, supplierID, "2025-03")
	}))

	processed, err := sweeper.sweepOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	var job models.RecalcJob
	require.NoError(t, db.First(&job, "supplier_id = ?", supplierID).Error)
	assert.Equal(t, enums.RecalcJobStatusPending, job.Status)
	assert.Equal(t, 1, job.AttemptCount)
	require.NotNil(t, job.LastError)
	assert.Equal(t, "database busy", *job.LastError)
}

func TestSweeperSkipsCycleWhenLockHeld(t *testing.T) {
	db := setupRecalcTestDB(t)
	queue := NewQueue(db)
	runner := &recordingRunner{}
	sweeper := newTestSweeper(t, db, runner)
	sweeper.lock = &stubLock{acquired: false}

	supplierID := uuid.NewString()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return queue.EnqueueSupplierTx(tx, supplierID, "2025-03")
	}))

	processed, err := sweeper.sweepOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
	assert.Empty(t, runner.supplierCalls)
}

type stubLock struct {
	acquired bool
	released bool
}

func (l *stubLock) Acquire(ctx context.Context) (bool, error) {
	return l.acquired, nil
}

func (l *stubLock) Release(ctx context.Context) error {
	l.released = true
	return nil
}
