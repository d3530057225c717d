package recalc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/config"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultBatchSize    = 20
	defaultPollInterval = 2 * time.Second
	defaultMaxAttempts  = 10
	maxBackoff          = 30 * time.Second
	jitterWindow        = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type jobQueue interface {
	FetchPendingTx(tx *gorm.DB, limit, maxAttempts int) ([]models.RecalcJob, error)
	MarkDoneTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, cause error, maxAttempts int) error
}

type SweeperParams struct {
	Config config.RecalcConfig
	Logger *logger.Logger
	DB     txRunner
	Queue  jobQueue
	Runner Service
	Lock   Lock
}

// Sweeper drains the recalc job queue. Each cycle claims a batch under a
// Redis lock, runs every job, and records the outcome in the claiming
// transaction.
type Sweeper struct {
	logg         *logger.Logger
	db           txRunner
	queue        jobQueue
	runner       Service
	lock         Lock
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewSweeper(params SweeperParams) (*Sweeper, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Queue == nil {
		return nil, errors.New("job queue is required")
	}
	if params.Runner == nil {
		return nil, errors.New("recalc service is required")
	}

	batch := params.Config.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	interval := params.Config.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	maxAttempts := params.Config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Sweeper{
		logg:         params.Logger,
		db:           params.DB,
		queue:        params.Queue,
		runner:       params.Runner,
		lock:         params.Lock,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: interval,
	}, nil
}

// Run polls until the context is canceled. Errors back off exponentially with
// jitter; an empty queue sleeps one poll interval.
func (s *Sweeper) Run(ctx context.Context) error {
	backoff := s.pollInterval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "recalc sweeper context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.sweepOnce(ctx)
		if err != nil {
			s.logg.Error(ctx, "recalc sweep cycle failed", err)
			backoff = nextBackoff(backoff, s.pollInterval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = s.pollInterval

		if processed {
			continue
		}
		if err := s.sleep(ctx, withJitter(s.pollInterval)); err != nil {
			return err
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) (bool, error) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx)
		if err != nil {
			return false, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !acquired {
			return false, nil
		}
		defer func() {
			if err := s.lock.Release(ctx); err != nil {
				s.logg.Error(ctx, "failed to release sweep lock", err)
			}
		}()
	}

	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		jobs, err := s.queue.FetchPendingTx(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return nil
		}
		processed = true

		for _, job := range jobs {
			jobCtx := s.logg.WithFields(ctx, map[string]any{
				"job_id":  job.ID.String(),
				"scope":   job.Scope,
				"month":   job.Month,
				"attempt": job.AttemptCount + 1,
			})

			if runErr := s.runJob(jobCtx, job); runErr != nil {
				s.logg.Error(jobCtx, "recalc job failed", runErr)
				if markErr := s.queue.MarkFailedTx(tx, job.ID, runErr, s.maxAttempts); markErr != nil {
					return fmt.Errorf("mark failed %s: %w", job.ID, markErr)
				}
				continue
			}

			if markErr := s.queue.MarkDoneTx(tx, job.ID); markErr != nil {
				return fmt.Errorf("mark done %s: %w", job.ID, markErr)
			}
			s.logg.Info(jobCtx, "recalc job complete")
		}
		return nil
	})
	return processed, err
}

func (s *Sweeper) runJob(ctx context.Context, job models.RecalcJob) error {
	month, err := types.ParseMonth(job.Month)
	if err != nil {
		return err
	}

	switch job.Scope {
	case enums.RecalcScopeSupplier:
		if job.SupplierID == nil || *job.SupplierID == "" {
			return errors.New("supplier job is missing a supplier id")
		}
		_, err := s.runner.RecalculateSupplier(ctx, *job.SupplierID, month)
		return err
	case enums.RecalcScopeMonth:
		_, err := s.runner.RecalculateMonth(ctx, month)
		return err
	default:
		return fmt.Errorf("unknown recalc scope %q", job.Scope)
	}
}

func (s *Sweeper) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(jitterSource.Int63n(int64(jitterWindow)))
	return d + jitter
}
