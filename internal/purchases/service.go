package purchases

import (
	"context"
	"errors"
	"fmt"

	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"gorm.io/gorm"
)

type purchaseRepository interface {
	Create(ctx context.Context, input CreatePurchaseInput) (*models.Purchase, error)
	FindByID(ctx context.Context, id string) (*models.Purchase, error)
	List(ctx context.Context) ([]models.Purchase, error)
	ListByStore(ctx context.Context, storeID string) ([]models.Purchase, error)
	UpdateWithTx(tx *gorm.DB, purchase *models.Purchase) error
	DeleteWithTx(tx *gorm.DB, id string) error
	SuppliersForPurchase(ctx context.Context, purchaseID string) ([]models.PurchaseSupplier, error)
	FindSupplierRollup(ctx context.Context, purchaseID, supplierID string) (*models.PurchaseSupplier, error)
	DeleteSupplierRollupWithTx(tx *gorm.DB, purchaseID, supplierID string) error
	ReceiptsForPurchaseTx(tx *gorm.DB, purchaseID string) ([]models.PurchaseReceipt, error)
	UpdateTotalsWithTx(tx *gorm.DB, purchaseID string, grams, baseFees, discountAmount, netFees float64) error
}

type storeLookup interface {
	FindByID(ctx context.Context, id string) (*models.Store, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type recalcQueue interface {
	EnqueueSupplierTx(tx *gorm.DB, supplierID string, month types.Month) error
	EnqueueMonthTx(tx *gorm.DB, month types.Month) error
}

// Service exposes purchase operations. Deleting a purchase or detaching a
// supplier shrinks the monthly total, so those paths enqueue a recalculation
// marker in the same transaction.
type Service interface {
	List(ctx context.Context) ([]PurchaseDTO, error)
	ListByStore(ctx context.Context, storeID string) ([]PurchaseDTO, error)
	GetByID(ctx context.Context, id string) (*PurchaseDTO, error)
	Create(ctx context.Context, input CreatePurchaseInput) (*PurchaseDTO, error)
	Update(ctx context.Context, id string, input UpdatePurchaseInput) (*PurchaseDTO, error)
	Delete(ctx context.Context, id string) error

	ListSuppliers(ctx context.Context, purchaseID string) ([]PurchaseSupplierDTO, error)
	RemoveSupplier(ctx context.Context, purchaseID, supplierID string) error
}

type service struct {
	repo   purchaseRepository
	stores storeLookup
	db     txRunner
	queue  recalcQueue
}

// NewService builds a purchase service with the provided dependencies.
func NewService(repo purchaseRepository, stores storeLookup, db txRunner, queue recalcQueue) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("database client required")
	}
	if queue == nil {
		return nil, fmt.Errorf("recalc queue required")
	}
	return &service{repo: repo, stores: stores, db: db, queue: queue}, nil
}

func (s *service) List(ctx context.Context) ([]PurchaseDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	return toDTOs(rows), nil
}

func (s *service) ListByStore(ctx context.Context, storeID string) ([]PurchaseDTO, error) {
	rows, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	return toDTOs(rows), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*PurchaseDTO, error) {
	purchase, err := s.loadPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(purchase), nil
}

func (s *service) Create(ctx context.Context, input CreatePurchaseInput) (*PurchaseDTO, error) {
	if input.StoreID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if input.Date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase date is required")
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase status")
	}

	if _, err := s.stores.FindByID(ctx, input.StoreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	purchase, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
	}
	return FromModel(purchase), nil
}

func (s *service) Update(ctx context.Context, id string, input UpdatePurchaseInput) (*PurchaseDTO, error) {
	purchase, err := s.loadPurchase(ctx, id)
	if err != nil {
		return nil, err
	}

	oldMonth := types.MonthOf(purchase.Date)
	dateChanged := false

	if input.Date != nil {
		if input.Date.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase date is required")
		}
		dateChanged = !purchase.Date.Equal(*input.Date)
		purchase.Date = *input.Date
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase status")
		}
		purchase.Status = *input.Status
	}
	if input.DueDate != nil {
		purchase.DueDate = input.DueDate
	}

	newMonth := types.MonthOf(purchase.Date)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateWithTx(tx, purchase); err != nil {
			return err
		}
		// Moving a purchase across months shifts both monthly totals.
		if dateChanged {
			if err := s.queue.EnqueueMonthTx(tx, oldMonth); err != nil {
				return err
			}
			if newMonth != oldMonth {
				return s.queue.EnqueueMonthTx(tx, newMonth)
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase")
	}
	return FromModel(purchase), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	purchase, err := s.loadPurchase(ctx, id)
	if err != nil {
		return err
	}
	month := types.MonthOf(purchase.Date)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteWithTx(tx, id); err != nil {
			return err
		}
		return s.queue.EnqueueMonthTx(tx, month)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete purchase")
	}
	return nil
}

func (s *service) ListSuppliers(ctx context.Context, purchaseID string) ([]PurchaseSupplierDTO, error) {
	if _, err := s.loadPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}
	rollups, err := s.repo.SuppliersForPurchase(ctx, purchaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchase suppliers")
	}
	dtos := make([]PurchaseSupplierDTO, 0, len(rollups))
	for i := range rollups {
		dtos = append(dtos, *SupplierFromModel(&rollups[i]))
	}
	return dtos, nil
}

func (s *service) RemoveSupplier(ctx context.Context, purchaseID, supplierID string) error {
	purchase, err := s.loadPurchase(ctx, purchaseID)
	if err != nil {
		return err
	}
	if _, err := s.repo.FindSupplierRollup(ctx, purchaseID, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found on this purchase")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase supplier")
	}
	month := types.MonthOf(purchase.Date)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteSupplierRollupWithTx(tx, purchaseID, supplierID); err != nil {
			return err
		}
		receipts, err := s.repo.ReceiptsForPurchaseTx(tx, purchaseID)
		if err != nil {
			return err
		}
		totals := discount.SumReceipts(receipts)
		if err := s.repo.UpdateTotalsWithTx(tx, purchaseID, totals.Grams21kEquivalent, totals.BaseFees, totals.DiscountAmount, totals.NetFees); err != nil {
			return err
		}
		return s.queue.EnqueueSupplierTx(tx, supplierID, month)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove purchase supplier")
	}
	return nil
}

func (s *service) loadPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	purchase, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	return purchase, nil
}

func toDTOs(rows []models.Purchase) []PurchaseDTO {
	dtos := make([]PurchaseDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}
