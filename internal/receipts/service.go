package receipts

import (
	"context"
	"errors"
	"fmt"

	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type receiptRepository interface {
	FindByID(ctx context.Context, id string) (*models.PurchaseReceipt, error)
	ListForPurchase(ctx context.Context, purchaseID string) ([]models.PurchaseReceipt, error)
	NextReceiptNumberTx(tx *gorm.DB, purchaseID, supplierID string) (int, error)
	CreateWithTx(tx *gorm.DB, receipt *models.PurchaseReceipt) error
	DeleteWithTx(tx *gorm.DB, id string) error
	ReceiptsForPurchaseTx(tx *gorm.DB, purchaseID string) ([]models.PurchaseReceipt, error)
	EnsureRollupTx(tx *gorm.DB, rollup *models.PurchaseSupplier) error
	UpdateRollupTx(tx *gorm.DB, purchaseID, supplierID string, updates map[string]any) error
	UpdatePurchaseTotalsTx(tx *gorm.DB, purchaseID string, updates map[string]any) error
}

type purchaseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Purchase, error)
}

type supplierLookup interface {
	FindByID(ctx context.Context, id string) (*models.Supplier, error)
}

type discountEngine interface {
	Calculate(ctx context.Context, in discount.CalcInput) discount.CalcResult
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type recalcQueue interface {
	EnqueueSupplierTx(tx *gorm.DB, supplierID string, month types.Month) error
}

// Service exposes receipt operations. A new receipt gets a provisional
// discount snapshot from the engine; the enqueued recalculation pass settles
// the whole month afterwards, including receipts created earlier.
type Service interface {
	ListForPurchase(ctx context.Context, purchaseID string) ([]ReceiptDTO, error)
	BulkCreate(ctx context.Context, purchaseID, supplierID string, inputs []CreateReceiptInput) ([]ReceiptDTO, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo           receiptRepository
	purchases      purchaseLookup
	suppliers      supplierLookup
	engine         discountEngine
	db             txRunner
	queue          recalcQueue
	baseFeePerGram float64
}

// NewService builds a receipt service with the provided dependencies.
func NewService(repo receiptRepository, purchases purchaseLookup, suppliers supplierLookup, engine discountEngine, db txRunner, queue recalcQueue, baseFeePerGram float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("receipt repository required")
	}
	if purchases == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if suppliers == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if engine == nil {
		return nil, fmt.Errorf("discount engine required")
	}
	if db == nil {
		return nil, fmt.Errorf("database client required")
	}
	if queue == nil {
		return nil, fmt.Errorf("recalc queue required")
	}
	if baseFeePerGram <= 0 {
		return nil, fmt.Errorf("base fee per gram must be positive")
	}
	return &service{
		repo:           repo,
		purchases:      purchases,
		suppliers:      suppliers,
		engine:         engine,
		db:             db,
		queue:          queue,
		baseFeePerGram: baseFeePerGram,
	}, nil
}

func (s *service) ListForPurchase(ctx context.Context, purchaseID string) ([]ReceiptDTO, error) {
	if _, err := s.loadPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForPurchase(ctx, purchaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list receipts")
	}
	dtos := make([]ReceiptDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) BulkCreate(ctx context.Context, purchaseID, supplierID string, inputs []CreateReceiptInput) ([]ReceiptDTO, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one receipt is required")
	}
	for i, input := range inputs {
		if input.Grams18k < 0 || input.Grams21k < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("receipt %d: grams must not be negative", i+1))
		}
		if input.Grams18k == 0 && input.Grams21k == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("receipt %d: grams are required", i+1))
		}
		if input.BaseFees != nil && *input.BaseFees < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("receipt %d: base fees must not be negative", i+1))
		}
	}

	purchase, err := s.loadPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	month := types.MonthOf(purchase.Date)

	// Provisional pricing happens before the transaction: the engine never
	// blocks a receipt, and the enqueued pass recomputes everything anyway.
	priced := make([]*models.PurchaseReceipt, 0, len(inputs))
	degraded := make([]bool, 0, len(inputs))
	for _, input := range inputs {
		receipt, wasDegraded := s.priceReceipt(ctx, purchaseID, supplierID, month, input)
		priced = append(priced, receipt)
		degraded = append(degraded, wasDegraded)
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := s.repo.NextReceiptNumberTx(tx, purchaseID, supplierID)
		if err != nil {
			return err
		}
		for _, receipt := range priced {
			receipt.ReceiptNumber = number
			number++
			if err := s.repo.CreateWithTx(tx, receipt); err != nil {
				return err
			}
		}
		if err := s.repo.EnsureRollupTx(tx, &models.PurchaseSupplier{
			ID:         uuid.NewString(),
			PurchaseID: purchaseID,
			SupplierID: supplierID,
		}); err != nil {
			return err
		}
		if err := s.resumTotalsTx(tx, purchaseID, supplierID); err != nil {
			return err
		}
		return s.queue.EnqueueSupplierTx(tx, supplierID, month)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create receipts")
	}

	dtos := make([]ReceiptDTO, 0, len(priced))
	for i, receipt := range priced {
		dto := FromModel(receipt)
		dto.Provisional = degraded[i]
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	receipt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "receipt not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load receipt")
	}
	purchase, err := s.loadPurchase(ctx, receipt.PurchaseID)
	if err != nil {
		return err
	}
	month := types.MonthOf(purchase.Date)

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteWithTx(tx, id); err != nil {
			return err
		}
		if err := s.resumTotalsTx(tx, receipt.PurchaseID, receipt.SupplierID); err != nil {
			return err
		}
		return s.queue.EnqueueSupplierTx(tx, receipt.SupplierID, month)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete receipt")
	}
	return nil
}

// priceReceipt builds the provisional row. Base fees default to the
// configured per-gram rate over the 21k-equivalent weight.
func (s *service) priceReceipt(ctx context.Context, purchaseID, supplierID string, month types.Month, input CreateReceiptInput) (*models.PurchaseReceipt, bool) {
	equivalent := discount.To21kEquivalent(input.Grams18k, input.Grams21k)
	baseFees := equivalent * s.baseFeePerGram
	if input.BaseFees != nil {
		baseFees = *input.BaseFees
	}

	result := s.engine.Calculate(ctx, discount.CalcInput{
		SupplierID: supplierID,
		Month:      month,
		Grams18k:   input.Grams18k,
		Grams21k:   input.Grams21k,
		BaseFees:   baseFees,
	})

	id := input.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &models.PurchaseReceipt{
		ID:             id,
		PurchaseID:     purchaseID,
		SupplierID:     supplierID,
		Grams18k:       input.Grams18k,
		Grams21k:       input.Grams21k,
		TotalGrams21k:  result.TotalGrams21k,
		BaseFees:       baseFees,
		DiscountRate:   result.DiscountRate,
		DiscountAmount: result.DiscountAmount,
		NetFees:        result.NetFees,
	}, result.Degraded
}

// resumTotalsTx replaces the purchase's and the supplier rollup's derived
// totals with a full re-sum of the receipts now in the transaction.
func (s *service) resumTotalsTx(tx *gorm.DB, purchaseID, supplierID string) error {
	receipts, err := s.repo.ReceiptsForPurchaseTx(tx, purchaseID)
	if err != nil {
		return err
	}

	totals := discount.SumReceipts(receipts)
	if err := s.repo.UpdatePurchaseTotalsTx(tx, purchaseID, map[string]any{
		"total_grams_21k_equivalent": totals.Grams21kEquivalent,
		"total_base_fees":            totals.BaseFees,
		"total_discount_amount":      totals.DiscountAmount,
		"total_net_fees":             totals.NetFees,
	}); err != nil {
		return err
	}

	supplierTotals := discount.SumReceiptsForSupplier(receipts, supplierID)
	return s.repo.UpdateRollupTx(tx, purchaseID, supplierID, map[string]any{
		"total_grams_18k":            supplierTotals.Grams18k,
		"total_grams_21k":            supplierTotals.Grams21k,
		"total_grams_21k_equivalent": supplierTotals.Grams21kEquivalent,
		"total_base_fees":            supplierTotals.BaseFees,
		"total_discount_amount":      supplierTotals.DiscountAmount,
		"total_net_fees":             supplierTotals.NetFees,
		"receipt_count":              supplierTotals.ReceiptCount,
	})
}

func (s *service) loadPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	purchase, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	return purchase, nil
}
