package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type paymentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ListForPurchase(ctx context.Context, purchaseID string) ([]models.Payment, error)
	CreateWithTx(tx *gorm.DB, payment *models.Payment) error
	UpdateWithTx(tx *gorm.DB, payment *models.Payment) error
	DeleteWithTx(tx *gorm.DB, id string) error
	TotalFeesPaid(ctx context.Context, purchaseID string) (float64, error)
	TotalFeesPaidTx(tx *gorm.DB, purchaseID string) (float64, error)
	FindPurchaseTx(tx *gorm.DB, purchaseID string) (*models.Purchase, error)
	UpdatePurchaseStatusTx(tx *gorm.DB, purchaseID string, status string) error
}

type purchaseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Purchase, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes payment operations. Every payment mutation re-derives the
// purchase status from the full fees-paid sum in the same transaction.
type Service interface {
	ListForPurchase(ctx context.Context, purchaseID string) ([]PaymentDTO, error)
	Settlement(ctx context.Context, purchaseID string) (*SettlementDTO, error)
	Create(ctx context.Context, purchaseID string, input CreatePaymentInput) (*PaymentDTO, error)
	Update(ctx context.Context, id string, input UpdatePaymentInput) (*PaymentDTO, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo      paymentRepository
	purchases purchaseLookup
	db        txRunner
}

// NewService builds a payment service with the provided dependencies.
func NewService(repo paymentRepository, purchases purchaseLookup, db txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if purchases == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &service{repo: repo, purchases: purchases, db: db}, nil
}

func (s *service) ListForPurchase(ctx context.Context, purchaseID string) ([]PaymentDTO, error) {
	if _, err := s.loadPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForPurchase(ctx, purchaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	dtos := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) Settlement(ctx context.Context, purchaseID string) (*SettlementDTO, error) {
	purchase, err := s.loadPurchase(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	totalPaid, err := s.repo.TotalFeesPaid(ctx, purchaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum payments")
	}
	remaining := decimal.NewFromFloat(purchase.TotalNetFees).
		Sub(decimal.NewFromFloat(totalPaid)).
		Round(2).
		InexactFloat64()
	return &SettlementDTO{
		PurchaseID:       purchase.ID,
		Status:           purchase.Status,
		TotalNetFees:     purchase.TotalNetFees,
		TotalPaid:        totalPaid,
		RemainingBalance: remaining,
		IsFullyPaid:      remaining <= 0,
	}, nil
}

func (s *service) Create(ctx context.Context, purchaseID string, input CreatePaymentInput) (*PaymentDTO, error) {
	if err := validatePayment(input.Date.IsZero(), input.GramsPaid, input.FeesPaid, input.KaratType); err != nil {
		return nil, err
	}
	if _, err := s.loadPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}

	payment := input.ToModel(purchaseID)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateWithTx(tx, payment); err != nil {
			return err
		}
		return s.syncStatusTx(tx, purchaseID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return FromModel(payment), nil
}

func (s *service) Update(ctx context.Context, id string, input UpdatePaymentInput) (*PaymentDTO, error) {
	payment, err := s.loadPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Date != nil {
		payment.Date = *input.Date
	}
	if input.GramsPaid != nil {
		payment.GramsPaid = *input.GramsPaid
	}
	if input.FeesPaid != nil {
		payment.FeesPaid = *input.FeesPaid
	}
	if input.KaratType != nil {
		payment.KaratType = *input.KaratType
	}
	if input.Note != nil {
		payment.Note = input.Note
	}
	if err := validatePayment(payment.Date.IsZero(), payment.GramsPaid, payment.FeesPaid, payment.KaratType); err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateWithTx(tx, payment); err != nil {
			return err
		}
		return s.syncStatusTx(tx, payment.PurchaseID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
	}
	return FromModel(payment), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	payment, err := s.loadPayment(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteWithTx(tx, id); err != nil {
			return err
		}
		return s.syncStatusTx(tx, payment.PurchaseID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment")
	}
	return nil
}

// syncStatusTx re-derives the purchase status from the fees-paid sum. A
// purchase already flagged Overdue stays Overdue until it is fully paid.
func (s *service) syncStatusTx(tx *gorm.DB, purchaseID string) error {
	purchase, err := s.repo.FindPurchaseTx(tx, purchaseID)
	if err != nil {
		return err
	}
	totalPaid, err := s.repo.TotalFeesPaidTx(tx, purchaseID)
	if err != nil {
		return err
	}

	remaining := decimal.NewFromFloat(purchase.TotalNetFees).
		Sub(decimal.NewFromFloat(totalPaid)).
		Round(2)

	var status enums.PurchaseStatus
	switch {
	case totalPaid > 0 && remaining.LessThanOrEqual(decimal.Zero):
		status = enums.PurchaseStatusPaid
	case purchase.Status == enums.PurchaseStatusOverdue:
		status = enums.PurchaseStatusOverdue
	case totalPaid > 0:
		status = enums.PurchaseStatusPartial
	default:
		status = enums.PurchaseStatusPending
	}
	if status == purchase.Status {
		return nil
	}
	return s.repo.UpdatePurchaseStatusTx(tx, purchaseID, status.String())
}

func validatePayment(dateMissing bool, gramsPaid, feesPaid float64, karat enums.KaratType) error {
	if dateMissing {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment date is required")
	}
	if gramsPaid < 0 || feesPaid < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "paid amounts must not be negative")
	}
	if gramsPaid == 0 && feesPaid == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "a payment must settle grams or fees")
	}
	if !karat.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid karat type")
	}
	return nil
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

func (s *service) loadPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}
