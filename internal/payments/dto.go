package payments

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/google/uuid"
)

// PaymentDTO exposes one settlement installment against a purchase.
type PaymentDTO struct {
	ID         string          `json:"id"`
	PurchaseID string          `json:"purchase_id"`
	Date       time.Time       `json:"date"`
	GramsPaid  float64         `json:"grams_paid"`
	FeesPaid   float64         `json:"fees_paid"`
	KaratType  enums.KaratType `json:"karat_type"`
	Note       *string         `json:"note,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SettlementDTO summarizes how much of a purchase's net fees has been paid.
type SettlementDTO struct {
	PurchaseID       string               `json:"purchase_id"`
	Status           enums.PurchaseStatus `json:"status"`
	TotalNetFees     float64              `json:"total_net_fees"`
	TotalPaid        float64              `json:"total_paid"`
	RemainingBalance float64              `json:"remaining_balance"`
	IsFullyPaid      bool                 `json:"is_fully_paid"`
}

// CreatePaymentInput holds creation-time payment data.
type CreatePaymentInput struct {
	ID        string
	Date      time.Time
	GramsPaid float64
	FeesPaid  float64
	KaratType enums.KaratType
	Note      *string
}

// UpdatePaymentInput holds the mutable payment fields. Nil means unchanged.
type UpdatePaymentInput struct {
	Date      *time.Time
	GramsPaid *float64
	FeesPaid  *float64
	KaratType *enums.KaratType
	Note      *string
}

// FromModel maps the persisted payment into a DTO.
func FromModel(m *models.Payment) *PaymentDTO {
	if m == nil {
		return nil
	}
	return &PaymentDTO{
		ID:         m.ID,
		PurchaseID: m.PurchaseID,
		Date:       m.Date,
		GramsPaid:  m.GramsPaid,
		FeesPaid:   m.FeesPaid,
		KaratType:  m.KaratType,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// ToModel converts creation input into the persisted shape.
func (in CreatePaymentInput) ToModel(purchaseID string) *models.Payment {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &models.Payment{
		ID:         id,
		PurchaseID: purchaseID,
		Date:       in.Date,
		GramsPaid:  in.GramsPaid,
		FeesPaid:   in.FeesPaid,
		KaratType:  in.KaratType,
		Note:       in.Note,
	}
}
