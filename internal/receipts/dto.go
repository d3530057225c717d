package receipts

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
)

// ReceiptDTO exposes one receipt with its discount snapshot. Provisional is
// set when the snapshot was written by the degraded path and awaits the next
// recalculation pass.
type ReceiptDTO struct {
	ID             string    `json:"id"`
	PurchaseID     string    `json:"purchase_id"`
	SupplierID     string    `json:"supplier_id"`
	ReceiptNumber  int       `json:"receipt_number"`
	Grams18k       float64   `json:"grams_18k"`
	Grams21k       float64   `json:"grams_21k"`
	TotalGrams21k  float64   `json:"total_grams_21k"`
	BaseFees       float64   `json:"base_fees"`
	DiscountRate   float64   `json:"discount_rate"`
	DiscountAmount float64   `json:"discount_amount"`
	NetFees        float64   `json:"net_fees"`
	Provisional    bool      `json:"provisional,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateReceiptInput holds creation-time data for one receipt. BaseFees is
// optional; when absent it is derived from the configured fee per gram.
type CreateReceiptInput struct {
	ID       string
	Grams18k float64
	Grams21k float64
	BaseFees *float64
}

// FromModel maps the persisted receipt into a DTO.
func FromModel(m *models.PurchaseReceipt) *ReceiptDTO {
	if m == nil {
		return nil
	}
	return &ReceiptDTO{
		ID:             m.ID,
		PurchaseID:     m.PurchaseID,
		SupplierID:     m.SupplierID,
		ReceiptNumber:  m.ReceiptNumber,
		Grams18k:       m.Grams18k,
		Grams21k:       m.Grams21k,
		TotalGrams21k:  m.TotalGrams21k,
		BaseFees:       m.BaseFees,
		DiscountRate:   m.DiscountRate,
		DiscountAmount: m.DiscountAmount,
		NetFees:        m.NetFees,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
