package purchases

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/google/uuid"
)

// PurchaseDTO exposes a purchase with its derived totals. The totals are
// re-summed server-side and never accepted from callers.
type PurchaseDTO struct {
	ID                      string                `json:"id"`
	StoreID                 string                `json:"store_id"`
	Date                    time.Time             `json:"date"`
	Status                  enums.PurchaseStatus  `json:"status"`
	TotalGrams21kEquivalent float64               `json:"total_grams_21k_equivalent"`
	TotalBaseFees           float64               `json:"total_base_fees"`
	TotalDiscountAmount     float64               `json:"total_discount_amount"`
	TotalNetFees            float64               `json:"total_net_fees"`
	DueDate                 *time.Time            `json:"due_date,omitempty"`
	Suppliers               []PurchaseSupplierDTO `json:"suppliers,omitempty"`
	CreatedAt               time.Time             `json:"created_at"`
	UpdatedAt               time.Time             `json:"updated_at"`
}

// PurchaseSupplierDTO exposes one supplier's rollup inside a purchase.
type PurchaseSupplierDTO struct {
	ID                      string    `json:"id"`
	PurchaseID              string    `json:"purchase_id"`
	SupplierID              string    `json:"supplier_id"`
	TotalGrams18k           float64   `json:"total_grams_18k"`
	TotalGrams21k           float64   `json:"total_grams_21k"`
	TotalGrams21kEquivalent float64   `json:"total_grams_21k_equivalent"`
	TotalBaseFees           float64   `json:"total_base_fees"`
	TotalDiscountAmount     float64   `json:"total_discount_amount"`
	TotalNetFees            float64   `json:"total_net_fees"`
	ReceiptCount            int       `json:"receipt_count"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// CreatePurchaseInput holds creation-time data for a purchase.
type CreatePurchaseInput struct {
	ID      string
	StoreID string
	Date    time.Time
	Status  enums.PurchaseStatus
	DueDate *time.Time
}

// UpdatePurchaseInput captures the allowed purchase fields for mutation.
type UpdatePurchaseInput struct {
	Date    *time.Time
	Status  *enums.PurchaseStatus
	DueDate *time.Time
}

// FromModel maps the persisted purchase into a DTO.
func FromModel(m *models.Purchase) *PurchaseDTO {
	if m == nil {
		return nil
	}
	suppliers := make([]PurchaseSupplierDTO, 0, len(m.Suppliers))
	for i := range m.Suppliers {
		suppliers = append(suppliers, *SupplierFromModel(&m.Suppliers[i]))
	}
	return &PurchaseDTO{
		ID:                      m.ID,
		StoreID:                 m.StoreID,
		Date:                    m.Date,
		Status:                  m.Status,
		TotalGrams21kEquivalent: m.TotalGrams21kEquivalent,
		TotalBaseFees:           m.TotalBaseFees,
		TotalDiscountAmount:     m.TotalDiscountAmount,
		TotalNetFees:            m.TotalNetFees,
		DueDate:                 m.DueDate,
		Suppliers:               suppliers,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

// SupplierFromModel maps the persisted rollup into a DTO.
func SupplierFromModel(m *models.PurchaseSupplier) *PurchaseSupplierDTO {
	if m == nil {
		return nil
	}
	return &PurchaseSupplierDTO{
		ID:                      m.ID,
		PurchaseID:              m.PurchaseID,
		SupplierID:              m.SupplierID,
		TotalGrams18k:           m.TotalGrams18k,
		TotalGrams21k:           m.TotalGrams21k,
		TotalGrams21kEquivalent: m.TotalGrams21kEquivalent,
		TotalBaseFees:           m.TotalBaseFees,
		TotalDiscountAmount:     m.TotalDiscountAmount,
		TotalNetFees:            m.TotalNetFees,
		ReceiptCount:            m.ReceiptCount,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

// ToModel builds the persisted purchase row.
func (in CreatePurchaseInput) ToModel() *models.Purchase {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := in.Status
	if status == "" {
		status = enums.PurchaseStatusPending
	}
	return &models.Purchase{
		ID:      id,
		StoreID: in.StoreID,
		Date:    in.Date,
		Status:  status,
		DueDate: in.DueDate,
	}
}
