package suppliers

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	"github.com/google/uuid"
)

// SupplierDTO exposes supplier data with tiers ordered by ascending threshold.
type SupplierDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsActive  bool      `json:"is_active"`
	Tiers     []TierDTO `json:"discount_tiers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TierDTO exposes one discount band.
type TierDTO struct {
	ID                 string          `json:"id"`
	SupplierID         string          `json:"supplier_id"`
	KaratType          enums.KaratType `json:"karat_type"`
	Name               string          `json:"name"`
	Threshold          float64         `json:"threshold"`
	DiscountPercentage float64         `json:"discount_percentage"`
	IsProtected        bool            `json:"is_protected"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// CreateSupplierInput holds creation-time data for a supplier.
type CreateSupplierInput struct {
	ID       string
	Name     string
	Code     string
	IsActive *bool
}

// UpdateSupplierInput captures the allowed supplier fields for mutation.
type UpdateSupplierInput struct {
	Name     *string
	Code     *string
	IsActive *bool
}

// CreateTierInput holds creation-time data for a discount band.
type CreateTierInput struct {
	ID                 string
	KaratType          enums.KaratType
	Name               string
	Threshold          float64
	DiscountPercentage float64
	IsProtected        bool
}

// UpdateTierInput captures the allowed tier fields for mutation.
type UpdateTierInput struct {
	Name               *string
	Threshold          *float64
	DiscountPercentage *float64
}

// FromModel maps the persisted supplier into a DTO.
func FromModel(m *models.Supplier) *SupplierDTO {
	if m == nil {
		return nil
	}
	tiers := make([]TierDTO, 0, len(m.DiscountTiers))
	for i := range m.DiscountTiers {
		tiers = append(tiers, *TierFromModel(&m.DiscountTiers[i]))
	}
	return &SupplierDTO{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		IsActive:  m.IsActive,
		Tiers:     tiers,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// TierFromModel maps the persisted tier into a DTO.
func TierFromModel(m *models.DiscountTier) *TierDTO {
	if m == nil {
		return nil
	}
	return &TierDTO{
		ID:                 m.ID,
		SupplierID:         m.SupplierID,
		KaratType:          m.KaratType,
		Name:               m.Name,
		Threshold:          m.Threshold,
		DiscountPercentage: m.DiscountPercentage,
		IsProtected:        m.IsProtected,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ToModel builds the persisted supplier row.
func (in CreateSupplierInput) ToModel() *models.Supplier {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &models.Supplier{
		ID:       id,
		Name:     in.Name,
		Code:     in.Code,
		IsActive: active,
	}
}

// ToModel builds the persisted tier row for a supplier.
func (in CreateTierInput) ToModel(supplierID string) *models.DiscountTier {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &models.DiscountTier{
		ID:                 id,
		SupplierID:         supplierID,
		KaratType:          in.KaratType,
		Name:               in.Name,
		Threshold:          in.Threshold,
		DiscountPercentage: in.DiscountPercentage,
		IsProtected:        in.IsProtected,
	}
}
