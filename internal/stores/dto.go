package stores

import (
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/google/uuid"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateStoreInput holds creation-time data for a new store.
type CreateStoreInput struct {
	ID       string
	Name     string
	Code     string
	IsActive *bool
}

// UpdateStoreInput captures the allowed store fields for mutation.
type UpdateStoreInput struct {
	Name     *string
	Code     *string
	IsActive *bool
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ToModel builds the persisted row, generating an ID when the caller did not
// supply one.
func (in CreateStoreInput) ToModel() *models.Store {
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &models.Store{
		ID:       id,
		Name:     in.Name,
		Code:     in.Code,
		IsActive: active,
	}
}
