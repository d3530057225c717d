package suppliers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	dbpkg "github.com/MostafaHamedd/purchases-tracker-api/pkg/db"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"gorm.io/gorm"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{3,10}$`)

type supplierRepository interface {
	Create(ctx context.Context, input CreateSupplierInput) (*models.Supplier, error)
	FindByID(ctx context.Context, id string) (*models.Supplier, error)
	List(ctx context.Context) ([]models.Supplier, error)
	Update(ctx context.Context, supplier *models.Supplier) error
	Delete(ctx context.Context, id string) error
	TiersBySupplier(ctx context.Context, supplierID string) ([]models.DiscountTier, error)
	FindTier(ctx context.Context, supplierID, tierID string) (*models.DiscountTier, error)
	CreateTierWithTx(tx *gorm.DB, tier *models.DiscountTier) error
	UpdateTierWithTx(tx *gorm.DB, tier *models.DiscountTier) error
	DeleteTierWithTx(tx *gorm.DB, supplierID, tierID string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type recalcQueue interface {
	EnqueueSupplierTx(tx *gorm.DB, supplierID string, month types.Month) error
}

// Service exposes supplier and discount-tier operations. Tier mutations
// enqueue a recalculation marker in the same transaction, since a band change
// can move every receipt of the month to a different rate.
type Service interface {
	List(ctx context.Context) ([]SupplierDTO, error)
	GetByID(ctx context.Context, id string) (*SupplierDTO, error)
	Create(ctx context.Context, input CreateSupplierInput) (*SupplierDTO, error)
	Update(ctx context.Context, id string, input UpdateSupplierInput) (*SupplierDTO, error)
	Delete(ctx context.Context, id string) error

	ListTiers(ctx context.Context, supplierID string) ([]TierDTO, error)
	CreateTier(ctx context.Context, supplierID string, input CreateTierInput, month types.Month) (*TierDTO, error)
	UpdateTier(ctx context.Context, supplierID, tierID string, input UpdateTierInput, month types.Month) (*TierDTO, error)
	DeleteTier(ctx context.Context, supplierID, tierID string, month types.Month) error
}

type service struct {
	repo  supplierRepository
	db    txRunner
	queue recalcQueue
}

// NewService builds a supplier service with the provided dependencies.
func NewService(repo supplierRepository, db txRunner, queue recalcQueue) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	if db == nil {
		return nil, fmt.Errorf("database client required")
	}
	if queue == nil {
		return nil, fmt.Errorf("recalc queue required")
	}
	return &service{repo: repo, db: db, queue: queue}, nil
}

func (s *service) List(ctx context.Context) ([]SupplierDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	dtos := make([]SupplierDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*SupplierDTO, error) {
	supplier, err := s.loadSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(supplier), nil
}

func (s *service) Create(ctx context.Context, input CreateSupplierInput) (*SupplierDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}
	if !codePattern.MatchString(input.Code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier code must be 3-10 uppercase letters or digits")
	}

	supplier, err := s.repo.Create(ctx, input)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}
	return FromModel(supplier), nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateSupplierInput) (*SupplierDTO, error) {
	supplier, err := s.loadSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
		}
		supplier.Name = name
	}
	if input.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*input.Code))
		if !codePattern.MatchString(code) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier code must be 3-10 uppercase letters or digits")
		}
		supplier.Code = code
	}
	if input.IsActive != nil {
		supplier.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, supplier); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "supplier code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier")
	}
	return FromModel(supplier), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.loadSupplier(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier")
	}
	return nil
}

func (s *service) ListTiers(ctx context.Context, supplierID string) ([]TierDTO, error) {
	if _, err := s.loadSupplier(ctx, supplierID); err != nil {
		return nil, err
	}
	tiers, err := s.repo.TiersBySupplier(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discount tiers")
	}
	dtos := make([]TierDTO, 0, len(tiers))
	for i := range tiers {
		dtos = append(dtos, *TierFromModel(&tiers[i]))
	}
	return dtos, nil
}

func (s *service) CreateTier(ctx context.Context, supplierID string, input CreateTierInput, month types.Month) (*TierDTO, error) {
	if _, err := s.loadSupplier(ctx, supplierID); err != nil {
		return nil, err
	}
	if err := validateTierInput(input); err != nil {
		return nil, err
	}

	tier := input.ToModel(supplierID)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTierWithTx(tx, tier); err != nil {
			return err
		}
		return s.queue.EnqueueSupplierTx(tx, supplierID, month)
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a tier with this threshold already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount tier")
	}
	return TierFromModel(tier), nil
}

func (s *service) UpdateTier(ctx context.Context, supplierID, tierID string, input UpdateTierInput, month types.Month) (*TierDTO, error) {
	tier, err := s.loadTier(ctx, supplierID, tierID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier name is required")
		}
		tier.Name = name
	}
	if input.Threshold != nil {
		if *input.Threshold < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier threshold must not be negative")
		}
		tier.Threshold = *input.Threshold
	}
	if input.DiscountPercentage != nil {
		if *input.DiscountPercentage < 0 || *input.DiscountPercentage > 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be a fraction between 0 and 1")
		}
		tier.DiscountPercentage = *input.DiscountPercentage
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateTierWithTx(tx, tier); err != nil {
			return err
		}
		return s.queue.EnqueueSupplierTx(tx, supplierID, month)
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a tier with this threshold already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount tier")
	}
	return TierFromModel(tier), nil
}

func (s *service) DeleteTier(ctx context.Context, supplierID, tierID string, month types.Month) error {
	tier, err := s.loadTier(ctx, supplierID, tierID)
	if err != nil {
		return err
	}
	if tier.IsProtected {
		return pkgerrors.New(pkgerrors.CodeProtected, "this discount tier is protected and cannot be deleted").
			WithDetails(map[string]any{"tier_id": tierID})
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteTierWithTx(tx, supplierID, tierID); err != nil {
			return err
		}
		return s.queue.EnqueueSupplierTx(tx, supplierID, month)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount tier")
	}
	return nil
}

func (s *service) loadSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return supplier, nil
}

func (s *service) loadTier(ctx context.Context, supplierID, tierID string) (*models.DiscountTier, error) {
	tier, err := s.repo.FindTier(ctx, supplierID, tierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount tier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount tier")
	}
	return tier, nil
}

func validateTierInput(input CreateTierInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier name is required")
	}
	if input.KaratType != enums.Karat21 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount tiers are defined on 21k-equivalent weight only")
	}
	if input.Threshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier threshold must not be negative")
	}
	if input.DiscountPercentage < 0 || input.DiscountPercentage > 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be a fraction between 0 and 1")
	}
	return nil
}
