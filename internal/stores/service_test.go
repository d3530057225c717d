package stores

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"gorm.io/gorm"
)

type stubStoreRepo struct {
	store   *models.Store
	stores  []models.Store
	err     error
	updated *models.Store
	deleted string
}

func (r *stubStoreRepo) Create(ctx context.Context, input CreateStoreInput) (*models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	return input.ToModel(), nil
}

func (r *stubStoreRepo) FindByID(ctx context.Context, id string) (*models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.store == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.store, nil
}

func (r *stubStoreRepo) List(ctx context.Context) ([]models.Store, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.stores, nil
}

func (r *stubStoreRepo) Update(ctx context.Context, store *models.Store) error {
	if r.err != nil {
		return r.err
	}
	r.updated = store
	return nil
}

func (r *stubStoreRepo) Delete(ctx context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = id
	return nil
}

func baseStore() *models.Store {
	return &models.Store{
		ID:        "store-1",
		Name:      "Downtown",
		Code:      "DTN",
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceGetByIDSuccess(t *testing.T) {
	store := baseStore()
	svc, err := NewService(&stubStoreRepo{store: store})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.GetByID(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if dto.ID != store.ID {
		t.Fatalf("expected id %s got %s", store.ID, dto.ID)
	}
	if dto.Name != store.Name {
		t.Fatalf("expected name %s got %s", store.Name, dto.Name)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.GetByID(context.Background(), "missing")
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", gotErr)
	}
}

func TestServiceCreateNormalizesCode(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.Create(context.Background(), CreateStoreInput{Name: " Downtown ", Code: "dtn"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.Name != "Downtown" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.Code != "DTN" {
		t.Fatalf("expected uppercased code, got %q", dto.Code)
	}
	if dto.ID == "" {
		t.Fatal("expected generated id")
	}
	if !dto.IsActive {
		t.Fatal("expected store active by default")
	}
}

func TestServiceCreateRequiresName(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Create(context.Background(), CreateStoreInput{Code: "DTN"})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", gotErr)
	}
}

func TestServiceCreateDuplicateCode(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{err: errors.New("UNIQUE constraint failed: stores.code")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Create(context.Background(), CreateStoreInput{Name: "Downtown", Code: "DTN"})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", gotErr)
	}
}

func TestServiceUpdateAppliesFields(t *testing.T) {
	store := baseStore()
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	newName := "Uptown"
	inactive := false
	dto, err := svc.Update(context.Background(), store.ID, UpdateStoreInput{Name: &newName, IsActive: &inactive})
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	if dto.Name != "Uptown" {
		t.Fatalf("expected updated name, got %q", dto.Name)
	}
	if dto.IsActive {
		t.Fatal("expected store deactivated")
	}
	if repo.updated == nil {
		t.Fatal("expected repo update call")
	}
}

func TestServiceDeleteMissingStore(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	gotErr := svc.Delete(context.Background(), "missing")
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", gotErr)
	}
}
