package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/enums"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"gorm.io/gorm"
)

type stubPurchaseRepo struct {
	purchase *models.Purchase
	rollup   *models.PurchaseSupplier
	receipts []models.PurchaseReceipt
	deleted  string
	updated  *models.Purchase
	detached string
}

func (r *stubPurchaseRepo) Create(ctx context.Context, input CreatePurchaseInput) (*models.Purchase, error) {
	return input.ToModel(), nil
}

func (r *stubPurchaseRepo) FindByID(ctx context.Context, id string) (*models.Purchase, error) {
	if r.purchase == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.purchase, nil
}

func (r *stubPurchaseRepo) List(ctx context.Context) ([]models.Purchase, error) {
	return nil, nil
}

func (r *stubPurchaseRepo) ListByStore(ctx context.Context, storeID string) ([]models.Purchase, error) {
	return nil, nil
}

func (r *stubPurchaseRepo) UpdateWithTx(tx *gorm.DB, purchase *models.Purchase) error {
	r.updated = purchase
	return nil
}

func (r *stubPurchaseRepo) DeleteWithTx(tx *gorm.DB, id string) error {
	r.deleted = id
	return nil
}

func (r *stubPurchaseRepo) SuppliersForPurchase(ctx context.Context, purchaseID string) ([]models.PurchaseSupplier, error) {
	if r.rollup == nil {
		return nil, nil
	}
	return []models.PurchaseSupplier{*r.rollup}, nil
}

func (r *stubPurchaseRepo) FindSupplierRollup(ctx context.Context, purchaseID, supplierID string) (*models.PurchaseSupplier, error) {
	if r.rollup == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.rollup, nil
}

func (r *stubPurchaseRepo) DeleteSupplierRollupWithTx(tx *gorm.DB, purchaseID, supplierID string) error {
	r.detached = supplierID
	return nil
}

func (r *stubPurchaseRepo) ReceiptsForPurchaseTx(tx *gorm.DB, purchaseID string) ([]models.PurchaseReceipt, error) {
	return r.receipts, nil
}

func (r *stubPurchaseRepo) UpdateTotalsWithTx(tx *gorm.DB, purchaseID string, grams, baseFees, discountAmount, netFees float64) error {
	return nil
}

type stubStoreLookup struct {
	store *models.Store
}

func (s *stubStoreLookup) FindByID(ctx context.Context, id string) (*models.Store, error) {
	if s.store == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.store, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubQueue struct {
	supplierMonths []types.Month
	monthJobs      []types.Month
}

func (q *stubQueue) EnqueueSupplierTx(tx *gorm.DB, supplierID string, month types.Month) error {
	q.supplierMonths = append(q.supplierMonths, month)
	return nil
}

func (q *stubQueue) EnqueueMonthTx(tx *gorm.DB, month types.Month) error {
	q.monthJobs = append(q.monthJobs, month)
	return nil
}

func basePurchase() *models.Purchase {
	return &models.Purchase{
		ID:      "pur-1",
		StoreID: "store-1",
		Date:    time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:  enums.PurchaseStatusPending,
	}
}

func newPurchaseService(t *testing.T, repo *stubPurchaseRepo, stores *stubStoreLookup, queue *stubQueue) Service {
	t.Helper()

	svc, err := NewService(repo, stores, stubTxRunner{}, queue)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceCreateRequiresExistingStore(t *testing.T) {
	svc := newPurchaseService(t, &stubPurchaseRepo{}, &stubStoreLookup{}, &stubQueue{})

	_, err := svc.Create(context.Background(), CreatePurchaseInput{
		StoreID: "missing",
		Date:    time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceCreateDefaultsStatus(t *testing.T) {
	stores := &stubStoreLookup{store: &models.Store{ID: "store-1"}}
	svc := newPurchaseService(t, &stubPurchaseRepo{}, stores, &stubQueue{})

	dto, err := svc.Create(context.Background(), CreatePurchaseInput{
		StoreID: "store-1",
		Date:    time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if dto.Status != enums.PurchaseStatusPending {
		t.Fatalf("expected pending status, got %v", dto.Status)
	}
	if dto.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestServiceCreateRejectsInvalidStatus(t *testing.T) {
	stores := &stubStoreLookup{store: &models.Store{ID: "store-1"}}
	svc := newPurchaseService(t, &stubPurchaseRepo{}, stores, &stubQueue{})

	_, err := svc.Create(context.Background(), CreatePurchaseInput{
		StoreID: "store-1",
		Date:    time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:  enums.PurchaseStatus("Unknown"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceDeleteEnqueuesMonthRecalc(t *testing.T) {
	repo := &stubPurchaseRepo{purchase: basePurchase()}
	queue := &stubQueue{}
	svc := newPurchaseService(t, repo, &stubStoreLookup{}, queue)

	if err := svc.Delete(context.Background(), "pur-1"); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}
	if repo.deleted != "pur-1" {
		t.Fatalf("expected purchase deleted, got %q", repo.deleted)
	}
	if len(queue.monthJobs) != 1 || queue.monthJobs[0] != "2025-03" {
		t.Fatalf("expected month recalc for 2025-03, got %v", queue.monthJobs)
	}
}

func TestServiceUpdateDateEnqueuesBothMonths(t *testing.T) {
	repo := &stubPurchaseRepo{purchase: basePurchase()}
	queue := &stubQueue{}
	svc := newPurchaseService(t, repo, &stubStoreLookup{}, queue)

	newDate := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	dto, err := svc.Update(context.Background(), "pur-1", UpdatePurchaseInput{Date: &newDate})
	if err != nil {
		t.Fatalf("update purchase: %v", err)
	}
	if !dto.Date.Equal(newDate) {
		t.Fatalf("expected new date, got %v", dto.Date)
	}
	if len(queue.monthJobs) != 2 {
		t.Fatalf("expected recalc for both months, got %v", queue.monthJobs)
	}
	if queue.monthJobs[0] != "2025-03" || queue.monthJobs[1] != "2025-04" {
		t.Fatalf("unexpected months: %v", queue.monthJobs)
	}
}

func TestServiceUpdateStatusOnlySkipsRecalc(t *testing.T) {
	repo := &stubPurchaseRepo{purchase: basePurchase()}
	queue := &stubQueue{}
	svc := newPurchaseService(t, repo, &stubStoreLookup{}, queue)

	paid := enums.PurchaseStatusPaid
	dto, err := svc.Update(context.Background(), "pur-1", UpdatePurchaseInput{Status: &paid})
	if err != nil {
		t.Fatalf("update purchase: %v", err)
	}
	if dto.Status != enums.PurchaseStatusPaid {
		t.Fatalf("expected paid status, got %v", dto.Status)
	}
	if len(queue.monthJobs) != 0 {
		t.Fatalf("expected no recalc, got %v", queue.monthJobs)
	}
}

func TestServiceRemoveSupplierEnqueuesRecalc(t *testing.T) {
	repo := &stubPurchaseRepo{
		purchase: basePurchase(),
		rollup:   &models.PurchaseSupplier{ID: "ps-1", PurchaseID: "pur-1", SupplierID: "sup-1"},
	}
	queue := &stubQueue{}
	svc := newPurchaseService(t, repo, &stubStoreLookup{}, queue)

	if err := svc.RemoveSupplier(context.Background(), "pur-1", "sup-1"); err != nil {
		t.Fatalf("remove supplier: %v", err)
	}
	if repo.detached != "sup-1" {
		t.Fatalf("expected supplier detached, got %q", repo.detached)
	}
	if len(queue.supplierMonths) != 1 || queue.supplierMonths[0] != "2025-03" {
		t.Fatalf("expected supplier recalc for 2025-03, got %v", queue.supplierMonths)
	}
}

func TestServiceRemoveSupplierNotOnPurchase(t *testing.T) {
	repo := &stubPurchaseRepo{purchase: basePurchase()}
	svc := newPurchaseService(t, repo, &stubStoreLookup{}, &stubQueue{})

	err := svc.RemoveSupplier(context.Background(), "pur-1", "sup-9")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
