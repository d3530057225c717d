package receipts

import (
	"context"
	"testing"
	"time"

	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	pkgerrors "github.com/MostafaHamedd/purchases-tracker-api/pkg/errors"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/types"
	"gorm.io/gorm"
)

type stubReceiptRepo struct {
	receipt    *models.PurchaseReceipt
	nextNumber int

	created         []*models.PurchaseReceipt
	deleted         string
	rollup          *models.PurchaseSupplier
	rollupUpdates   map[string]any
	purchaseUpdates map[string]any
}

func (r *stubReceiptRepo) FindByID(ctx context.Context, id string) (*models.PurchaseReceipt, error) {
	if r.receipt == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.receipt, nil
}

func (r *stubReceiptRepo) ListForPurchase(ctx context.Context, purchaseID string) ([]models.PurchaseReceipt, error) {
	receipts := make([]models.PurchaseReceipt, 0, len(r.created))
	for _, receipt := range r.created {
		receipts = append(receipts, *receipt)
	}
	return receipts, nil
}

func (r *stubReceiptRepo) NextReceiptNumberTx(tx *gorm.DB, purchaseID, supplierID string) (int, error) {
	if r.nextNumber == 0 {
		return 1, nil
	}
	return r.nextNumber, nil
}

func (r *stubReceiptRepo) CreateWithTx(tx *gorm.DB, receipt *models.PurchaseReceipt) error {
	r.created = append(r.created, receipt)
	return nil
}

func (r *stubReceiptRepo) DeleteWithTx(tx *gorm.DB, id string) error {
	r.deleted = id
	return nil
}

func (r *stubReceiptRepo) ReceiptsForPurchaseTx(tx *gorm.DB, purchaseID string) ([]models.PurchaseReceipt, error) {
	receipts := make([]models.PurchaseReceipt, 0, len(r.created))
	for _, receipt := range r.created {
		receipts = append(receipts, *receipt)
	}
	return receipts, nil
}

func (r *stubReceiptRepo) EnsureRollupTx(tx *gorm.DB, rollup *models.PurchaseSupplier) error {
	r.rollup = rollup
	return nil
}

func (r *stubReceiptRepo) UpdateRollupTx(tx *gorm.DB, purchaseID, supplierID string, updates map[string]any) error {
	r.rollupUpdates = updates
	return nil
}

func (r *stubReceiptRepo) UpdatePurchaseTotalsTx(tx *gorm.DB, purchaseID string, updates map[string]any) error {
	r.purchaseUpdates = updates
	return nil
}

type stubPurchaseLookup struct {
	purchase *models.Purchase
}

func (l *stubPurchaseLookup) FindByID(ctx context.Context, id string) (*models.Purchase, error) {
	if l.purchase == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return l.purchase, nil
}

type stubSupplierLookup struct {
	supplier *models.Supplier
}

func (l *stubSupplierLookup) FindByID(ctx context.Context, id string) (*models.Supplier, error) {
	if l.supplier == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return l.supplier, nil
}

type stubEngine struct {
	result discount.CalcResult
	inputs []discount.CalcInput
}

func (e *stubEngine) Calculate(ctx context.Context, in discount.CalcInput) discount.CalcResult {
	e.inputs = append(e.inputs, in)
	result := e.result
	result.TotalGrams21k = discount.To21kEquivalent(in.Grams18k, in.Grams21k)
	return result
}

type stubTxRunner struct{}

func (r *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubQueue struct {
	suppliers []string
	months    []types.Month
}

func (q *stubQueue) EnqueueSupplierTx(tx *gorm.DB, supplierID string, month types.Month) error {
	q.suppliers = append(q.suppliers, supplierID)
	q.months = append(q.months, month)
	return nil
}

func newTestService(t *testing.T, repo *stubReceiptRepo, purchase *models.Purchase, engine *stubEngine, queue *stubQueue) Service {
	t.Helper()
	svc, err := NewService(
		repo,
		&stubPurchaseLookup{purchase: purchase},
		&stubSupplierLookup{supplier: &models.Supplier{ID: "supplier-1", Name: "Aurum", Code: "AUR"}},
		engine,
		&stubTxRunner{},
		queue,
		5,
	)
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}
	return svc
}

func basePurchase() *models.Purchase {
	return &models.Purchase{
		ID:      "purchase-1",
		StoreID: "store-1",
		Date:    time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
		Status:  "Pending",
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	repo := &stubReceiptRepo{}
	purchases := &stubPurchaseLookup{}
	suppliers := &stubSupplierLookup{}
	engine := &stubEngine{}
	runner := &stubTxRunner{}
	queue := &stubQueue{}

	if _, err := NewService(nil, purchases, suppliers, engine, runner, queue, 5); err == nil {
		t.Fatal("expected error without repo")
	}
	if _, err := NewService(repo, purchases, suppliers, nil, runner, queue, 5); err == nil {
		t.Fatal("expected error without engine")
	}
	if _, err := NewService(repo, purchases, suppliers, engine, runner, queue, 0); err == nil {
		t.Fatal("expected error with non-positive fee per gram")
	}
}

func TestBulkCreateValidatesInputs(t *testing.T) {
	negative := -10.0
	cases := []struct {
		name   string
		inputs []CreateReceiptInput
	}{
		{name: "empty", inputs: nil},
		{name: "negative grams", inputs: []CreateReceiptInput{{Grams18k: -1, Grams21k: 50}}},
		{name: "zero grams", inputs: []CreateReceiptInput{{}}},
		{name: "negative base fees", inputs: []CreateReceiptInput{{Grams21k: 50, BaseFees: &negative}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, &stubReceiptRepo{}, basePurchase(), &stubEngine{}, &stubQueue{})
			_, err := svc.BulkCreate(context.Background(), "purchase-1", "supplier-1", tc.inputs)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestBulkCreatePurchaseNotFound(t *testing.T) {
	svc := newTestService(t, &stubReceiptRepo{}, nil, &stubEngine{}, &stubQueue{})
	_, err := svc.BulkCreate(context.Background(), "missing", "supplier-1", []CreateReceiptInput{{Grams21k: 100}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestBulkCreateSupplierNotFound(t *testing.T) {
	svc, err := NewService(
		&stubReceiptRepo{},
		&stubPurchaseLookup{purchase: basePurchase()},
		&stubSupplierLookup{},
		&stubEngine{},
		&stubTxRunner{},
		&stubQueue{},
		5,
	)
	if err != nil {
		t.Fatalf("unexpected error creating service: %v", err)
	}
	_, err = svc.BulkCreate(context.Background(), "purchase-1", "missing", []CreateReceiptInput{{Grams21k: 100}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestBulkCreatePricesAndNumbersReceipts(t *testing.T) {
	repo := &stubReceiptRepo{nextNumber: 3}
	engine := &stubEngine{result: discount.CalcResult{DiscountRate: 0.10}}
	queue := &stubQueue{}
	svc := newTestService(t, repo, basePurchase(), engine, queue)

	dtos, err := svc.BulkCreate(context.Background(), "purchase-1", "supplier-1", []CreateReceiptInput{
		{Grams18k: 100},
		{Grams21k: 200},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 receipts, got %d", len(dtos))
	}
	if dtos[0].ReceiptNumber != 3 || dtos[1].ReceiptNumber != 4 {
		t.Fatalf("expected sequential numbers 3 and 4, got %d and %d", dtos[0].ReceiptNumber, dtos[1].ReceiptNumber)
	}
	if dtos[0].ID == "" {
		t.Fatal("expected a generated receipt id")
	}

	// 100g of 18k is 85.7g of 21k equivalent, so default fees are 85.7 * 5.
	if got := engine.inputs[0].BaseFees; got != 428.5 {
		t.Fatalf("expected default base fees 428.5, got %v", got)
	}
	if got := engine.inputs[1].BaseFees; got != 1000 {
		t.Fatalf("expected default base fees 1000, got %v", got)
	}
	if engine.inputs[0].Month != types.Month("2025-03") {
		t.Fatalf("expected month 2025-03, got %s", engine.inputs[0].Month)
	}

	if repo.rollup == nil || repo.rollup.SupplierID != "supplier-1" {
		t.Fatal("expected the supplier rollup row to be ensured")
	}
	if repo.purchaseUpdates == nil || repo.rollupUpdates == nil {
		t.Fatal("expected purchase and rollup totals to be re-summed")
	}
	if len(queue.suppliers) != 1 || queue.suppliers[0] != "supplier-1" || queue.months[0] != types.Month("2025-03") {
		t.Fatalf("expected one recalc enqueue for supplier-1 2025-03, got %v %v", queue.suppliers, queue.months)
	}
}

func TestBulkCreateHonorsExplicitBaseFees(t *testing.T) {
	engine := &stubEngine{}
	svc := newTestService(t, &stubReceiptRepo{}, basePurchase(), engine, &stubQueue{})

	fees := 300.0
	if _, err := svc.BulkCreate(context.Background(), "purchase-1", "supplier-1", []CreateReceiptInput{
		{Grams21k: 50, BaseFees: &fees},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := engine.inputs[0].BaseFees; got != 300 {
		t.Fatalf("expected explicit base fees 300, got %v", got)
	}
}

func TestBulkCreateMarksDegradedReceiptsProvisional(t *testing.T) {
	engine := &stubEngine{result: discount.CalcResult{Degraded: true}}
	svc := newTestService(t, &stubReceiptRepo{}, basePurchase(), engine, &stubQueue{})

	dtos, err := svc.BulkCreate(context.Background(), "purchase-1", "supplier-1", []CreateReceiptInput{
		{Grams21k: 50},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dtos[0].Provisional {
		t.Fatal("expected a degraded receipt to be marked provisional")
	}
}

func TestDeleteResumsAndEnqueuesRecalc(t *testing.T) {
	repo := &stubReceiptRepo{
		receipt: &models.PurchaseReceipt{
			ID:         "receipt-1",
			PurchaseID: "purchase-1",
			SupplierID: "supplier-1",
			Grams21k:   100,
		},
	}
	queue := &stubQueue{}
	svc := newTestService(t, repo, basePurchase(), &stubEngine{}, queue)

	if err := svc.Delete(context.Background(), "receipt-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deleted != "receipt-1" {
		t.Fatalf("expected receipt-1 deleted, got %q", repo.deleted)
	}
	if repo.purchaseUpdates == nil || repo.rollupUpdates == nil {
		t.Fatal("expected totals to be re-summed after delete")
	}
	if len(queue.suppliers) != 1 || queue.months[0] != types.Month("2025-03") {
		t.Fatalf("expected recalc enqueue for 2025-03, got %v", queue.months)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc := newTestService(t, &stubReceiptRepo{}, basePurchase(), &stubEngine{}, &stubQueue{})
	err := svc.Delete(context.Background(), "missing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
