package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MostafaHamedd/purchases-tracker-api/api/controllers"
	"github.com/MostafaHamedd/purchases-tracker-api/api/middleware"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/monthly"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/payments"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/purchases"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/recalc"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/receipts"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/stores"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/suppliers"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/config"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/redis"
)

type Services struct {
	Stores    stores.Service
	Suppliers suppliers.Service
	Purchases purchases.Service
	Receipts  receipts.Service
	Payments  payments.Service
	Monthly   monthly.Service
	Recalc    recalc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoreList(svcs.Stores, logg))
			r.Post("/", controllers.StoreCreate(svcs.Stores, logg))
			r.Get("/{storeID}", controllers.StoreGet(svcs.Stores, logg))
			r.Put("/{storeID}", controllers.StoreUpdate(svcs.Stores, logg))
			r.Delete("/{storeID}", controllers.StoreDelete(svcs.Stores, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.SupplierList(svcs.Suppliers, logg))
			r.Post("/", controllers.SupplierCreate(svcs.Suppliers, logg))
			r.Get("/{supplierID}", controllers.SupplierGet(svcs.Suppliers, logg))
			r.Put("/{supplierID}", controllers.SupplierUpdate(svcs.Suppliers, logg))
			r.Delete("/{supplierID}", controllers.SupplierDelete(svcs.Suppliers, logg))

			r.Route("/{supplierID}/discount-tiers", func(r chi.Router) {
				r.Get("/", controllers.TierList(svcs.Suppliers, logg))
				r.Post("/", controllers.TierCreate(svcs.Suppliers, logg))
				r.Put("/{tierID}", controllers.TierUpdate(svcs.Suppliers, logg))
				r.Delete("/{tierID}", controllers.TierDelete(svcs.Suppliers, logg))
			})

			r.Route("/{supplierID}/monthly-total", func(r chi.Router) {
				r.Get("/", controllers.MonthlyTotal(svcs.Monthly, logg))
				r.Get("/history", controllers.MonthlyHistory(svcs.Monthly, logg))
				r.Post("/preview", controllers.DiscountPreview(svcs.Monthly, logg))
			})
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Get("/", controllers.PurchaseList(svcs.Purchases, logg))
			r.Post("/", controllers.PurchaseCreate(svcs.Purchases, logg))
			r.Get("/{purchaseID}", controllers.PurchaseGet(svcs.Purchases, logg))
			r.Put("/{purchaseID}", controllers.PurchaseUpdate(svcs.Purchases, logg))
			r.Delete("/{purchaseID}", controllers.PurchaseDelete(svcs.Purchases, logg))

			r.Route("/{purchaseID}/suppliers", func(r chi.Router) {
				r.Get("/", controllers.PurchaseSupplierList(svcs.Purchases, logg))
				r.Delete("/{supplierID}", controllers.PurchaseSupplierRemove(svcs.Purchases, logg))
			})

			r.Route("/{purchaseID}/receipts", func(r chi.Router) {
				r.Get("/", controllers.ReceiptList(svcs.Receipts, logg))
				r.Post("/", controllers.ReceiptBulkCreate(svcs.Receipts, logg))
			})

			r.Route("/{purchaseID}/payments", func(r chi.Router) {
				r.Get("/", controllers.PaymentList(svcs.Payments, logg))
				r.Post("/", controllers.PaymentCreate(svcs.Payments, logg))
				r.Get("/settlement", controllers.PaymentSettlement(svcs.Payments, logg))
			})
		})

		r.Delete("/receipts/{receiptID}", controllers.ReceiptDelete(svcs.Receipts, logg))
		r.Put("/payments/{paymentID}", controllers.PaymentUpdate(svcs.Payments, logg))
		r.Delete("/payments/{paymentID}", controllers.PaymentDelete(svcs.Payments, logg))
	})

	r.Route("/api/admin/v1/recalc", func(r chi.Router) {
		r.Post("/suppliers/{supplierID}", controllers.RecalcSupplier(svcs.Recalc, logg))
		r.Post("/months/{month}", controllers.RecalcMonth(svcs.Recalc, logg))
		r.Post("/purchases/{purchaseID}", controllers.RecalcPurchase(svcs.Recalc, logg))
	})

	return r
}
