package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MostafaHamedd/purchases-tracker-api/api/routes"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
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
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/metrics"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	svcs, err := buildServices(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	storeRepo := stores.NewRepository(gormDB)
	supplierRepo := suppliers.NewRepository(gormDB)
	purchaseRepo := purchases.NewRepository(gormDB)
	receiptRepo := receipts.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)
	queue := recalc.NewQueue(gormDB)

	aggregator, err := discount.NewMonthlyAggregator(gormDB)
	if err != nil {
		return routes.Services{}, err
	}
	engine, err := discount.NewEngine(supplierRepo, aggregator, logg)
	if err != nil {
		return routes.Services{}, err
	}

	storeSvc, err := stores.NewService(storeRepo)
	if err != nil {
		return routes.Services{}, err
	}
	supplierSvc, err := suppliers.NewService(supplierRepo, dbClient, queue)
	if err != nil {
		return routes.Services{}, err
	}
	purchaseSvc, err := purchases.NewService(purchaseRepo, storeRepo, dbClient, queue)
	if err != nil {
		return routes.Services{}, err
	}
	receiptSvc, err := receipts.NewService(receiptRepo, purchaseRepo, supplierRepo, engine, dbClient, queue, cfg.Fees.BaseFeePerGram)
	if err != nil {
		return routes.Services{}, err
	}
	paymentSvc, err := payments.NewService(paymentRepo, purchaseRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	monthlySvc, err := monthly.NewService(aggregator, supplierRepo, supplierRepo, engine, cfg.Fees.BaseFeePerGram)
	if err != nil {
		return routes.Services{}, err
	}
	recalcSvc, err := recalc.NewService(recalc.ServiceParams{
		DB:             dbClient,
		Repository:     recalc.NewRepository(gormDB),
		Aggregator:     aggregator,
		Logger:         logg,
		Metrics:        metrics.NewRecalcMetrics(prometheus.DefaultRegisterer),
		MaxConcurrency: cfg.Recalc.MaxConcurrency,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Stores:    storeSvc,
		Suppliers: supplierSvc,
		Purchases: purchaseSvc,
		Receipts:  receiptSvc,
		Payments:  paymentSvc,
		Monthly:   monthlySvc,
		Recalc:    recalcSvc,
	}, nil
}
