package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MostafaHamedd/purchases-tracker-api/internal/discount"
	"github.com/MostafaHamedd/purchases-tracker-api/internal/recalc"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/config"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/metrics"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "recalc-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "recalc-worker",
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

	aggregator, err := discount.NewMonthlyAggregator(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to build aggregator", err)
		os.Exit(1)
	}

	runner, err := recalc.NewService(recalc.ServiceParams{
		DB:             dbClient,
		Repository:     recalc.NewRepository(dbClient.DB()),
		Aggregator:     aggregator,
		Logger:         logg,
		Metrics:        metrics.NewRecalcMetrics(prometheus.DefaultRegisterer),
		MaxConcurrency: cfg.Recalc.MaxConcurrency,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recalc service", err)
		os.Exit(1)
	}

	lock, err := recalc.NewRedisLock(redisClient, redisClient.LockKey("recalc-sweep"), cfg.Recalc.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sweep lock", err)
		os.Exit(1)
	}

	sweeper, err := recalc.NewSweeper(recalc.SweeperParams{
		Config: cfg.Recalc,
		Logger: logg,
		DB:     dbClient,
		Queue:  recalc.NewQueue(dbClient.DB()),
		Runner: runner,
		Lock:   lock,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sweeper", err)
		os.Exit(1)
	}

	go serveMetrics(cfg, logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting recalc worker")

	if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "recalc worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "recalc worker shutting down gracefully")
}

func serveMetrics(cfg *config.Config, logg *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := ":" + cfg.App.Port
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logg.Error(context.Background(), "metrics server stopped", err)
	}
}
