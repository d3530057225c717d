package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/MostafaHamedd/purchases-tracker-api/pkg/config"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/db/models"
	"github.com/MostafaHamedd/purchases-tracker-api/pkg/logger"
)

// migrate applies the schema with GORM AutoMigrate. The table set is small
// and append-only enough that versioned migration files have not been needed.
func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
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

	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "running schema migration")

	err = dbClient.DB().AutoMigrate(
		&models.Store{},
		&models.Supplier{},
		&models.DiscountTier{},
		&models.Purchase{},
		&models.PurchaseSupplier{},
		&models.PurchaseReceipt{},
		&models.Payment{},
		&models.RecalcJob{},
	)
	if err != nil {
		logg.Error(ctx, "schema migration failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "schema migration complete")
}
