// verify-db applies pending migrations and then checks that every table the
// services depend on exists. It exits non-zero on the first failure.
//
// Usage: go run ./cmd/verify-db
package main

import (
	"context"
	"fmt"
	"os"

	"trade-ledger/internal/config"
	"trade-ledger/internal/db"
	"trade-ledger/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var requiredTables = []string{
	"clients",
	"purchases",
	"purchase_items",
	"invoices",
	"invoice_items",
	"invoice_purchases",
	"finance_records",
	"settings",
	"document_sequences",
}

func main() {
	cfg := config.Load()
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, ServiceName: "verify-db"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config", zap.Error(err))
	}

	if err := db.MigrateUp(cfg.Database.URL); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	version, dirty, err := db.MigrationVersion(cfg.Database.URL)
	if err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	if dirty {
		log.Fatal("schema is dirty, fix the failed migration and force its version", zap.Uint("version", version))
	}
	log.Info("migrations applied", zap.Uint("version", version))

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	missing, err := missingTables(ctx, pool)
	if err != nil {
		log.Fatal("inspect schema", zap.Error(err))
	}
	if len(missing) > 0 {
		log.Fatal("required tables missing", zap.Strings("tables", missing))
	}
	log.Info("schema verified", zap.Int("tables", len(requiredTables)))
}

func missingTables(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	var missing []string
	for _, table := range requiredTables {
		var exists bool
		if err := pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
