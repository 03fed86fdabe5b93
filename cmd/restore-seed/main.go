// restore-seed is a one-shot tool that wipes the document and finance tables
// and loads the demo data set. Settings are left alone.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"fmt"
	"os"

	"trade-ledger/internal/adapters/cli"
	"trade-ledger/internal/app"
	"trade-ledger/internal/config"
	"trade-ledger/internal/db"
	"trade-ledger/internal/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, ServiceName: "restore-seed"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("connect", zap.Error(err))
	}
	defer pool.Close()

	log.Info("clearing documents, finance records and sequences")
	err = db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			TRUNCATE TABLE invoice_purchases, invoice_items, invoices,
			               purchase_items, purchases, clients,
			               finance_records, document_sequences`)
		return err
	})
	if err != nil {
		log.Fatal("clear tables", zap.Error(err))
	}

	sum, err := cli.SeedDemoData(ctx, app.NewDefaultAppService(pool, log))
	if err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	log.Info("seed restored",
		zap.Int("clients", sum.Clients),
		zap.Strings("purchases", sum.Purchases),
		zap.Strings("invoices", sum.Invoices),
		zap.Int("finance_records", sum.Finance),
	)
}
