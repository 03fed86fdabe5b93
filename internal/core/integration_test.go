package core_test

import (
	"context"
	"os"
	"testing"

	"trade-ledger/internal/core"
	"trade-ledger/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// setupTestDB migrates the test database and empties every table. Tests that
// need it are skipped unless TEST_DATABASE_URL is set.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// A dedicated test database; every table is truncated.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	if err := db.MigrateUp(dbURL); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE invoice_purchases, invoice_items, invoices,
		               purchase_items, purchases, clients,
		               finance_records, settings, document_sequences CASCADE`)
	if err != nil {
		pool.Close()
		t.Fatalf("Failed to clean test database: %v", err)
	}

	return pool
}

type services struct {
	clients   core.ClientService
	purchases core.PurchaseService
	invoices  core.InvoiceService
	finance   core.FinanceService
	settings  core.SettingsService
}

func newServices(pool *pgxpool.Pool) services {
	seq := core.NewSequenceService(pool, zap.NewNop())
	return services{
		clients:   core.NewClientService(pool),
		purchases: core.NewPurchaseService(pool, seq),
		invoices:  core.NewInvoiceService(pool, seq),
		finance:   core.NewFinanceService(pool),
		settings:  core.NewSettingsService(pool),
	}
}

func countOf(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}
