package core_test

import (
	"context"
	"testing"

	"trade-ledger/internal/core"

	"github.com/shopspring/decimal"
)

func TestFinance_StatsScenario(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	for _, in := range []core.FinanceInput{
		{Type: core.FinanceInvested, Category: "capital", Amount: decimal.NewFromInt(1000)},
		{Type: core.FinanceExpense, Category: "rent", Amount: decimal.NewFromInt(300), Description: "Office rent"},
		{Type: core.FinanceTDS, Category: "tax", Amount: decimal.NewFromInt(100)},
		{Type: core.FinanceExpense, Category: "rent", Amount: decimal.NewFromInt(999), Status: core.FinancePending},
	} {
		if _, err := svc.finance.CreateRecord(ctx, in); err != nil {
			t.Fatalf("create record: %v", err)
		}
	}

	stats, err := svc.finance.Stats(ctx, core.FinanceFilter{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.Profit.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected profit 600, got %s", stats.Profit)
	}
	if !stats.TotalExpenses.Equal(decimal.NewFromInt(300)) || stats.Count != 4 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	rent, err := svc.finance.Stats(ctx, core.FinanceFilter{Category: "rent"})
	if err != nil {
		t.Fatalf("filtered stats: %v", err)
	}
	if rent.Count != 2 || !rent.Profit.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("unexpected filtered stats: %+v", rent)
	}

	page, err := svc.finance.ListRecords(ctx, core.FinanceFilter{Search: "office"}, core.PageRequest{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 || page.Items[0].Description != "Office rent" {
		t.Errorf("expected one search hit, got %d", page.Total)
	}
}

func TestFinance_UpdateStatusChangesStats(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	rec, err := svc.finance.CreateRecord(ctx, core.FinanceInput{Type: core.FinanceInvested, Category: "capital", Amount: decimal.NewFromInt(500)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Status != core.FinanceCompleted {
		t.Errorf("expected default status completed, got %s", rec.Status)
	}

	cancelled := core.FinanceCancelled
	if _, err := svc.finance.UpdateRecord(ctx, rec.ID, core.FinancePatch{Status: &cancelled}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	stats, err := svc.finance.Stats(ctx, core.FinanceFilter{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.TotalInvested.IsZero() {
		t.Errorf("cancelled record must not count, got %s", stats.TotalInvested)
	}
}
