package core_test

import (
	"testing"

	"trade-ledger/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func rec(typ core.FinanceType, status core.FinanceStatus, amount int64) core.FinanceRecord {
	return core.FinanceRecord{Type: typ, Status: status, Amount: decimal.NewFromInt(amount)}
}

func TestFoldFinance_Profit(t *testing.T) {
	stats := core.FoldFinance([]core.FinanceRecord{
		rec(core.FinanceInvested, core.FinanceCompleted, 1000),
		rec(core.FinanceExpense, core.FinanceCompleted, 300),
		rec(core.FinanceTDS, core.FinanceCompleted, 100),
	})

	assert.True(t, decimal.NewFromInt(1000).Equal(stats.TotalInvested))
	assert.True(t, decimal.NewFromInt(300).Equal(stats.TotalExpenses))
	assert.True(t, decimal.NewFromInt(100).Equal(stats.TotalTDS))
	assert.True(t, decimal.NewFromInt(600).Equal(stats.Profit), "profit = %s", stats.Profit)
	assert.Equal(t, 3, stats.Count)
}

func TestFoldFinance_OnlyCompletedCounts(t *testing.T) {
	stats := core.FoldFinance([]core.FinanceRecord{
		rec(core.FinanceInvested, core.FinanceCompleted, 500),
		rec(core.FinanceInvested, core.FinancePending, 10000),
		rec(core.FinanceExpense, core.FinanceCancelled, 250),
		rec(core.FinanceExpense, core.FinanceCompleted, 120),
	})

	assert.True(t, decimal.NewFromInt(500).Equal(stats.TotalInvested))
	assert.True(t, decimal.NewFromInt(120).Equal(stats.TotalExpenses))
	assert.True(t, decimal.Zero.Equal(stats.TotalTDS))
	assert.True(t, decimal.NewFromInt(380).Equal(stats.Profit))
	assert.Equal(t, 4, stats.Count)
}

func TestFoldFinance_Empty(t *testing.T) {
	stats := core.FoldFinance(nil)
	assert.True(t, stats.Profit.IsZero())
	assert.Zero(t, stats.Count)
}

func TestFoldInvoices_Buckets(t *testing.T) {
	inv := func(status core.InvoiceStatus, total string) core.Invoice {
		return core.Invoice{Status: status, Total: decimal.RequireFromString(total)}
	}
	stats := core.FoldInvoices([]core.Invoice{
		inv(core.InvoicePaid, "100.50"),
		inv(core.InvoicePaid, "49.50"),
		inv(core.InvoiceDraft, "10"),
		inv(core.InvoiceSent, "20"),
		inv(core.InvoiceOverdue, "5.25"),
	})

	assert.Equal(t, 5, stats.TotalInvoices)
	assert.Equal(t, "185.25", stats.TotalRevenue.String())
	assert.Equal(t, 2, stats.PaidInvoices)
	assert.Equal(t, "150", stats.PaidRevenue.String())
	assert.Equal(t, 2, stats.PendingInvoices)
	assert.Equal(t, "30", stats.PendingRevenue.String())
	assert.Equal(t, 1, stats.OverdueInvoices)
	assert.Equal(t, "5.25", stats.OverdueRevenue.String())
}
