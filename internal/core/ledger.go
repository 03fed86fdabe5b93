package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinanceStats are the named sums of a filtered finance snapshot.
type FinanceStats struct {
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	TotalTDS      decimal.Decimal `json:"totalTDS"`
	// Profit is TotalInvested - TotalExpenses - TotalTDS.
	Profit decimal.Decimal `json:"profit"`
	// Count is the number of records in the snapshot, completed or not.
	Count int `json:"count"`
}

// FoldFinance sums completed records by type. Pending and cancelled records
// are counted but contribute nothing.
func FoldFinance(records []FinanceRecord) FinanceStats {
	var st FinanceStats
	st.Count = len(records)
	for _, r := range records {
		if r.Status != FinanceCompleted {
			continue
		}
		switch r.Type {
		case FinanceInvested:
			st.TotalInvested = st.TotalInvested.Add(r.Amount)
		case FinanceExpense:
			st.TotalExpenses = st.TotalExpenses.Add(r.Amount)
		case FinanceTDS:
			st.TotalTDS = st.TotalTDS.Add(r.Amount)
		}
	}
	st.Profit = st.TotalInvested.Sub(st.TotalExpenses).Sub(st.TotalTDS)
	return st
}

// InvoiceStats are revenue buckets over a filtered invoice snapshot.
type InvoiceStats struct {
	TotalInvoices   int             `json:"totalInvoices"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	PaidInvoices    int             `json:"paidInvoices"`
	PaidRevenue     decimal.Decimal `json:"paidRevenue"`
	PendingInvoices int             `json:"pendingInvoices"`
	PendingRevenue  decimal.Decimal `json:"pendingRevenue"`
	OverdueInvoices int             `json:"overdueInvoices"`
	OverdueRevenue  decimal.Decimal `json:"overdueRevenue"`
	From            *time.Time      `json:"from,omitempty"`
	To              *time.Time      `json:"to,omitempty"`
}

// FoldInvoices partitions invoices by status and sums their totals.
// Draft and sent invoices both count as pending.
func FoldInvoices(invoices []Invoice) InvoiceStats {
	var st InvoiceStats
	for _, inv := range invoices {
		st.TotalInvoices++
		st.TotalRevenue = st.TotalRevenue.Add(inv.Total)
		switch inv.Status {
		case InvoicePaid:
			st.PaidInvoices++
			st.PaidRevenue = st.PaidRevenue.Add(inv.Total)
		case InvoiceDraft, InvoiceSent:
			st.PendingInvoices++
			st.PendingRevenue = st.PendingRevenue.Add(inv.Total)
		case InvoiceOverdue:
			st.OverdueInvoices++
			st.OverdueRevenue = st.OverdueRevenue.Add(inv.Total)
		}
	}
	return st
}
