package app

import (
	"time"

	"trade-ledger/internal/core"
)

// InvoiceView is an invoice with the single-link fields older clients read.
type InvoiceView struct {
	core.Invoice
	PurchaseID string `json:"purchaseId"`
	PONumber   string `json:"poNumber"`
}

func newInvoiceView(inv *core.Invoice) *InvoiceView {
	return &InvoiceView{
		Invoice:    *inv,
		PurchaseID: inv.PrimaryPurchaseID(),
		PONumber:   inv.PrimaryPONumber(),
	}
}

// InvoiceListResult is returned by ListInvoices. NextCursor is the createdAt
// of the last row on the page.
type InvoiceListResult struct {
	Items         []InvoiceView `json:"items"`
	NextPageToken *string       `json:"nextPageToken"`
	NextCursor    *time.Time    `json:"nextCursor"`
	Total         int           `json:"total"`
}

// PurchaseListResult is returned by ListPurchases. NextCursor is the createdAt
// of the last row on the page.
type PurchaseListResult struct {
	Items         []core.Purchase `json:"items"`
	NextPageToken *string         `json:"nextPageToken"`
	NextCursor    *time.Time      `json:"nextCursor"`
	Total         int             `json:"total"`
}

// HealthResult is returned by Health.
type HealthResult struct {
	OK        bool      `json:"ok"`
	Uptime    float64   `json:"uptime"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}
