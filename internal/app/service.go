package app

import (
	"context"

	"trade-ledger/internal/core"

	"github.com/google/uuid"
)

// ApplicationService is the single interface the adapters (Web, CLI) call.
// It decouples presentation from business logic. Implementations must contain
// no display logic of any kind.
type ApplicationService interface {
	// CreateClient validates and stores a new client.
	CreateClient(ctx context.Context, req ClientRequest) (*core.Client, error)

	GetClient(ctx context.Context, id uuid.UUID) (*core.Client, error)

	// UpdateClient applies only the fields present in req.
	UpdateClient(ctx context.Context, id uuid.UUID, req ClientRequest) (*core.Client, error)

	DeleteClient(ctx context.Context, id uuid.UUID) error

	ListClients(ctx context.Context, f core.ClientFilter, page core.PageRequest) (*core.Page[core.Client], error)

	// CreatePurchase stores a purchase and its items atomically, numbering it when
	// no PO number is given.
	CreatePurchase(ctx context.Context, req PurchaseRequest) (*core.Purchase, error)

	GetPurchase(ctx context.Context, id uuid.UUID) (*core.Purchase, error)

	// GetPurchasesByIDs returns the purchases that exist among ids. Malformed ids
	// are a validation error.
	GetPurchasesByIDs(ctx context.Context, ids []string) ([]core.Purchase, error)

	// UpdatePurchase applies the present fields; a present items list replaces all items.
	UpdatePurchase(ctx context.Context, id uuid.UUID, req PurchaseRequest) (*core.Purchase, error)

	DeletePurchase(ctx context.Context, id uuid.UUID) error

	ListPurchases(ctx context.Context, f core.PurchaseFilter, page core.PageRequest) (*PurchaseListResult, error)

	// NextPONumber previews the next generated PO number.
	NextPONumber(ctx context.Context) (string, error)

	// CreateInvoice stores an invoice with its items and purchase links atomically.
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceView, error)

	GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceView, error)

	// UpdateInvoice applies the present fields; present items or purchase links
	// replace the stored collections.
	UpdateInvoice(ctx context.Context, id uuid.UUID, req InvoiceRequest) (*InvoiceView, error)

	// UpdateInvoiceStatus changes only the status. Items and links are untouched.
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*InvoiceView, error)

	DeleteInvoice(ctx context.Context, id uuid.UUID) error

	ListInvoices(ctx context.Context, f core.InvoiceFilter, page core.PageRequest) (*InvoiceListResult, error)

	// InvoiceStats folds invoices created within the requested window.
	InvoiceStats(ctx context.Context, req InvoiceStatsRequest) (*core.InvoiceStats, error)

	// NextInvoiceNumber previews the next generated invoice number.
	NextInvoiceNumber(ctx context.Context) (string, error)

	CreateFinanceRecord(ctx context.Context, req FinanceRequest) (*core.FinanceRecord, error)
	GetFinanceRecord(ctx context.Context, id uuid.UUID) (*core.FinanceRecord, error)
	UpdateFinanceRecord(ctx context.Context, id uuid.UUID, req FinanceRequest) (*core.FinanceRecord, error)
	DeleteFinanceRecord(ctx context.Context, id uuid.UUID) error
	ListFinanceRecords(ctx context.Context, f core.FinanceFilter, page core.PageRequest) (*core.Page[core.FinanceRecord], error)

	// FinanceStats sums completed records matching f.
	FinanceStats(ctx context.Context, f core.FinanceFilter) (*core.FinanceStats, error)

	GetSettings(ctx context.Context) (*core.Settings, error)
	PatchSettings(ctx context.Context, body map[string]any) (*core.Settings, error)
	ReplaceSettings(ctx context.Context, body map[string]any) (*core.Settings, error)
	SettingsHistory(ctx context.Context, limit int) ([]core.Settings, error)

	// Health pings the database. It never returns an error; a failed ping is
	// reported in the result.
	Health(ctx context.Context) *HealthResult
}
