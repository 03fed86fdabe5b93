package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "draft"
	InvoiceSent    InvoiceStatus = "sent"
	InvoicePaid    InvoiceStatus = "paid"
	InvoiceOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue:
		return true
	}
	return false
}

// DefaultPaymentTerms is stored when an invoice is created without terms.
const DefaultPaymentTerms = "30"

// InvoiceItem is an invoice line with an optional back-reference to its purchase.
type InvoiceItem struct {
	LineItem
	PurchaseID string `json:"purchaseId"`
	PONumber   string `json:"poNumber"`
}

// Invoice is the fully joined invoice: header, items and linked purchase ids.
type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	ClientID      uuid.UUID       `json:"clientId"`
	PurchaseIDs   []uuid.UUID     `json:"purchaseIds"`
	Date          string          `json:"date"`    // YYYY-MM-DD
	DueDate       string          `json:"dueDate"` // YYYY-MM-DD
	Status        InvoiceStatus   `json:"status"`
	Items         []InvoiceItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentTerms  string          `json:"paymentTerms"`
	Notes         string          `json:"notes"`
	BaseCurrency  string          `json:"baseCurrency"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PrimaryPurchaseID is the first linked purchase, or "" when there is none.
func (inv *Invoice) PrimaryPurchaseID() string {
	if len(inv.PurchaseIDs) == 0 {
		return ""
	}
	return inv.PurchaseIDs[0].String()
}

// PrimaryPONumber is the PO number of the first item, or "".
func (inv *Invoice) PrimaryPONumber() string {
	if len(inv.Items) == 0 {
		return ""
	}
	return inv.Items[0].PONumber
}

// InvoiceInput holds a new invoice. Subtotal, tax and total are stored as given.
type InvoiceInput struct {
	InvoiceNumber string // generated when blank
	ClientID      uuid.UUID
	PurchaseIDs   []uuid.UUID
	Date          string // defaults to today
	DueDate       string // defaults to Date
	Status        InvoiceStatus
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	PaymentTerms  string
	Notes         string
	BaseCurrency  string
	Items         []ItemInput
}

// InvoicePatch is a partial update. Non-nil Items or PurchaseIDs replace the
// whole collection.
type InvoicePatch struct {
	InvoiceNumber *string
	ClientID      *uuid.UUID
	Date          *string
	DueDate       *string
	Status        *InvoiceStatus
	Subtotal      *decimal.Decimal
	Tax           *decimal.Decimal
	Total         *decimal.Decimal
	PaymentTerms  *string
	Notes         *string
	BaseCurrency  *string
	Items         *[]ItemInput
	PurchaseIDs   *[]uuid.UUID
}

// InvoiceFilter is shared by the list and the stats fold.
type InvoiceFilter struct {
	Status     InvoiceStatus
	ClientID   *uuid.UUID
	PurchaseID *uuid.UUID
	// DateFrom and DateTo bound the document date (inclusive, YYYY-MM-DD).
	DateFrom string
	DateTo   string
	// CreatedFrom and CreatedTo bound created_at (inclusive).
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// InvoiceService owns the transactional write protocol for invoices, their items
// and their purchase links.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, in InvoiceInput) (*Invoice, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	UpdateInvoice(ctx context.Context, id uuid.UUID, patch InvoicePatch) (*Invoice, error)

	// UpdateInvoiceStatus changes only the status, applying the paid_at rule.
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status InvoiceStatus) (*Invoice, error)

	DeleteInvoice(ctx context.Context, id uuid.UUID) error
	ListInvoices(ctx context.Context, f InvoiceFilter, page PageRequest) (*Page[Invoice], error)

	// InvoiceStats folds every invoice matching f into revenue buckets.
	InvoiceStats(ctx context.Context, f InvoiceFilter) (*InvoiceStats, error)

	// NextInvoiceNumber previews the number the next unnumbered invoice would get.
	NextInvoiceNumber(ctx context.Context) (string, error)
}
