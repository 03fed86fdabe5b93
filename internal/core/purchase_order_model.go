package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseApproved  PurchaseStatus = "approved"
	PurchaseRejected  PurchaseStatus = "rejected"
	PurchaseCompleted PurchaseStatus = "completed"
)

func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchasePending, PurchaseApproved, PurchaseRejected, PurchaseCompleted:
		return true
	}
	return false
}

// Purchase is a purchase order header with its items.
type Purchase struct {
	ID           uuid.UUID       `json:"id"`
	ClientID     uuid.UUID       `json:"clientId"`
	PONumber     string          `json:"poNumber"`
	Date         string          `json:"date"` // YYYY-MM-DD
	Status       PurchaseStatus  `json:"status"`
	Items        []LineItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	BaseCurrency string          `json:"baseCurrency"`
	Notes        string          `json:"notes"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// PurchaseInput holds a new purchase. Subtotal, tax and total are stored as given.
type PurchaseInput struct {
	ClientID     uuid.UUID
	PONumber     string // generated when empty
	Date         string // defaults to today
	Status       PurchaseStatus
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	BaseCurrency string
	Notes        string
	Items        []ItemInput
}

// PurchasePatch is a partial update. A non-nil Items replaces every existing item,
// so a pointer to an empty slice removes them all.
type PurchasePatch struct {
	ClientID     *uuid.UUID
	PONumber     *string
	Date         *string
	Status       *PurchaseStatus
	Subtotal     *decimal.Decimal
	Tax          *decimal.Decimal
	Total        *decimal.Decimal
	BaseCurrency *string
	Notes        *string
	Items        *[]ItemInput
}

type PurchaseFilter struct {
	Status   PurchaseStatus
	ClientID *uuid.UUID
	POPrefix string
}

// PurchaseService owns the transactional write protocol for purchases and their items.
type PurchaseService interface {
	// CreatePurchase inserts the header and items atomically.
	CreatePurchase(ctx context.Context, in PurchaseInput) (*Purchase, error)

	// GetPurchase returns the purchase with items ordered by creation.
	GetPurchase(ctx context.Context, id uuid.UUID) (*Purchase, error)

	// GetPurchasesByIDs returns the purchases that exist among ids, newest first.
	GetPurchasesByIDs(ctx context.Context, ids []uuid.UUID) ([]Purchase, error)

	UpdatePurchase(ctx context.Context, id uuid.UUID, patch PurchasePatch) (*Purchase, error)

	// DeletePurchase removes the purchase; items and invoice links go with it.
	DeletePurchase(ctx context.Context, id uuid.UUID) error

	ListPurchases(ctx context.Context, f PurchaseFilter, page PageRequest) (*Page[Purchase], error)

	// NextPONumber previews the number the next unnumbered purchase would get.
	NextPONumber(ctx context.Context) (string, error)
}
