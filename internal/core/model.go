package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency applies to every document and item that does not name one.
const DefaultCurrency = "INR"

// dateLayout is the wire and storage format of calendar dates.
const dateLayout = "2006-01-02"

// Address is a structured postal address, stored flattened on the owning row.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// AddressPatch updates only the address parts that are present.
type AddressPatch struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
}

// apply writes the present parts onto columns named <prefix>_street, <prefix>_city, ...
func (p *AddressPatch) apply(b *UpdateBuilder, prefix string) {
	if p == nil {
		return
	}
	SetIf(b, prefix+"_street", p.Street)
	SetIf(b, prefix+"_city", p.City)
	SetIf(b, prefix+"_state", p.State)
	SetIf(b, prefix+"_postal_code", p.PostalCode)
	SetIf(b, prefix+"_country", p.Country)
}

// LineItem is a document line. Purchases and invoices share the shape.
type LineItem struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Model     string          `json:"model"`
	Supplier  string          `json:"supplier"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	UOM       string          `json:"uom"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ItemInput is one line supplied on create or on a full item replace.
type ItemInput struct {
	Name      string
	Model     string
	Supplier  string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	UOM       string
	Currency  string
	// Total is stored verbatim when present, otherwise quantity x unit price.
	Total *decimal.Decimal

	// Invoice lines only: the originating purchase and its PO number.
	PurchaseID *uuid.UUID
	PONumber   string
}

// LineTotal is the caller's total or quantity x unit price.
func (in ItemInput) LineTotal() decimal.Decimal {
	if in.Total != nil {
		return *in.Total
	}
	return in.Quantity.Mul(in.UnitPrice)
}

// CurrencyOr falls back to the parent document's base currency.
func (in ItemInput) CurrencyOr(parent string) string {
	if c := strings.TrimSpace(in.Currency); c != "" {
		return c
	}
	if parent != "" {
		return parent
	}
	return DefaultCurrency
}

// today returns the calendar date of now in storage format.
func today(now time.Time) string {
	return now.Format(dateLayout)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// nullIfEmpty stores an absent optional text column as NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
