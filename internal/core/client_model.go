package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

func (s ClientStatus) Valid() bool {
	return s == ClientActive || s == ClientInactive
}

// Client is a customer that purchases and invoices are raised against.
type Client struct {
	ID              uuid.UUID    `json:"id"`
	Company         string       `json:"company"`
	ContactPerson   string       `json:"contactPerson"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	BillingAddress  Address      `json:"billingAddress"`
	ShippingAddress Address      `json:"shippingAddress"`
	GSTNumber       string       `json:"gstNumber"`
	MSMENumber      string       `json:"msmeNumber"`
	PANNumber       string       `json:"panNumber"`
	Status          ClientStatus `json:"status"`
	BaseCurrency    string       `json:"baseCurrency"`
	Notes           string       `json:"notes"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// ClientInput holds the fields of a new client. Company is required.
type ClientInput struct {
	Company         string
	ContactPerson   string
	Email           string
	Phone           string
	BillingAddress  Address
	ShippingAddress Address
	GSTNumber       string
	MSMENumber      string
	PANNumber       string
	Status          ClientStatus
	BaseCurrency    string
	Notes           string
}

// ClientPatch is a partial update; nil fields are left untouched.
type ClientPatch struct {
	Company         *string
	ContactPerson   *string
	Email           *string
	Phone           *string
	BillingAddress  *AddressPatch
	ShippingAddress *AddressPatch
	GSTNumber       *string
	MSMENumber      *string
	PANNumber       *string
	Status          *ClientStatus
	BaseCurrency    *string
	Notes           *string
}

type ClientFilter struct {
	Status ClientStatus
	Search string
}

// ClientService manages client records.
type ClientService interface {
	CreateClient(ctx context.Context, in ClientInput) (*Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, patch ClientPatch) (*Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	ListClients(ctx context.Context, f ClientFilter, page PageRequest) (*Page[Client], error)
}
