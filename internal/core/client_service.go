package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `
	id, company, COALESCE(contact_person, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(billing_address_street, ''), COALESCE(billing_address_city, ''), COALESCE(billing_address_state, ''),
	COALESCE(billing_address_postal_code, ''), COALESCE(billing_address_country, ''),
	COALESCE(shipping_address_street, ''), COALESCE(shipping_address_city, ''), COALESCE(shipping_address_state, ''),
	COALESCE(shipping_address_postal_code, ''), COALESCE(shipping_address_country, ''),
	COALESCE(gst_number, ''), COALESCE(msme_number, ''), COALESCE(pan_number, ''),
	status, base_currency, COALESCE(notes, ''), created_at, updated_at`

var clientSorts = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"company":    "company",
}

type clientService struct {
	pool *pgxpool.Pool
}

// NewClientService constructs a ClientService backed by PostgreSQL.
func NewClientService(pool *pgxpool.Pool) ClientService {
	return &clientService{pool: pool}
}

func (s *clientService) CreateClient(ctx context.Context, in ClientInput) (*Client, error) {
	status := in.Status
	if status == "" {
		status = ClientActive
	}

	var id uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO clients (company, contact_person, email, phone,
		                     billing_address_street, billing_address_city, billing_address_state,
		                     billing_address_postal_code, billing_address_country,
		                     shipping_address_street, shipping_address_city, shipping_address_state,
		                     shipping_address_postal_code, shipping_address_country,
		                     gst_number, msme_number, pan_number, status, base_currency, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id`,
		strings.TrimSpace(in.Company), nullIfEmpty(in.ContactPerson), nullIfEmpty(in.Email), nullIfEmpty(in.Phone),
		nullIfEmpty(in.BillingAddress.Street), nullIfEmpty(in.BillingAddress.City), nullIfEmpty(in.BillingAddress.State),
		nullIfEmpty(in.BillingAddress.PostalCode), nullIfEmpty(in.BillingAddress.Country),
		nullIfEmpty(in.ShippingAddress.Street), nullIfEmpty(in.ShippingAddress.City), nullIfEmpty(in.ShippingAddress.State),
		nullIfEmpty(in.ShippingAddress.PostalCode), nullIfEmpty(in.ShippingAddress.Country),
		nullIfEmpty(in.GSTNumber), nullIfEmpty(in.MSMENumber), nullIfEmpty(in.PANNumber),
		string(status), orDefault(in.BaseCurrency, DefaultCurrency), nullIfEmpty(in.Notes),
	).Scan(&id)
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("insert client: %w", err))
	}
	documentsWritten.WithLabelValues("client", "create").Inc()
	return s.GetClient(ctx, id)
}

func (s *clientService) GetClient(ctx context.Context, id uuid.UUID) (*Client, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get client %s: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanClient)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("client", id)
		}
		return nil, fmt.Errorf("get client %s: %w", id, err)
	}
	return &c, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id uuid.UUID, patch ClientPatch) (*Client, error) {
	b := NewUpdate("clients")
	SetIf(b, "company", patch.Company)
	SetIf(b, "contact_person", patch.ContactPerson)
	SetIf(b, "email", patch.Email)
	SetIf(b, "phone", patch.Phone)
	patch.BillingAddress.apply(b, "billing_address")
	patch.ShippingAddress.apply(b, "shipping_address")
	SetIf(b, "gst_number", patch.GSTNumber)
	SetIf(b, "msme_number", patch.MSMENumber)
	SetIf(b, "pan_number", patch.PANNumber)
	SetIf(b, "status", patch.Status)
	SetIf(b, "base_currency", patch.BaseCurrency)
	SetIf(b, "notes", patch.Notes)

	sql, args := b.Build("id", id)
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("update client %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound("client", id)
	}
	documentsWritten.WithLabelValues("client", "update").Inc()
	return s.GetClient(ctx, id)
}

func (s *clientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return ClassifyDBError(fmt.Errorf("delete client %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return notFound("client", id)
	}
	documentsWritten.WithLabelValues("client", "delete").Inc()
	return nil
}

func (s *clientService) ListClients(ctx context.Context, f ClientFilter, page PageRequest) (*Page[Client], error) {
	offset, limit := page.window(ClientLimits)

	pred := &Predicate{}
	pred.Eq("status", string(f.Status))
	pred.Search(f.Search, "company", "contact_person", "email")

	total, err := countRows(ctx, s.pool, "clients", pred)
	if err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}

	limitSQL, args := pageClause(pred, limit, offset)
	rows, err := s.pool.Query(ctx,
		"SELECT "+clientColumns+" FROM clients"+pred.SQL()+orderBy("", page.Sort, page.Order, clientSorts)+limitSQL,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients, err := pgx.CollectRows(rows, scanClient)
	if err != nil {
		return nil, fmt.Errorf("scan clients: %w", err)
	}
	return NewPage(clients, offset, limit, total), nil
}

func scanClient(row pgx.CollectableRow) (Client, error) {
	var c Client
	var status string
	err := row.Scan(
		&c.ID, &c.Company, &c.ContactPerson, &c.Email, &c.Phone,
		&c.BillingAddress.Street, &c.BillingAddress.City, &c.BillingAddress.State,
		&c.BillingAddress.PostalCode, &c.BillingAddress.Country,
		&c.ShippingAddress.Street, &c.ShippingAddress.City, &c.ShippingAddress.State,
		&c.ShippingAddress.PostalCode, &c.ShippingAddress.Country,
		&c.GSTNumber, &c.MSMENumber, &c.PANNumber,
		&status, &c.BaseCurrency, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	c.Status = ClientStatus(status)
	return c, err
}
