package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trade-ledger/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const purchaseColumns = `
	p.id, p.client_id, p.po_number, p.date::text, p.status,
	p.subtotal, p.tax, p.total, p.base_currency, COALESCE(p.notes, ''),
	p.created_at, p.updated_at`

var purchaseSorts = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"date":       "date",
	"po_number":  "po_number",
	"poNumber":   "po_number",
	"total":      "total",
}

type purchaseService struct {
	pool *pgxpool.Pool
	seq  SequenceService
	now  func() time.Time
}

// NewPurchaseService constructs a PurchaseService backed by PostgreSQL.
func NewPurchaseService(pool *pgxpool.Pool, seq SequenceService) PurchaseService {
	return &purchaseService{pool: pool, seq: seq, now: time.Now}
}

// CreatePurchase inserts the header and every item in one transaction.
// A purchase without a PO number is assigned the next PO-<year>-NNN.
func (s *purchaseService) CreatePurchase(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	status := in.Status
	if status == "" {
		status = PurchasePending
	}
	date := orDefault(in.Date, today(s.now()))
	currency := orDefault(in.BaseCurrency, DefaultCurrency)

	var id uuid.UUID
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		poNumber := strings.TrimSpace(in.PONumber)
		if poNumber == "" {
			poNumber = s.seq.NumberTx(ctx, tx, SchemePO)
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO purchases (client_id, po_number, date, status, subtotal, tax, total, base_currency, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			in.ClientID, poNumber, date, string(status),
			in.Subtotal, in.Tax, in.Total, currency, in.Notes,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		return purchaseItemTable.insert(ctx, tx, id, currency, in.Items)
	})
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("create purchase: %w", err))
	}

	documentsWritten.WithLabelValues("purchase", "create").Inc()
	return s.GetPurchase(ctx, id)
}

func (s *purchaseService) GetPurchase(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+purchaseColumns+" FROM purchases p WHERE p.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get purchase %s: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPurchase)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("purchase", id)
		}
		return nil, fmt.Errorf("get purchase %s: %w", id, err)
	}

	purchases := []Purchase{p}
	if err := s.attachItems(ctx, purchases); err != nil {
		return nil, err
	}
	return &purchases[0], nil
}

func (s *purchaseService) GetPurchasesByIDs(ctx context.Context, ids []uuid.UUID) ([]Purchase, error) {
	if len(ids) == 0 {
		return []Purchase{}, nil
	}
	rows, err := s.pool.Query(ctx,
		"SELECT "+purchaseColumns+" FROM purchases p WHERE p.id = ANY($1::uuid[]) ORDER BY p.created_at DESC, p.id DESC",
		uuidStrings(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("get purchases by ids: %w", err)
	}
	purchases, err := pgx.CollectRows(rows, scanPurchase)
	if err != nil {
		return nil, fmt.Errorf("scan purchases: %w", err)
	}
	if err := s.attachItems(ctx, purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// UpdatePurchase writes only the present fields. When patch.Items is non-nil the
// item collection is replaced inside the same transaction.
func (s *purchaseService) UpdatePurchase(ctx context.Context, id uuid.UUID, patch PurchasePatch) (*Purchase, error) {
	b := NewUpdate("purchases")
	SetIf(b, "client_id", patch.ClientID)
	SetIf(b, "po_number", patch.PONumber)
	SetIf(b, "date", patch.Date)
	SetIf(b, "status", patch.Status)
	SetIf(b, "subtotal", patch.Subtotal)
	SetIf(b, "tax", patch.Tax)
	SetIf(b, "total", patch.Total)
	SetIf(b, "base_currency", patch.BaseCurrency)
	SetIf(b, "notes", patch.Notes)
	b.Returning("base_currency")

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sql, args := b.Build("id", id)
		var currency string
		if err := tx.QueryRow(ctx, sql, args...).Scan(&currency); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFound("purchase", id)
			}
			return fmt.Errorf("update purchase header: %w", err)
		}

		if patch.Items != nil {
			if err := purchaseItemTable.replace(ctx, tx, id, currency, *patch.Items); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("update purchase %s: %w", id, err))
	}

	documentsWritten.WithLabelValues("purchase", "update").Inc()
	return s.GetPurchase(ctx, id)
}

func (s *purchaseService) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM purchases WHERE id = $1", id)
	if err != nil {
		return ClassifyDBError(fmt.Errorf("delete purchase %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return notFound("purchase", id)
	}
	documentsWritten.WithLabelValues("purchase", "delete").Inc()
	return nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, f PurchaseFilter, page PageRequest) (*Page[Purchase], error) {
	offset, limit := page.window(PurchaseLimits)

	pred := &Predicate{}
	pred.Eq("p.status", string(f.Status))
	pred.EqUUID("p.client_id", f.ClientID)
	pred.Prefix("p.po_number", f.POPrefix)

	total, err := countRows(ctx, s.pool, "purchases p", pred)
	if err != nil {
		return nil, fmt.Errorf("count purchases: %w", err)
	}

	limitSQL, args := pageClause(pred, limit, offset)
	rows, err := s.pool.Query(ctx,
		"SELECT "+purchaseColumns+" FROM purchases p"+pred.SQL()+orderBy("p.", page.Sort, page.Order, purchaseSorts)+limitSQL,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	purchases, err := pgx.CollectRows(rows, scanPurchase)
	if err != nil {
		return nil, fmt.Errorf("scan purchases: %w", err)
	}
	if err := s.attachItems(ctx, purchases); err != nil {
		return nil, err
	}
	return NewPage(purchases, offset, limit, total), nil
}

func (s *purchaseService) NextPONumber(ctx context.Context) (string, error) {
	return s.seq.Peek(ctx, SchemePO)
}

// attachItems fills Items on every purchase with one extra query.
func (s *purchaseService) attachItems(ctx context.Context, purchases []Purchase) error {
	ids := make([]uuid.UUID, len(purchases))
	for i := range purchases {
		ids[i] = purchases[i].ID
	}
	byParent, err := purchaseItemTable.fetch(ctx, s.pool, ids)
	if err != nil {
		return err
	}
	for i := range purchases {
		purchases[i].Items = lineItems(byParent[purchases[i].ID], purchases[i].BaseCurrency)
	}
	return nil
}

func scanPurchase(row pgx.CollectableRow) (Purchase, error) {
	var p Purchase
	var status string
	err := row.Scan(
		&p.ID, &p.ClientID, &p.PONumber, &p.Date, &status,
		&p.Subtotal, &p.Tax, &p.Total, &p.BaseCurrency, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	p.Status = PurchaseStatus(status)
	return p, err
}
