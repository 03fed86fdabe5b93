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

const invoiceColumns = `
	i.id, i.invoice_number, i.client_id, i.date::text, i.due_date::text, i.status,
	i.subtotal, i.tax, i.total, i.payment_terms, COALESCE(i.notes, ''), i.base_currency,
	i.paid_at, i.created_at, i.updated_at`

var invoiceSorts = map[string]string{
	"created_at":     "created_at",
	"createdAt":      "created_at",
	"date":           "date",
	"due_date":       "due_date",
	"dueDate":        "due_date",
	"total":          "total",
	"invoice_number": "invoice_number",
	"invoiceNumber":  "invoice_number",
}

// paidAtOnce stamps paid_at the first time an invoice becomes paid.
const paidAtOnce = "COALESCE(paid_at, NOW())"

type invoiceService struct {
	pool *pgxpool.Pool
	seq  SequenceService
	now  func() time.Time
}

// NewInvoiceService constructs an InvoiceService backed by PostgreSQL.
func NewInvoiceService(pool *pgxpool.Pool, seq SequenceService) InvoiceService {
	return &invoiceService{pool: pool, seq: seq, now: time.Now}
}

// CreateInvoice inserts the header, items and purchase links in one transaction.
// Any failure leaves no trace of the invoice.
func (s *invoiceService) CreateInvoice(ctx context.Context, in InvoiceInput) (*Invoice, error) {
	status := in.Status
	if status == "" {
		status = InvoiceDraft
	}
	date := orDefault(in.Date, today(s.now()))
	dueDate := orDefault(in.DueDate, date)
	currency := orDefault(in.BaseCurrency, DefaultCurrency)
	terms := orDefault(in.PaymentTerms, DefaultPaymentTerms)

	var id uuid.UUID
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		number := strings.TrimSpace(in.InvoiceNumber)
		if number == "" {
			number = s.seq.NumberTx(ctx, tx, SchemeInvoice)
		}

		if err := tx.QueryRow(ctx, `
			INSERT INTO invoices (invoice_number, client_id, date, due_date, status,
			                      subtotal, tax, total, payment_terms, notes, base_currency, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			        CASE WHEN $5 = 'paid' THEN NOW() END)
			RETURNING id`,
			number, in.ClientID, date, dueDate, string(status),
			in.Subtotal, in.Tax, in.Total, terms, in.Notes, currency,
		).Scan(&id); err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		if err := invoiceItemTable.insert(ctx, tx, id, currency, in.Items); err != nil {
			return err
		}
		return insertInvoiceLinks(ctx, tx, id, in.PurchaseIDs)
	})
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("create invoice: %w", err))
	}

	documentsWritten.WithLabelValues("invoice", "create").Inc()
	return s.GetInvoice(ctx, id)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+invoiceColumns+" FROM invoices i WHERE i.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", id, err)
	}
	inv, err := pgx.CollectExactlyOneRow(rows, scanInvoice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("invoice", id)
		}
		return nil, fmt.Errorf("get invoice %s: %w", id, err)
	}

	invoices := []Invoice{inv}
	if err := s.attachChildren(ctx, invoices); err != nil {
		return nil, err
	}
	return &invoices[0], nil
}

// UpdateInvoice writes only the present fields. Becoming paid stamps paid_at once;
// Items and PurchaseIDs, when present, are replaced wholesale in the same transaction.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id uuid.UUID, patch InvoicePatch) (*Invoice, error) {
	b := NewUpdate("invoices")
	if patch.InvoiceNumber != nil {
		b.Set("invoice_number", strings.TrimSpace(*patch.InvoiceNumber))
	}
	SetIf(b, "client_id", patch.ClientID)
	SetIf(b, "date", patch.Date)
	SetIf(b, "due_date", patch.DueDate)
	if patch.Status != nil {
		b.Set("status", string(*patch.Status))
		if *patch.Status == InvoicePaid {
			b.SetExpr("paid_at", paidAtOnce)
		}
	}
	SetIf(b, "subtotal", patch.Subtotal)
	SetIf(b, "tax", patch.Tax)
	SetIf(b, "total", patch.Total)
	SetIf(b, "payment_terms", patch.PaymentTerms)
	SetIf(b, "notes", patch.Notes)
	SetIf(b, "base_currency", patch.BaseCurrency)
	b.Returning("base_currency")

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sql, args := b.Build("id", id)
		var currency string
		if err := tx.QueryRow(ctx, sql, args...).Scan(&currency); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFound("invoice", id)
			}
			return fmt.Errorf("update invoice header: %w", err)
		}

		if patch.Items != nil {
			if err := invoiceItemTable.replace(ctx, tx, id, currency, *patch.Items); err != nil {
				return err
			}
		}
		if patch.PurchaseIDs != nil {
			if _, err := tx.Exec(ctx, "DELETE FROM invoice_purchases WHERE invoice_id = $1", id); err != nil {
				return fmt.Errorf("clear invoice links: %w", err)
			}
			if err := insertInvoiceLinks(ctx, tx, id, *patch.PurchaseIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, ClassifyDBError(fmt.Errorf("update invoice %s: %w", id, err))
	}

	documentsWritten.WithLabelValues("invoice", "update").Inc()
	return s.GetInvoice(ctx, id)
}

func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status InvoiceStatus) (*Invoice, error) {
	return s.UpdateInvoice(ctx, id, InvoicePatch{Status: &status})
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return ClassifyDBError(fmt.Errorf("delete invoice %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return notFound("invoice", id)
	}
	documentsWritten.WithLabelValues("invoice", "delete").Inc()
	return nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, f InvoiceFilter, page PageRequest) (*Page[Invoice], error) {
	offset, limit := page.window(InvoiceLimits)
	pred := invoicePredicate(f)

	total, err := countRows(ctx, s.pool, "invoices i", pred)
	if err != nil {
		return nil, fmt.Errorf("count invoices: %w", err)
	}

	limitSQL, args := pageClause(pred, limit, offset)
	invoices, err := s.queryInvoices(ctx,
		"SELECT "+invoiceColumns+" FROM invoices i"+pred.SQL()+orderBy("i.", page.Sort, page.Order, invoiceSorts)+limitSQL,
		args,
	)
	if err != nil {
		return nil, err
	}
	if err := s.attachChildren(ctx, invoices); err != nil {
		return nil, err
	}
	return NewPage(invoices, offset, limit, total), nil
}

// InvoiceStats reuses the list predicate and fetch, without paging, and folds
// the snapshot. Items and links are not needed for the fold.
func (s *invoiceService) InvoiceStats(ctx context.Context, f InvoiceFilter) (*InvoiceStats, error) {
	pred := invoicePredicate(f)
	invoices, err := s.queryInvoices(ctx,
		"SELECT "+invoiceColumns+" FROM invoices i"+pred.SQL()+orderBy("i.", "created_at", SortDesc, invoiceSorts),
		pred.Args(),
	)
	if err != nil {
		return nil, err
	}
	stats := FoldInvoices(invoices)
	stats.From, stats.To = f.CreatedFrom, f.CreatedTo
	return &stats, nil
}

func (s *invoiceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	return s.seq.Peek(ctx, SchemeInvoice)
}

func (s *invoiceService) queryInvoices(ctx context.Context, sql string, args []any) ([]Invoice, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	invoices, err := pgx.CollectRows(rows, scanInvoice)
	if err != nil {
		return nil, fmt.Errorf("scan invoices: %w", err)
	}
	return invoices, nil
}

// attachChildren loads items and purchase links for every invoice, one query each.
func (s *invoiceService) attachChildren(ctx context.Context, invoices []Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
	}

	byParent, err := invoiceItemTable.fetch(ctx, s.pool, ids)
	if err != nil {
		return err
	}
	links, err := fetchInvoiceLinks(ctx, s.pool, ids)
	if err != nil {
		return err
	}

	for i := range invoices {
		inv := &invoices[i]
		rows := byParent[inv.ID]
		inv.Items = make([]InvoiceItem, 0, len(rows))
		for j, li := range lineItems(rows, inv.BaseCurrency) {
			item := InvoiceItem{LineItem: li, PONumber: rows[j].PONumber}
			if rows[j].PurchaseID != nil {
				item.PurchaseID = rows[j].PurchaseID.String()
			}
			inv.Items = append(inv.Items, item)
		}
		inv.PurchaseIDs = links[inv.ID]
		if inv.PurchaseIDs == nil {
			inv.PurchaseIDs = []uuid.UUID{}
		}
	}
	return nil
}

func invoicePredicate(f InvoiceFilter) *Predicate {
	pred := &Predicate{}
	pred.Eq("i.status", string(f.Status))
	pred.EqUUID("i.client_id", f.ClientID)
	if f.PurchaseID != nil {
		pred.Where("EXISTS (SELECT 1 FROM invoice_purchases ip WHERE ip.invoice_id = i.id AND ip.purchase_id = ?)", *f.PurchaseID)
	}
	if f.DateFrom != "" {
		pred.Where("i.date >= ?::date", f.DateFrom)
	}
	if f.DateTo != "" {
		pred.Where("i.date <= ?::date", f.DateTo)
	}
	if f.CreatedFrom != nil {
		pred.Where("i.created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		pred.Where("i.created_at <= ?", *f.CreatedTo)
	}
	return pred
}

// insertInvoiceLinks records each source purchase once; repeated ids are ignored.
func insertInvoiceLinks(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, purchaseIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]bool, len(purchaseIDs))
	batch := &pgx.Batch{}
	for _, pid := range purchaseIDs {
		if seen[pid] {
			continue
		}
		seen[pid] = true
		batch.Queue(`
			INSERT INTO invoice_purchases (invoice_id, purchase_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, invoiceID, pid)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("link purchase to invoice: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("link purchases to invoice: %w", err)
	}
	return nil
}

func fetchInvoiceLinks(ctx context.Context, q Querier, invoiceIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	rows, err := q.Query(ctx, `
		SELECT invoice_id, purchase_id
		FROM invoice_purchases
		WHERE invoice_id = ANY($1::uuid[])
		ORDER BY created_at, purchase_id`,
		uuidStrings(invoiceIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice links: %w", err)
	}
	type link struct{ invoiceID, purchaseID uuid.UUID }
	pairs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (link, error) {
		var l link
		err := row.Scan(&l.invoiceID, &l.purchaseID)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan invoice links: %w", err)
	}

	out := make(map[uuid.UUID][]uuid.UUID, len(invoiceIDs))
	for _, l := range pairs {
		out[l.invoiceID] = append(out[l.invoiceID], l.purchaseID)
	}
	return out, nil
}

func scanInvoice(row pgx.CollectableRow) (Invoice, error) {
	var inv Invoice
	var status string
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.Date, &inv.DueDate, &status,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.PaymentTerms, &inv.Notes, &inv.BaseCurrency,
		&inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	inv.Status = InvoiceStatus(status)
	return inv, err
}
