package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// itemTable describes one of the child item tables owned by a document.
// Items are never patched one by one: the owning document's write path
// deletes and reinserts the whole collection.
type itemTable struct {
	table        string
	parentColumn string
	// sourced tables carry a back-reference to the originating purchase.
	sourced bool
}

var (
	purchaseItemTable = itemTable{table: "purchase_items", parentColumn: "purchase_id"}
	invoiceItemTable  = itemTable{table: "invoice_items", parentColumn: "invoice_id", sourced: true}
)

// itemRow is a fetched item together with its parent id.
type itemRow struct {
	ParentID   uuid.UUID
	Item       LineItem
	PurchaseID *uuid.UUID
	PONumber   string
}

// insert bulk-inserts items in order inside tx.
func (t itemTable) insert(ctx context.Context, tx pgx.Tx, parentID uuid.UUID, parentCurrency string, items []ItemInput) error {
	if len(items) == 0 {
		return nil
	}

	sql := fmt.Sprintf(`
		INSERT INTO %s (%s, position, name, model, supplier, quantity, unit_price, uom, currency, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, t.table, t.parentColumn)
	if t.sourced {
		sql = fmt.Sprintf(`
		INSERT INTO %s (%s, position, name, model, supplier, quantity, unit_price, uom, currency, total,
		                purchase_id, po_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`, t.table, t.parentColumn)
	}

	batch := &pgx.Batch{}
	for i, it := range items {
		args := []any{
			parentID, i, it.Name, nullIfEmpty(it.Model), nullIfEmpty(it.Supplier),
			it.Quantity, it.UnitPrice, nullIfEmpty(it.UOM), it.CurrencyOr(parentCurrency), it.LineTotal(),
		}
		if t.sourced {
			args = append(args, it.PurchaseID, nullIfEmpty(it.PONumber))
		}
		batch.Queue(sql, args...)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert %s row %d: %w", t.table, i+1, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert %s: %w", t.table, err)
	}
	return nil
}

// replace deletes every item of parentID and inserts items in their place.
func (t itemTable) replace(ctx context.Context, tx pgx.Tx, parentID uuid.UUID, parentCurrency string, items []ItemInput) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.table, t.parentColumn), parentID); err != nil {
		return fmt.Errorf("clear %s: %w", t.table, err)
	}
	return t.insert(ctx, tx, parentID, parentCurrency, items)
}

// fetch loads the items of every parent in one query, grouped by parent and
// ordered by creation.
func (t itemTable) fetch(ctx context.Context, q Querier, parentIDs []uuid.UUID) (map[uuid.UUID][]itemRow, error) {
	out := make(map[uuid.UUID][]itemRow, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}

	source := "NULL::uuid, ''"
	if t.sourced {
		source = "purchase_id, COALESCE(po_number, '')"
	}
	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %[2]s, id, name, COALESCE(model, ''), COALESCE(supplier, ''),
		       quantity, unit_price, COALESCE(uom, ''), COALESCE(currency, ''), total, created_at,
		       %[3]s
		FROM %[1]s
		WHERE %[2]s = ANY($1::uuid[])
		ORDER BY created_at, position`, t.table, t.parentColumn, source),
		uuidStrings(parentIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.table, err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (itemRow, error) {
		var r itemRow
		err := row.Scan(
			&r.ParentID, &r.Item.ID, &r.Item.Name, &r.Item.Model, &r.Item.Supplier,
			&r.Item.Quantity, &r.Item.UnitPrice, &r.Item.UOM, &r.Item.Currency, &r.Item.Total, &r.Item.CreatedAt,
			&r.PurchaseID, &r.PONumber,
		)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", t.table, err)
	}

	for _, r := range items {
		out[r.ParentID] = append(out[r.ParentID], r)
	}
	return out, nil
}

// lineItems strips fetched rows down to the shared item shape, applying the
// parent's currency where the row has none.
func lineItems(rows []itemRow, parentCurrency string) []LineItem {
	items := make([]LineItem, 0, len(rows))
	for _, r := range rows {
		it := r.Item
		if it.Currency == "" {
			it.Currency = orDefault(parentCurrency, DefaultCurrency)
		}
		items = append(items, it)
	}
	return items
}
