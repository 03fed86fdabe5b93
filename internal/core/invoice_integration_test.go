package core_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"trade-ledger/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func seedClient(t *testing.T, svc services, company string) *core.Client {
	t.Helper()
	c, err := svc.clients.CreateClient(context.Background(), core.ClientInput{Company: company})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

func seedPurchase(t *testing.T, svc services, clientID uuid.UUID, items int) *core.Purchase {
	t.Helper()
	in := core.PurchaseInput{
		ClientID: clientID,
		Subtotal: decimal.NewFromInt(int64(items) * 100),
		Total:    decimal.NewFromInt(int64(items) * 100),
	}
	for i := 0; i < items; i++ {
		in.Items = append(in.Items, core.ItemInput{
			Name:      fmt.Sprintf("Part %d", i+1),
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(100),
		})
	}
	p, err := svc.purchases.CreatePurchase(context.Background(), in)
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	return p
}

func threeItems() []core.ItemInput {
	return []core.ItemInput{
		{Name: "Router", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
		{Name: "Switch", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(300), Currency: "USD"},
		{Name: "Cable", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(5)},
	}
}

func TestInvoice_CreateGeneratesNumberAndChildren(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Acme Traders")
	purchase := seedPurchase(t, svc, client.ID, 1)

	inv, err := svc.invoices.CreateInvoice(ctx, core.InvoiceInput{
		ClientID:    client.ID,
		PurchaseIDs: []uuid.UUID{purchase.ID, purchase.ID},
		Date:        "2025-03-01",
		Total:       decimal.NewFromInt(450),
		Items:       threeItems(),
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	want := core.FormatDocumentNumber(core.SchemeInvoice, time.Now().Year(), 1)
	if inv.InvoiceNumber != want {
		t.Errorf("expected number %s, got %s", want, inv.InvoiceNumber)
	}
	if inv.Status != core.InvoiceDraft {
		t.Errorf("expected default status draft, got %s", inv.Status)
	}
	if inv.DueDate != "2025-03-01" {
		t.Errorf("expected due date to default to date, got %s", inv.DueDate)
	}
	if inv.PaymentTerms != core.DefaultPaymentTerms {
		t.Errorf("expected default payment terms, got %q", inv.PaymentTerms)
	}
	if len(inv.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(inv.Items))
	}
	if inv.Items[0].Name != "Router" || inv.Items[2].Name != "Cable" {
		t.Errorf("items not in insertion order: %s..%s", inv.Items[0].Name, inv.Items[2].Name)
	}
	if inv.Items[0].Total.String() != "100" {
		t.Errorf("expected computed line total 100, got %s", inv.Items[0].Total)
	}
	if inv.Items[0].Currency != core.DefaultCurrency || inv.Items[1].Currency != "USD" {
		t.Errorf("unexpected item currencies %s, %s", inv.Items[0].Currency, inv.Items[1].Currency)
	}
	if len(inv.PurchaseIDs) != 1 || inv.PurchaseIDs[0] != purchase.ID {
		t.Errorf("expected one deduplicated link to %s, got %v", purchase.ID, inv.PurchaseIDs)
	}
	if inv.PrimaryPurchaseID() != purchase.ID.String() {
		t.Errorf("legacy purchase id mismatch: %s", inv.PrimaryPurchaseID())
	}
}

func TestInvoice_ConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Parallel Co")

	const workers = 10
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	numbers := make(chan string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := svc.invoices.CreateInvoice(ctx, core.InvoiceInput{ClientID: client.ID})
			if err != nil {
				errCh <- err
				return
			}
			numbers <- inv.InvoiceNumber
		}()
	}
	wg.Wait()
	close(errCh)
	close(numbers)

	for err := range errCh {
		t.Errorf("concurrent create failed: %v", err)
	}

	seen := map[string]bool{}
	for n := range numbers {
		if seen[n] {
			t.Errorf("invoice number %s issued twice", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct numbers, got %d", workers, len(seen))
	}
	if got := countOf(t, pool, "SELECT count(DISTINCT invoice_number) FROM invoices"); got != workers {
		t.Errorf("expected %d distinct stored numbers, got %d", workers, got)
	}
}

func TestInvoice_StatusPatchKeepsItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Patch Ltd")
	inv, err := svc.invoices.CreateInvoice(ctx, core.InvoiceInput{ClientID: client.ID, Items: threeItems()})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	paid, err := svc.invoices.UpdateInvoiceStatus(ctx, inv.ID, core.InvoicePaid)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if len(paid.Items) != 3 {
		t.Errorf("status-only patch must keep items, got %d", len(paid.Items))
	}
	if paid.PaidAt == nil {
		t.Fatalf("expected paid_at to be stamped")
	}
	firstPaid := *paid.PaidAt

	again, err := svc.invoices.UpdateInvoiceStatus(ctx, inv.ID, core.InvoicePaid)
	if err != nil {
		t.Fatalf("mark paid again: %v", err)
	}
	if again.PaidAt == nil || !again.PaidAt.Equal(firstPaid) {
		t.Errorf("paid_at must be set once, got %v then %v", firstPaid, again.PaidAt)
	}

	empty := []core.ItemInput{}
	cleared, err := svc.invoices.UpdateInvoice(ctx, inv.ID, core.InvoicePatch{Items: &empty})
	if err != nil {
		t.Fatalf("clear items: %v", err)
	}
	if len(cleared.Items) != 0 {
		t.Errorf("expected empty item list to remove all items, got %d", len(cleared.Items))
	}
	if got := countOf(t, pool, "SELECT count(*) FROM invoice_items WHERE invoice_id = $1", inv.ID); got != 0 {
		t.Errorf("expected no stored items, got %d", got)
	}
}

func TestInvoice_ReplaceLinks(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Links Inc")
	p1 := seedPurchase(t, svc, client.ID, 1)
	p2 := seedPurchase(t, svc, client.ID, 1)

	inv, err := svc.invoices.CreateInvoice(ctx, core.InvoiceInput{ClientID: client.ID, PurchaseIDs: []uuid.UUID{p1.ID}})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	ids := []uuid.UUID{p2.ID}
	updated, err := svc.invoices.UpdateInvoice(ctx, inv.ID, core.InvoicePatch{PurchaseIDs: &ids})
	if err != nil {
		t.Fatalf("replace links: %v", err)
	}
	if len(updated.PurchaseIDs) != 1 || updated.PurchaseIDs[0] != p2.ID {
		t.Errorf("expected links replaced by %s, got %v", p2.ID, updated.PurchaseIDs)
	}

	page, err := svc.invoices.ListInvoices(ctx, core.InvoiceFilter{PurchaseID: &p1.ID}, core.PageRequest{})
	if err != nil {
		t.Fatalf("list by purchase: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected no invoices linked to the old purchase, got %d", page.Total)
	}
}

func TestInvoice_DeletingPurchaseDropsLinkOnly(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Cascade Co")
	purchase := seedPurchase(t, svc, client.ID, 2)

	pid := purchase.ID
	inv, err := svc.invoices.CreateInvoice(ctx, core.InvoiceInput{
		ClientID:    client.ID,
		PurchaseIDs: []uuid.UUID{purchase.ID},
		Items: []core.ItemInput{{
			Name: "Billed part", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10),
			PurchaseID: &pid, PONumber: purchase.PONumber,
		}},
	})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	if err := svc.purchases.DeletePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}

	got, err := svc.invoices.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("invoice must survive purchase deletion: %v", err)
	}
	if len(got.PurchaseIDs) != 0 {
		t.Errorf("expected link removed, got %v", got.PurchaseIDs)
	}
	if len(got.Items) != 1 || got.Items[0].PurchaseID != "" {
		t.Errorf("expected item kept with purchase reference cleared, got %+v", got.Items)
	}
	if n := countOf(t, pool, "SELECT count(*) FROM purchase_items WHERE purchase_id = $1", purchase.ID); n != 0 {
		t.Errorf("expected purchase items deleted, got %d", n)
	}
}

func TestInvoice_FailedCreateLeavesNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Rollback Co")

	_, err := svc.invoices.CreateInvoice(ctx, core.InvoiceInput{
		ClientID:    client.ID,
		Items:       threeItems(),
		PurchaseIDs: []uuid.UUID{uuid.New()},
	})
	if err == nil {
		t.Fatalf("expected a dangling purchase link to fail")
	}
	var ce *core.ConstraintError
	if !errors.As(err, &ce) || ce.Kind != core.ConstraintForeignKey {
		t.Fatalf("expected foreign key violation, got %v", err)
	}

	assertEmpty(t, pool, "invoices", "invoice_items", "invoice_purchases")
}

func TestInvoice_FailedUpdateRestoresItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Atomic Co")
	inv, err := svc.invoices.CreateInvoice(ctx, core.InvoiceInput{ClientID: client.ID, Items: threeItems()})
	if err != nil {
		t.Fatalf("create invoice: %v", err)
	}

	notes := "should not persist"
	items := []core.ItemInput{{Name: "Replacement", Quantity: decimal.NewFromInt(1)}}
	links := []uuid.UUID{uuid.New()}
	_, err = svc.invoices.UpdateInvoice(ctx, inv.ID, core.InvoicePatch{Notes: &notes, Items: &items, PurchaseIDs: &links})
	if err == nil {
		t.Fatalf("expected update with dangling link to fail")
	}

	got, err := svc.invoices.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if got.Notes == notes {
		t.Errorf("header change must roll back")
	}
	if len(got.Items) != 3 {
		t.Errorf("expected original 3 items after rollback, got %d", len(got.Items))
	}
}

func TestInvoice_DuplicateNumber(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Dup Co")
	in := core.InvoiceInput{ClientID: client.ID, InvoiceNumber: "INV-2025-0042"}
	if _, err := svc.invoices.CreateInvoice(ctx, in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.invoices.CreateInvoice(ctx, in)
	var ce *core.ConstraintError
	if !errors.As(err, &ce) || ce.Kind != core.ConstraintDuplicate {
		t.Fatalf("expected duplicate entry, got %v", err)
	}
}

func TestInvoice_NotFound(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	missing := uuid.New()
	if _, err := svc.invoices.GetInvoice(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("get: expected not found, got %v", err)
	}
	notes := "x"
	if _, err := svc.invoices.UpdateInvoice(ctx, missing, core.InvoicePatch{Notes: &notes}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update: expected not found, got %v", err)
	}
	if err := svc.invoices.DeleteInvoice(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete: expected not found, got %v", err)
	}
}

func TestInvoice_ListPagesAndStats(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Stats Co")
	for i, status := range []core.InvoiceStatus{core.InvoicePaid, core.InvoiceDraft, core.InvoiceSent, core.InvoiceOverdue, core.InvoicePaid} {
		_, err := svc.invoices.CreateInvoice(ctx, core.InvoiceInput{
			ClientID: client.ID,
			Status:   status,
			Total:    decimal.NewFromInt(int64(100 * (i + 1))),
		})
		if err != nil {
			t.Fatalf("create invoice %d: %v", i, err)
		}
	}

	first, err := svc.invoices.ListInvoices(ctx, core.InvoiceFilter{}, core.PageRequest{Limit: 2})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(first.Items) != 2 || first.Total != 5 || first.NextPageToken == nil {
		t.Fatalf("unexpected first page: %d items, total %d, token %v", len(first.Items), first.Total, first.NextPageToken)
	}

	var seen []uuid.UUID
	page := first
	for {
		for _, inv := range page.Items {
			seen = append(seen, inv.ID)
		}
		if page.NextPageToken == nil {
			break
		}
		page, err = svc.invoices.ListInvoices(ctx, core.InvoiceFilter{}, core.PageRequest{Limit: 2, PageToken: *page.NextPageToken})
		if err != nil {
			t.Fatalf("list next page: %v", err)
		}
	}
	if len(seen) != 5 {
		t.Errorf("expected to page through 5 invoices, got %d", len(seen))
	}

	stats, err := svc.invoices.InvoiceStats(ctx, core.InvoiceFilter{ClientID: &client.ID})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalInvoices != 5 || stats.PaidInvoices != 2 || stats.PendingInvoices != 2 || stats.OverdueInvoices != 1 {
		t.Errorf("unexpected buckets: %+v", stats)
	}
	if stats.PaidRevenue.String() != "600" || stats.TotalRevenue.String() != "1500" {
		t.Errorf("unexpected revenue: paid %s total %s", stats.PaidRevenue, stats.TotalRevenue)
	}
}

func assertEmpty(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if n := countOf(t, pool, "SELECT count(*) FROM "+table); n != 0 {
			t.Errorf("expected %s to be empty, found %d rows", table, n)
		}
	}
}
