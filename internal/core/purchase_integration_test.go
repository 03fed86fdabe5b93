package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trade-ledger/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPurchase_CreateNumbersAndItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Supplier One")

	first := seedPurchase(t, svc, client.ID, 2)
	second := seedPurchase(t, svc, client.ID, 0)

	year := time.Now().Year()
	if want := core.FormatDocumentNumber(core.SchemePO, year, 1); first.PONumber != want {
		t.Errorf("expected %s, got %s", want, first.PONumber)
	}
	if want := core.FormatDocumentNumber(core.SchemePO, year, 2); second.PONumber != want {
		t.Errorf("expected %s, got %s", want, second.PONumber)
	}
	if first.Status != core.PurchasePending {
		t.Errorf("expected default status pending, got %s", first.Status)
	}
	if len(first.Items) != 2 || first.Items[0].Name != "Part 1" {
		t.Errorf("unexpected items: %+v", first.Items)
	}
	if second.Items == nil || len(second.Items) != 0 {
		t.Errorf("expected empty item list, got %v", second.Items)
	}

	next, err := svc.purchases.NextPONumber(ctx)
	if err != nil {
		t.Fatalf("peek po number: %v", err)
	}
	if want := core.FormatDocumentNumber(core.SchemePO, year, 3); next != want {
		t.Errorf("expected preview %s, got %s", want, next)
	}
}

func TestPurchase_UpdateReplacesItems(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	client := seedClient(t, svc, "Supplier Two")
	p := seedPurchase(t, svc, client.ID, 3)

	status := core.PurchaseApproved
	updated, err := svc.purchases.UpdatePurchase(ctx, p.ID, core.PurchasePatch{Status: &status})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if updated.Status != core.PurchaseApproved || len(updated.Items) != 3 {
		t.Errorf("status patch changed items: status %s, %d items", updated.Status, len(updated.Items))
	}
	if !updated.UpdatedAt.After(p.UpdatedAt) && !updated.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("updated_at went backwards")
	}

	items := []core.ItemInput{{Name: "Only", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(25)}}
	replaced, err := svc.purchases.UpdatePurchase(ctx, p.ID, core.PurchasePatch{Items: &items})
	if err != nil {
		t.Fatalf("replace items: %v", err)
	}
	if len(replaced.Items) != 1 || replaced.Items[0].Total.String() != "100" {
		t.Errorf("unexpected replaced items: %+v", replaced.Items)
	}

	missing := uuid.New()
	if _, err := svc.purchases.UpdatePurchase(ctx, missing, core.PurchasePatch{Status: &status}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPurchase_ListFiltersAndByIDs(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)
	ctx := context.Background()

	a := seedClient(t, svc, "Alpha")
	b := seedClient(t, svc, "Beta")
	pa := seedPurchase(t, svc, a.ID, 1)
	seedPurchase(t, svc, a.ID, 1)
	pb := seedPurchase(t, svc, b.ID, 1)

	page, err := svc.purchases.ListPurchases(ctx, core.PurchaseFilter{ClientID: &a.ID}, core.PageRequest{})
	if err != nil {
		t.Fatalf("list by client: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 || page.NextPageToken != nil {
		t.Errorf("unexpected client page: total %d, %d items", page.Total, len(page.Items))
	}

	prefix, err := svc.purchases.ListPurchases(ctx, core.PurchaseFilter{POPrefix: pb.PONumber}, core.PageRequest{})
	if err != nil {
		t.Fatalf("list by prefix: %v", err)
	}
	if prefix.Total != 1 || prefix.Items[0].ID != pb.ID {
		t.Errorf("expected only %s for prefix, got %d", pb.PONumber, prefix.Total)
	}

	found, err := svc.purchases.GetPurchasesByIDs(ctx, []uuid.UUID{pa.ID, pb.ID, uuid.New()})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected unknown ids to be skipped, got %d purchases", len(found))
	}
}

func TestPurchase_UnknownClientRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	svc := newServices(pool)

	_, err := svc.purchases.CreatePurchase(context.Background(), core.PurchaseInput{
		ClientID: uuid.New(),
		Items:    []core.ItemInput{{Name: "Ghost", Quantity: decimal.NewFromInt(1)}},
	})
	var ce *core.ConstraintError
	if !errors.As(err, &ce) || ce.Kind != core.ConstraintForeignKey {
		t.Fatalf("expected foreign key violation, got %v", err)
	}
	assertEmpty(t, pool, "purchases", "purchase_items")
}
