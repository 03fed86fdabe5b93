package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"trade-ledger/internal/core"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurchases struct {
	core.PurchaseService
	page *core.Page[core.Purchase]
	got  []uuid.UUID
}

func (f *fakePurchases) ListPurchases(context.Context, core.PurchaseFilter, core.PageRequest) (*core.Page[core.Purchase], error) {
	return f.page, nil
}

func (f *fakePurchases) GetPurchasesByIDs(_ context.Context, ids []uuid.UUID) ([]core.Purchase, error) {
	f.got = ids
	return []core.Purchase{}, nil
}

type fakeInvoices struct {
	core.InvoiceService
	filter core.InvoiceFilter
	status core.InvoiceStatus
	page   *core.Page[core.Invoice]
}

func (f *fakeInvoices) InvoiceStats(_ context.Context, filter core.InvoiceFilter) (*core.InvoiceStats, error) {
	f.filter = filter
	return &core.InvoiceStats{}, nil
}

func (f *fakeInvoices) ListInvoices(context.Context, core.InvoiceFilter, core.PageRequest) (*core.Page[core.Invoice], error) {
	return f.page, nil
}

func (f *fakeInvoices) UpdateInvoiceStatus(_ context.Context, id uuid.UUID, status core.InvoiceStatus) (*core.Invoice, error) {
	f.status = status
	pid := uuid.New()
	return &core.Invoice{
		ID:          id,
		Status:      status,
		PurchaseIDs: []uuid.UUID{pid},
		Items:       []core.InvoiceItem{{PONumber: "PO-2025-001"}},
	}, nil
}

func newTestApp(purchases core.PurchaseService, invoices core.InvoiceService, now time.Time) *appService {
	svc := NewAppService(nil, nil, purchases, invoices, nil, nil, nil).(*appService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestListPurchases_NextCursor(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	token := "Mg=="
	fp := &fakePurchases{page: &core.Page[core.Purchase]{
		Items:         []core.Purchase{{CreatedAt: older.Add(time.Hour)}, {CreatedAt: older}},
		NextPageToken: &token,
		Total:         5,
	}}
	svc := newTestApp(fp, nil, time.Now())

	res, err := svc.ListPurchases(context.Background(), core.PurchaseFilter{}, core.PageRequest{})
	require.NoError(t, err)
	require.NotNil(t, res.NextCursor)
	assert.Equal(t, older, *res.NextCursor)
	assert.Equal(t, 5, res.Total)

	fp.page = &core.Page[core.Purchase]{Items: []core.Purchase{}}
	res, err = svc.ListPurchases(context.Background(), core.PurchaseFilter{}, core.PageRequest{})
	require.NoError(t, err)
	assert.Nil(t, res.NextCursor)
}

func TestListInvoices_NextCursor(t *testing.T) {
	older := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	fi := &fakeInvoices{page: &core.Page[core.Invoice]{
		Items: []core.Invoice{{CreatedAt: older.Add(time.Hour)}, {CreatedAt: older}},
		Total: 2,
	}}
	svc := newTestApp(nil, fi, time.Now())

	res, err := svc.ListInvoices(context.Background(), core.InvoiceFilter{}, core.PageRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	require.NotNil(t, res.NextCursor)
	assert.Equal(t, older, *res.NextCursor)

	fi.page = &core.Page[core.Invoice]{Items: []core.Invoice{}}
	res, err = svc.ListInvoices(context.Background(), core.InvoiceFilter{}, core.PageRequest{})
	require.NoError(t, err)
	assert.Nil(t, res.NextCursor)
}

func TestGetPurchasesByIDs_RejectsMalformed(t *testing.T) {
	fp := &fakePurchases{}
	svc := newTestApp(fp, nil, time.Now())

	_, err := svc.GetPurchasesByIDs(context.Background(), []string{"not-a-uuid"})
	var ve *core.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Nil(t, fp.got, "the store must not be reached")
}

func TestInvoiceStats_DefaultWindow(t *testing.T) {
	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	fi := &fakeInvoices{}
	svc := newTestApp(nil, fi, now)

	_, err := svc.InvoiceStats(context.Background(), InvoiceStatsRequest{})
	require.NoError(t, err)
	require.NotNil(t, fi.filter.CreatedFrom)
	require.NotNil(t, fi.filter.CreatedTo)
	assert.Equal(t, now.Add(-30*24*time.Hour), *fi.filter.CreatedFrom)
	assert.Equal(t, now, *fi.filter.CreatedTo)
	assert.Nil(t, fi.filter.ClientID)
}

func TestInvoiceStats_ExplicitWindow(t *testing.T) {
	fi := &fakeInvoices{}
	svc := newTestApp(nil, fi, time.Now())
	clientID := uuid.New()

	_, err := svc.InvoiceStats(context.Background(), InvoiceStatsRequest{
		DateFrom: "2025-01-01",
		DateTo:   "2025-01-31",
		ClientID: clientID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *fi.filter.CreatedFrom)
	assert.Equal(t, time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC), *fi.filter.CreatedTo)
	assert.Equal(t, clientID, *fi.filter.ClientID)

	// Only an upper bound: the window is the 30 days before it, not before now.
	_, err = svc.InvoiceStats(context.Background(), InvoiceStatsRequest{DateTo: "2025-01-31"})
	require.NoError(t, err)
	end := time.Date(2025, 1, 31, 23, 59, 59, 999999999, time.UTC)
	assert.Equal(t, end, *fi.filter.CreatedTo)
	assert.Equal(t, end.Add(-30*24*time.Hour), *fi.filter.CreatedFrom)
	assert.False(t, fi.filter.CreatedFrom.After(*fi.filter.CreatedTo))

	_, err = svc.InvoiceStats(context.Background(), InvoiceStatsRequest{DateFrom: "yesterday"})
	var ve *core.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "dateFrom")
}

func TestUpdateInvoiceStatus_View(t *testing.T) {
	fi := &fakeInvoices{}
	svc := newTestApp(nil, fi, time.Now())

	view, err := svc.UpdateInvoiceStatus(context.Background(), uuid.New(), "sent")
	require.NoError(t, err)
	assert.Equal(t, core.InvoiceSent, fi.status)
	assert.Equal(t, view.PurchaseIDs[0].String(), view.PurchaseID)
	assert.Equal(t, "PO-2025-001", view.PONumber)

	_, err = svc.UpdateInvoiceStatus(context.Background(), uuid.New(), "void")
	assert.Error(t, err)
}

func TestHealth_WithoutPool(t *testing.T) {
	svc := newTestApp(nil, nil, time.Now())
	res := svc.Health(context.Background())
	assert.False(t, res.OK)
	assert.Equal(t, "disconnected", res.Database)
}
