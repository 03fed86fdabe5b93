package app

import (
	"context"
	"strings"
	"time"

	"trade-ledger/internal/core"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// defaultStatsWindow applies when an invoice stats request names no bounds.
const defaultStatsWindow = 30 * 24 * time.Hour

const healthTimeout = 2 * time.Second

type appService struct {
	pool      *pgxpool.Pool
	clients   core.ClientService
	purchases core.PurchaseService
	invoices  core.InvoiceService
	finance   core.FinanceService
	settings  core.SettingsService
	log       *zap.Logger
	started   time.Time
	now       func() time.Time
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	pool *pgxpool.Pool,
	clients core.ClientService,
	purchases core.PurchaseService,
	invoices core.InvoiceService,
	finance core.FinanceService,
	settings core.SettingsService,
	log *zap.Logger,
) ApplicationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &appService{
		pool:      pool,
		clients:   clients,
		purchases: purchases,
		invoices:  invoices,
		finance:   finance,
		settings:  settings,
		log:       log,
		started:   time.Now(),
		now:       time.Now,
	}
}

// NewDefaultAppService wires the PostgreSQL-backed core services over pool.
func NewDefaultAppService(pool *pgxpool.Pool, log *zap.Logger) ApplicationService {
	seq := core.NewSequenceService(pool, log)
	return NewAppService(
		pool,
		core.NewClientService(pool),
		core.NewPurchaseService(pool, seq),
		core.NewInvoiceService(pool, seq),
		core.NewFinanceService(pool),
		core.NewSettingsService(pool),
		log,
	)
}

// ── Clients ─────────────────────────────────────────────────────────────────

func (s *appService) CreateClient(ctx context.Context, req ClientRequest) (*core.Client, error) {
	in, err := req.ToInput()
	if err != nil {
		return nil, err
	}
	return s.clients.CreateClient(ctx, in)
}

func (s *appService) GetClient(ctx context.Context, id uuid.UUID) (*core.Client, error) {
	return s.clients.GetClient(ctx, id)
}

func (s *appService) UpdateClient(ctx context.Context, id uuid.UUID, req ClientRequest) (*core.Client, error) {
	patch, err := req.ToPatch()
	if err != nil {
		return nil, err
	}
	return s.clients.UpdateClient(ctx, id, patch)
}

func (s *appService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return s.clients.DeleteClient(ctx, id)
}

func (s *appService) ListClients(ctx context.Context, f core.ClientFilter, page core.PageRequest) (*core.Page[core.Client], error) {
	return s.clients.ListClients(ctx, f, page)
}

// ── Purchases ───────────────────────────────────────────────────────────────

func (s *appService) CreatePurchase(ctx context.Context, req PurchaseRequest) (*core.Purchase, error) {
	in, err := req.ToInput()
	if err != nil {
		return nil, err
	}
	return s.purchases.CreatePurchase(ctx, in)
}

func (s *appService) GetPurchase(ctx context.Context, id uuid.UUID) (*core.Purchase, error) {
	return s.purchases.GetPurchase(ctx, id)
}

func (s *appService) GetPurchasesByIDs(ctx context.Context, ids []string) ([]core.Purchase, error) {
	parsed, err := ParseIDs("ids", ids)
	if err != nil {
		return nil, err
	}
	return s.purchases.GetPurchasesByIDs(ctx, parsed)
}

func (s *appService) UpdatePurchase(ctx context.Context, id uuid.UUID, req PurchaseRequest) (*core.Purchase, error) {
	patch, err := req.ToPatch()
	if err != nil {
		return nil, err
	}
	return s.purchases.UpdatePurchase(ctx, id, patch)
}

func (s *appService) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	return s.purchases.DeletePurchase(ctx, id)
}

func (s *appService) ListPurchases(ctx context.Context, f core.PurchaseFilter, page core.PageRequest) (*PurchaseListResult, error) {
	p, err := s.purchases.ListPurchases(ctx, f, page)
	if err != nil {
		return nil, err
	}
	res := &PurchaseListResult{Items: p.Items, NextPageToken: p.NextPageToken, Total: p.Total}
	if n := len(p.Items); n > 0 {
		last := p.Items[n-1].CreatedAt
		res.NextCursor = &last
	}
	return res, nil
}

func (s *appService) NextPONumber(ctx context.Context) (string, error) {
	return s.purchases.NextPONumber(ctx)
}

// ── Invoices ────────────────────────────────────────────────────────────────

func (s *appService) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceView, error) {
	in, err := req.ToInput()
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.CreateInvoice(ctx, in)
	if err != nil {
		return nil, err
	}
	return newInvoiceView(inv), nil
}

func (s *appService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceView, error) {
	inv, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return newInvoiceView(inv), nil
}

func (s *appService) UpdateInvoice(ctx context.Context, id uuid.UUID, req InvoiceRequest) (*InvoiceView, error) {
	patch, err := req.ToPatch()
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.UpdateInvoice(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return newInvoiceView(inv), nil
}

func (s *appService) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*InvoiceView, error) {
	st, err := ParseInvoiceStatus(status)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoices.UpdateInvoiceStatus(ctx, id, st)
	if err != nil {
		return nil, err
	}
	return newInvoiceView(inv), nil
}

func (s *appService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return s.invoices.DeleteInvoice(ctx, id)
}

func (s *appService) ListInvoices(ctx context.Context, f core.InvoiceFilter, page core.PageRequest) (*InvoiceListResult, error) {
	p, err := s.invoices.ListInvoices(ctx, f, page)
	if err != nil {
		return nil, err
	}
	views := make([]InvoiceView, 0, len(p.Items))
	for i := range p.Items {
		views = append(views, *newInvoiceView(&p.Items[i]))
	}
	res := &InvoiceListResult{Items: views, NextPageToken: p.NextPageToken, Total: p.Total}
	if n := len(p.Items); n > 0 {
		last := p.Items[n-1].CreatedAt
		res.NextCursor = &last
	}
	return res, nil
}

func (s *appService) InvoiceStats(ctx context.Context, req InvoiceStatsRequest) (*core.InvoiceStats, error) {
	f, err := s.statsFilter(req)
	if err != nil {
		return nil, err
	}
	return s.invoices.InvoiceStats(ctx, f)
}

// statsFilter resolves the created_at window. A date-only upper bound covers
// the whole day.
func (s *appService) statsFilter(req InvoiceStatsRequest) (core.InvoiceFilter, error) {
	c := newCheck()
	var f core.InvoiceFilter

	if strings.TrimSpace(req.ClientID) != "" {
		id := c.uuid("clientId", req.ClientID)
		f.ClientID = &id
	}

	// The window ends at dateTo (default now) and starts at dateFrom, or 30 days
	// before the end.
	to := s.now()
	if req.DateTo != "" {
		if t, ok := parseBound(req.DateTo, true); ok {
			to = t
		} else {
			c.v.Add("dateTo", "must be a date (YYYY-MM-DD)")
		}
	}
	from := to.Add(-defaultStatsWindow)
	if req.DateFrom != "" {
		if t, ok := parseBound(req.DateFrom, false); ok {
			from = t
		} else {
			c.v.Add("dateFrom", "must be a date (YYYY-MM-DD)")
		}
	}
	if err := c.err(); err != nil {
		return f, err
	}
	f.CreatedFrom, f.CreatedTo = &from, &to
	return f, nil
}

func parseBound(s string, endOfDay bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

func (s *appService) NextInvoiceNumber(ctx context.Context) (string, error) {
	return s.invoices.NextInvoiceNumber(ctx)
}

// ── Finance ─────────────────────────────────────────────────────────────────

func (s *appService) CreateFinanceRecord(ctx context.Context, req FinanceRequest) (*core.FinanceRecord, error) {
	in, err := req.ToInput()
	if err != nil {
		return nil, err
	}
	return s.finance.CreateRecord(ctx, in)
}

func (s *appService) GetFinanceRecord(ctx context.Context, id uuid.UUID) (*core.FinanceRecord, error) {
	return s.finance.GetRecord(ctx, id)
}

func (s *appService) UpdateFinanceRecord(ctx context.Context, id uuid.UUID, req FinanceRequest) (*core.FinanceRecord, error) {
	patch, err := req.ToPatch()
	if err != nil {
		return nil, err
	}
	return s.finance.UpdateRecord(ctx, id, patch)
}

func (s *appService) DeleteFinanceRecord(ctx context.Context, id uuid.UUID) error {
	return s.finance.DeleteRecord(ctx, id)
}

func (s *appService) ListFinanceRecords(ctx context.Context, f core.FinanceFilter, page core.PageRequest) (*core.Page[core.FinanceRecord], error) {
	return s.finance.ListRecords(ctx, f, page)
}

func (s *appService) FinanceStats(ctx context.Context, f core.FinanceFilter) (*core.FinanceStats, error) {
	return s.finance.Stats(ctx, f)
}

// ── Settings ────────────────────────────────────────────────────────────────

func (s *appService) GetSettings(ctx context.Context) (*core.Settings, error) {
	return s.settings.GetSettings(ctx)
}

func (s *appService) PatchSettings(ctx context.Context, body map[string]any) (*core.Settings, error) {
	return s.settings.PatchSettings(ctx, body)
}

func (s *appService) ReplaceSettings(ctx context.Context, body map[string]any) (*core.Settings, error) {
	return s.settings.ReplaceSettings(ctx, body)
}

func (s *appService) SettingsHistory(ctx context.Context, limit int) ([]core.Settings, error) {
	return s.settings.SettingsHistory(ctx, limit)
}

// ── Operational ─────────────────────────────────────────────────────────────

func (s *appService) Health(ctx context.Context) *HealthResult {
	res := &HealthResult{
		Uptime:    s.now().Sub(s.started).Seconds(),
		Database:  "disconnected",
		Timestamp: s.now(),
	}
	if s.pool == nil {
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	var dbNow time.Time
	if err := s.pool.QueryRow(ctx, "SELECT NOW()").Scan(&dbNow); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		return res
	}
	res.OK = true
	res.Database = "connected"
	res.Timestamp = dbNow
	return res
}
