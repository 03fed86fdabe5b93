package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"trade-ledger/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func init() {
	// Money and quantities are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true
}

// Config carries the adapter's runtime options.
type Config struct {
	AllowedOrigins string
	// JWTSecret enables RequireAuth on the API routes when non-empty.
	JWTSecret      string
	RequestTimeout time.Duration
	// Production hides store error messages from 500 responses.
	Production bool
	Logger     *zap.Logger
	// Metrics, when set, records every request. MetricsHandler is mounted at /metrics.
	Metrics        *HTTPMetrics
	MetricsHandler http.Handler
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc        app.ApplicationService
	router     chi.Router
	log        *zap.Logger
	jwtSecret  string
	production bool
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, cfg Config) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		svc:        svc,
		log:        log,
		jwtSecret:  cfg.JWTSecret,
		production: cfg.Production,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(CORS(cfg.AllowedOrigins))

	// ── Operational (public) ─────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// ── API ──────────────────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		if h.jwtSecret != "" {
			r.Use(h.RequireAuth)
		}
		r.Use(Timeout(cfg.RequestTimeout))
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		if h.jwtSecret != "" {
			r.Get("/api/auth/me", h.me)
		}

		r.Route("/api/clients", func(r chi.Router) {
			r.Get("/", h.apiListClients)
			r.Post("/", h.apiCreateClient)
			r.Get("/{id}", h.apiGetClient)
			r.Put("/{id}", h.apiUpdateClient)
			r.Patch("/{id}", h.apiUpdateClient)
			r.Delete("/{id}", h.apiDeleteClient)
		})

		r.Route("/api/purchases", func(r chi.Router) {
			r.Get("/", h.apiListPurchases)
			r.Post("/", h.apiCreatePurchase)
			r.Get("/byClient/{clientId}", h.apiListClientPurchases)
			r.Post("/byIds", h.apiPurchasesByIDs)
			r.Get("/next-number", h.apiNextPONumber)
			r.Get("/{id}", h.apiGetPurchase)
			r.Put("/{id}", h.apiUpdatePurchase)
			r.Patch("/{id}", h.apiUpdatePurchase)
			r.Delete("/{id}", h.apiDeletePurchase)
		})

		r.Route("/api/invoices", func(r chi.Router) {
			r.Get("/", h.apiListInvoices)
			r.Post("/", h.apiCreateInvoice)
			r.Get("/stats", h.apiInvoiceStats)
			r.Get("/next-number", h.apiNextInvoiceNumber)
			r.Get("/{id}", h.apiGetInvoice)
			r.Put("/{id}", h.apiUpdateInvoice)
			r.Patch("/{id}", h.apiUpdateInvoice)
			r.Patch("/{id}/status", h.apiUpdateInvoiceStatus)
			r.Delete("/{id}", h.apiDeleteInvoice)
		})

		r.Route("/api/finance", func(r chi.Router) {
			r.Get("/", h.apiListFinance)
			r.Post("/", h.apiCreateFinance)
			r.Get("/stats", h.apiFinanceStats)
			r.Get("/{id}", h.apiGetFinance)
			r.Put("/{id}", h.apiUpdateFinance)
			r.Patch("/{id}", h.apiUpdateFinance)
			r.Delete("/{id}", h.apiDeleteFinance)
		})

		r.Route("/api/settings", func(r chi.Router) {
			r.Get("/", h.apiGetSettings)
			r.Patch("/", h.apiPatchSettings)
			r.Put("/", h.apiReplaceSettings)
			r.Get("/history", h.apiSettingsHistory)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, "route not found", "NOT_FOUND", http.StatusNotFound)
	})

	h.router = r
	return r
}

// health handles GET /api/health. A failed database ping answers 503.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Health(r.Context())
	if !res.OK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(res)
		return
	}
	writeJSON(w, res)
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
