package web

import (
	"net/http"

	"trade-ledger/internal/app"
	"trade-ledger/internal/core"
)

func financeFilter(r *http.Request) core.FinanceFilter {
	q := r.URL.Query()
	return core.FinanceFilter{
		Type:          core.FinanceType(q.Get("type")),
		Category:      q.Get("category"),
		Status:        core.FinanceStatus(q.Get("status")),
		PaymentMethod: q.Get("paymentMethod"),
		Search:        q.Get("search"),
	}
}

// apiListFinance handles GET /api/finance.
func (h *Handler) apiListFinance(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListFinanceRecords(r.Context(), financeFilter(r), pageRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, page)
}

// apiFinanceStats handles GET /api/finance/stats.
func (h *Handler) apiFinanceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.FinanceStats(r.Context(), financeFilter(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

// apiCreateFinance handles POST /api/finance.
func (h *Handler) apiCreateFinance(w http.ResponseWriter, r *http.Request) {
	var body app.FinanceRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	rec, err := h.svc.CreateFinanceRecord(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, rec)
}

// apiGetFinance handles GET /api/finance/{id}.
func (h *Handler) apiGetFinance(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	rec, err := h.svc.GetFinanceRecord(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rec)
}

// apiUpdateFinance handles PUT and PATCH /api/finance/{id}.
func (h *Handler) apiUpdateFinance(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var body app.FinanceRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	rec, err := h.svc.UpdateFinanceRecord(r.Context(), id, body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rec)
}

// apiDeleteFinance handles DELETE /api/finance/{id}.
func (h *Handler) apiDeleteFinance(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.svc.DeleteFinanceRecord(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w)
}
