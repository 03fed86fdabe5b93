package web

import (
	"net/http"

	"trade-ledger/internal/app"
	"trade-ledger/internal/core"
)

// apiListInvoices handles GET /api/invoices.
func (h *Handler) apiListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := core.InvoiceFilter{Status: core.InvoiceStatus(q.Get("status"))}

	var err error
	if f.ClientID, err = queryUUID(r, "clientId"); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if f.PurchaseID, err = queryUUID(r, "purchaseId"); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := queryDate(r, "dateFrom", &f.DateFrom); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := queryDate(r, "dateTo", &f.DateTo); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	res, err := h.svc.ListInvoices(r.Context(), f, pageRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiInvoiceStats handles GET /api/invoices/stats.
func (h *Handler) apiInvoiceStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.svc.InvoiceStats(r.Context(), app.InvoiceStatsRequest{
		DateFrom: q.Get("dateFrom"),
		DateTo:   q.Get("dateTo"),
		ClientID: q.Get("clientId"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, stats)
}

// apiNextInvoiceNumber handles GET /api/invoices/next-number.
func (h *Handler) apiNextInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.NextInvoiceNumber(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"invoiceNumber": n})
}

// apiCreateInvoice handles POST /api/invoices.
func (h *Handler) apiCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var body app.InvoiceRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	inv, err := h.svc.CreateInvoice(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, inv)
}

// apiGetInvoice handles GET /api/invoices/{id}.
func (h *Handler) apiGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	inv, err := h.svc.GetInvoice(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

// apiUpdateInvoice handles PUT and PATCH /api/invoices/{id}.
func (h *Handler) apiUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var body app.InvoiceRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	inv, err := h.svc.UpdateInvoice(r.Context(), id, body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

// apiUpdateInvoiceStatus handles PATCH /api/invoices/{id}/status.
func (h *Handler) apiUpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	inv, err := h.svc.UpdateInvoiceStatus(r.Context(), id, body.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, inv)
}

// apiDeleteInvoice handles DELETE /api/invoices/{id}.
func (h *Handler) apiDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.svc.DeleteInvoice(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w)
}
