package web

import (
	"net/http"
	"strings"

	"trade-ledger/internal/app"
	"trade-ledger/internal/core"
)

// apiListPurchases handles GET /api/purchases.
func (h *Handler) apiListPurchases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID, err := queryUUID(r, "clientId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.listPurchases(w, r, core.PurchaseFilter{
		Status:   core.PurchaseStatus(q.Get("status")),
		ClientID: clientID,
		POPrefix: strings.TrimSpace(q.Get("poPrefix")),
	}, pageRequest(r))
}

// apiListClientPurchases handles GET /api/purchases/byClient/{clientId}.
func (h *Handler) apiListClientPurchases(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "clientId")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	page := pageRequest(r)
	if page.Limit == 0 {
		page.Limit = core.ClientPurchaseLimits.Default
	}
	h.listPurchases(w, r, core.PurchaseFilter{
		Status:   core.PurchaseStatus(r.URL.Query().Get("status")),
		ClientID: &clientID,
	}, page)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request, f core.PurchaseFilter, page core.PageRequest) {
	res, err := h.svc.ListPurchases(r.Context(), f, page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// apiPurchasesByIDs handles POST /api/purchases/byIds.
func (h *Handler) apiPurchasesByIDs(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	items, err := h.svc.GetPurchasesByIDs(r.Context(), body.IDs)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []core.Purchase{}
	}
	writeJSON(w, items)
}

// apiNextPONumber handles GET /api/purchases/next-number.
func (h *Handler) apiNextPONumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.NextPONumber(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"poNumber": n})
}

// apiCreatePurchase handles POST /api/purchases.
func (h *Handler) apiCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var body app.PurchaseRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := h.svc.CreatePurchase(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, p)
}

// apiGetPurchase handles GET /api/purchases/{id}.
func (h *Handler) apiGetPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	p, err := h.svc.GetPurchase(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// apiUpdatePurchase handles PUT and PATCH /api/purchases/{id}.
func (h *Handler) apiUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var body app.PurchaseRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	p, err := h.svc.UpdatePurchase(r.Context(), id, body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// apiDeletePurchase handles DELETE /api/purchases/{id}.
func (h *Handler) apiDeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.svc.DeletePurchase(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeOK(w)
}
