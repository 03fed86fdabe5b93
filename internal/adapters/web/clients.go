package web

import (
	"net/http"

	"trade-ledger/internal/app"
	"trade-ledger/internal/core"
)

// apiListClients handles GET /api/clients.
func (h *Handler) apiListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.ListClients(r.Context(), core.ClientFilter{
		Status: core.ClientStatus(q.Get("status")),
		Search: q.Get("search"),
	}, pageRequest(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, page)
}

// apiCreateClient handles POST /api/clients.
func (h *Handler) apiCreateClient(w http.ResponseWriter, r *http.Request) {
	var body app.ClientRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	c, err := h.svc.CreateClient(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeCreated(w, c)
}

// apiGetClient handles GET /api/clients/{id}.
func (h *Handler) apiGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	c, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

// apiUpdateClient handles PUT and PATCH /api/clients/{id}.
func (h *Handler) apiUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	var body app.ClientRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	c, err := h.svc.UpdateClient(r.Context(), id, body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

// apiDeleteClient handles DELETE /api/clients/{id}.
func (h *Handler) apiDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.svc.DeleteClient(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
