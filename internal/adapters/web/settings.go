package web

import (
	"net/http"
	"strconv"
)

// apiGetSettings handles GET /api/settings.
func (h *Handler) apiGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetSettings(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

// apiPatchSettings handles PATCH /api/settings.
func (h *Handler) apiPatchSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decodeJSON(w, r, &body) {
		return
	}
	st, err := h.svc.PatchSettings(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

// apiReplaceSettings handles PUT /api/settings.
func (h *Handler) apiReplaceSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if !decodeJSON(w, r, &body) {
		return
	}
	st, err := h.svc.ReplaceSettings(r.Context(), body)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

// apiSettingsHistory handles GET /api/settings/history.
func (h *Handler) apiSettingsHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.svc.SettingsHistory(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"items": items})
}
