package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"trade-ledger/internal/core"
	"trade-ledger/internal/logger"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorBody(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func writeErrorBody(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeCreated writes a JSON response with status 201.
func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOK is the acknowledgement body of document deletes.
func writeOK(w http.ResponseWriter) {
	writeJSON(w, map[string]bool{"ok": true})
}

var constraintStatus = map[core.ConstraintKind]struct {
	status int
	code   string
}{
	core.ConstraintDuplicate:  {http.StatusConflict, "DUPLICATE_ENTRY"},
	core.ConstraintForeignKey: {http.StatusBadRequest, "REFERENCE_NOT_FOUND"},
	core.ConstraintNotNull:    {http.StatusBadRequest, "REQUIRED_FIELD_MISSING"},
	core.ConstraintCheck:      {http.StatusBadRequest, "INVALID_FIELD_VALUE"},
}

// writeServiceError maps an ApplicationService error to its HTTP response.
// Store messages reach the client only outside production.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nf *core.NotFoundError
		ve *core.ValidationError
		ce *core.ConstraintError
	)
	switch {
	case errors.As(err, &nf):
		writeError(w, r, nf.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, "not found", "NOT_FOUND", http.StatusNotFound)
	case errors.As(err, &ve):
		writeErrorBody(w, http.StatusBadRequest, errorResponse{
			Error:     "validation failed",
			Code:      "VALIDATION_FAILED",
			RequestID: requestIDFromContext(r.Context()),
			Fields:    ve.Fields,
		})
	case errors.As(err, &ce):
		m, ok := constraintStatus[ce.Kind]
		if !ok {
			m.status, m.code = http.StatusBadRequest, "CONSTRAINT_VIOLATION"
		}
		writeError(w, r, ce.Kind.Message(), m.code, m.status)
	default:
		logger.FromContext(r.Context(), h.log).Error("request failed", zap.Error(err))
		msg := "internal server error"
		if !h.production {
			msg = err.Error()
		}
		writeError(w, r, msg, "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}
