package web

import (
	"net/http"
	"strconv"
	"strings"

	"trade-ledger/internal/app"
	"trade-ledger/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// pageRequest reads limit, pageToken, order and sort. A non-numeric limit is
// treated as absent; the service clamps the rest.
func pageRequest(r *http.Request) core.PageRequest {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
	return core.PageRequest{
		Limit:     limit,
		PageToken: q.Get("pageToken"),
		Order:     core.ParseSortOrder(q.Get("order")),
		Sort:      strings.TrimSpace(q.Get("sort")),
	}
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := app.ParseID(name, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// pathUUID parses the named chi URL parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return app.ParseID(name, chi.URLParam(r, name))
}

// queryDate parses an optional YYYY-MM-DD query parameter into dst.
func queryDate(r *http.Request, name string, dst *string) error {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	d, ok := app.NormalizeDate(raw)
	if !ok {
		v := core.NewValidationError()
		v.Add(name, "must be a date (YYYY-MM-DD)")
		return v
	}
	*dst = d
	return nil
}
