package core

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
)

// LimitRange is the server-side clamp applied to a list endpoint's page size.
type LimitRange struct {
	Default int
	Min     int
	Max     int
}

// Clamp maps a requested limit into the range. Zero means "not supplied".
func (r LimitRange) Clamp(n int) int {
	switch {
	case n == 0:
		return r.Default
	case n < r.Min:
		return r.Min
	case n > r.Max:
		return r.Max
	}
	return n
}

var (
	ClientLimits         = LimitRange{Default: 25, Min: 1, Max: 100}
	PurchaseLimits       = LimitRange{Default: 25, Min: 1, Max: 500}
	ClientPurchaseLimits = LimitRange{Default: 50, Min: 1, Max: 500}
	InvoiceLimits        = LimitRange{Default: 25, Min: 1, Max: 500}
	FinanceLimits        = LimitRange{Default: 100, Min: 1, Max: 500}
	SettingsHistoryLimit = LimitRange{Default: 10, Min: 1, Max: 50}
)

// EncodePageToken returns the opaque cursor for the page after [offset, offset+limit),
// or nil when there is nothing more to read.
func EncodePageToken(offset, limit int, hasMore bool) *string {
	if !hasMore {
		return nil
	}
	token := base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset + limit)))
	return &token
}

// maxPageOffset bounds decoded offsets so offset+limit cannot overflow.
const maxPageOffset = math.MaxInt32

// DecodePageToken returns the offset carried by token. A missing, malformed,
// negative or out-of-range token decodes to 0.
func DecodePageToken(token string) int {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 || offset > maxPageOffset {
		return 0
	}
	return offset
}

// PageRequest is the decoded pagination and ordering input of a list call.
type PageRequest struct {
	Limit     int
	PageToken string
	Order     SortOrder
	Sort      string
}

// window resolves the request against the resource's limit range.
func (p PageRequest) window(limits LimitRange) (offset, limit int) {
	return DecodePageToken(p.PageToken), limits.Clamp(p.Limit)
}

// Page is one slice of a filtered, ordered result set.
type Page[T any] struct {
	Items         []T     `json:"items"`
	NextPageToken *string `json:"nextPageToken"`
	Total         int     `json:"total"`
}

// NewPage computes hasMore as offset+limit < total and encodes the next cursor.
func NewPage[T any](items []T, offset, limit, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:         items,
		NextPageToken: EncodePageToken(offset, limit, offset+limit < total),
		Total:         total,
	}
}
