package gateway

import (
	"strconv"
	"time"
)

// Pagination describes the page a list result was cut from.
type Pagination struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Total    *int64 `json:"total,omitempty"`
	HasNext  *bool  `json:"hasNext,omitempty"`
}

// Meta is the envelope attached to every successful result.
type Meta struct {
	RequestID string `json:"requestId"`
	// Timestamp is the UTC completion time in RFC 3339 format.
	Timestamp  string      `json:"timestampUtc"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// Response is the envelope-only outcome of Send.
type Response struct {
	StatusCode int  `json:"-"`
	Meta       Meta `json:"meta"`
}

// Result carries a mapped payload with its envelope.
type Result[T any] struct {
	Data T    `json:"data"`
	Meta Meta `json:"meta"`
}

// Pager is implemented by decoded payloads that describe a page.
type Pager interface {
	Pagination() Pagination
}

// Warner is implemented by decoded payloads that carry API warnings.
type Warner interface {
	Warnings() []string
}

func timestamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339Nano)
}

func buildMeta(requestID string, now time.Time, payload any) Meta {
	m := Meta{RequestID: requestID, Timestamp: timestamp(now)}
	if payload == nil {
		return m
	}
	if p, ok := payload.(Pager); ok {
		pg := p.Pagination()
		m.Pagination = &pg
	}
	if w, ok := payload.(Warner); ok {
		if ws := w.Warnings(); len(ws) > 0 {
			m.Warnings = ws
		}
	}
	return m
}

// DefaultPageSize is used when a PageRequest leaves the size unset.
const DefaultPageSize = 50

// PageRequest selects one page of a list endpoint. Pages are zero-based.
type PageRequest struct {
	Page     int
	PageSize int
}

// PagedPath appends page and limit query parameters to resource. A nil p
// requests the first page with DefaultPageSize.
func PagedPath(resource string, p *PageRequest) string {
	page, size := 0, DefaultPageSize
	if p != nil {
		page = max(p.Page, 0)
		if p.PageSize > 0 {
			size = p.PageSize
		}
	}
	return resource + "?page=" + strconv.Itoa(page) + "&limit=" + strconv.Itoa(size)
}
