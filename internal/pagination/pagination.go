// Package pagination splits ordered result sets into fixed-size pages.
package pagination

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultPageSize is used when no positive page size is configured.
const DefaultPageSize = 10

// Window describes one resolved page of an ordered sequence.
type Window struct {
	Number   int   `json:"number"`
	NumPages int   `json:"num_pages"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Offset   int   `json:"-"`
	Limit    int   `json:"-"`
}

// HasNext reports whether a page follows this one.
func (w Window) HasNext() bool { return w.Number < w.NumPages }

// HasPrevious reports whether a page precedes this one.
func (w Window) HasPrevious() bool { return w.Number > 1 }

// NextNumber returns the next page number, or 0 on the last page.
func (w Window) NextNumber() int {
	if !w.HasNext() {
		return 0
	}
	return w.Number + 1
}

// PreviousNumber returns the previous page number, or 0 on the first page.
func (w Window) PreviousNumber() int {
	if !w.HasPrevious() {
		return 0
	}
	return w.Number - 1
}

// MarshalJSON adds the navigation flags to the serialized window.
func (w Window) MarshalJSON() ([]byte, error) {
	type fields Window
	return json.Marshal(struct {
		fields
		HasNext      bool `json:"has_next"`
		HasPrevious  bool `json:"has_previous"`
		NextPage     int  `json:"next_page,omitempty"`
		PreviousPage int  `json:"previous_page,omitempty"`
	}{fields(w), w.HasNext(), w.HasPrevious(), w.NextNumber(), w.PreviousNumber()})
}

// Paginator resolves page numbers against a fixed page size.
type Paginator struct {
	pageSize int
}

// New returns a Paginator. Non-positive sizes fall back to DefaultPageSize.
func New(pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator{pageSize: pageSize}
}

// PageSize returns the configured page size.
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// NumPages returns ceil(total/pageSize), with a minimum of one page so an
// empty sequence still has a single (empty) page.
func (p *Paginator) NumPages(total int64) int {
	if total <= 0 {
		return 1
	}
	size := int64(p.pageSize)
	return int((total + size - 1) / size)
}

// Resolve clamps requested into [1, NumPages(total)] and computes the row
// window for that page. Out-of-range requests never fail.
func (p *Paginator) Resolve(requested int, total int64) Window {
	if total < 0 {
		total = 0
	}
	numPages := p.NumPages(total)
	number := requested
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	offset := (number - 1) * p.pageSize
	limit := p.pageSize
	if remaining := total - int64(offset); remaining < int64(limit) {
		limit = int(max(remaining, 0))
	}

	return Window{
		Number:   number,
		NumPages: numPages,
		PageSize: p.pageSize,
		Total:    total,
		Offset:   offset,
		Limit:    limit,
	}
}

// ParsePage reads a page query value. Empty or non-numeric input yields 1.
func ParsePage(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// Paginate slices an in-memory ordered sequence.
func Paginate[T any](items []T, pageSize, requested int) ([]T, Window) {
	w := New(pageSize).Resolve(requested, int64(len(items)))
	if w.Limit == 0 {
		return []T{}, w
	}
	return items[w.Offset : w.Offset+w.Limit], w
}
