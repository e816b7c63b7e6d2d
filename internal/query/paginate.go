package query

import "github.com/kostyay/netinspect/internal/model"

// DefaultPageSize is the number of rows per page.
const DefaultPageSize = 20

// Status classifies a Page for the presentation layer.
type Status int

const (
	// StatusOK means the requested page holds rows.
	StatusOK Status = iota
	// StatusNoMatches means nothing matched the criteria.
	StatusNoMatches
	// StatusOutOfRange means matches exist but the requested page was past
	// the end (or before the start) and was clamped.
	StatusOutOfRange
)

// String returns a human-readable name for the Status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoMatches:
		return "no matches"
	case StatusOutOfRange:
		return "out of range"
	default:
		return "unknown"
	}
}

// Page is one window over a sorted sequence.
type Page struct {
	Rows       []model.Record
	Number     int  // clamped 1-based page number
	Requested  int  // page number asked for
	Size       int  // rows per page
	TotalPages int  // always >= 1
	Total      int  // length of the full sequence
	Start      int  // 0-based index of the first row
	End        int  // 0-based index of the last row, -1 when empty
	Clamped    bool // Number != Requested
}

// Paginate returns the window for page over sorted. The page number is
// clamped to [1, TotalPages]; callers should keep Page.Number rather than
// the number they asked for.
func Paginate(sorted []model.Record, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(sorted)
	totalPages := TotalPages(total, size)
	number := ClampPage(page, totalPages)

	p := Page{
		Number:     number,
		Requested:  page,
		Size:       size,
		TotalPages: totalPages,
		Total:      total,
		Start:      (number - 1) * size,
		End:        -1,
		Clamped:    number != page,
	}
	if total == 0 {
		p.Start = 0
		return p
	}

	end := min(p.Start+size, total)
	p.Rows = sorted[p.Start:end:end]
	p.End = end - 1
	return p
}

// TotalPages returns max(1, ceil(total/size)).
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ClampPage clamps page into [1, totalPages].
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Status reports whether the page is empty because nothing matched, was
// clamped from an out-of-range request, or is a normal page.
func (p Page) Status() Status {
	switch {
	case p.Total == 0:
		return StatusNoMatches
	case p.Clamped:
		return StatusOutOfRange
	default:
		return StatusOK
	}
}

// Empty reports whether there are no matches at all.
func (p Page) Empty() bool {
	return p.Total == 0
}

// DisplayStart returns the 1-based index of the first row, 0 when empty.
func (p Page) DisplayStart() int {
	if p.Total == 0 {
		return 0
	}
	return p.Start + 1
}

// DisplayEnd returns the 1-based index of the last row, 0 when empty.
func (p Page) DisplayEnd() int {
	return p.End + 1
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}
