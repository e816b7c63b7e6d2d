package query

import (
	"sync"
	"time"

	"github.com/kostyay/netinspect/internal/model"
	"github.com/kostyay/netinspect/internal/store"
)

// Result is the answer to one query.
type Result struct {
	Page  Page
	Total int // matches before pagination
}

// Rows returns the visible rows.
func (r Result) Rows() []model.Record {
	return r.Page.Rows
}

// Observer receives per-query statistics. It is called with the engine lock
// held and must not call back into the engine.
type Observer interface {
	ObserveQuery(cached bool, elapsed time.Duration, matches int)
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// cacheKey holds every input that can change a Result.
type cacheKey struct {
	totals   store.Totals
	version  uint64
	criteria Criteria
	mode     SortMode
	page     int
	pageSize int
}

// Engine filters, sorts and paginates store snapshots. The last result is
// kept and returned again while its inputs are unchanged, which keeps
// refresh ticks cheap when nothing was captured in between.
type Engine struct {
	mu       sync.Mutex
	observer Observer
	now      func() time.Time

	cached bool
	key    cacheKey
	result Result
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query returns the page of snap selected by st. Result.Page.Number is the
// clamped page and should be fed back with SetClampedPage.
func (e *Engine) Query(snap store.Snapshot, st State) Result {
	key := cacheKey{
		totals:   snap.Totals,
		version:  snap.Version,
		criteria: st.Criteria,
		mode:     st.Mode,
		page:     st.Page,
		pageSize: st.PageSize,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.now()
	if e.cached && e.key == key {
		e.observe(true, start, e.result.Total)
		return e.result
	}

	sorted := e.report(snap.Records, st.Criteria, st.Mode)
	page := Paginate(sorted, st.Page, st.PageSize)
	result := Result{Page: page, Total: page.Total}

	e.cached = true
	e.key = key
	e.result = result
	e.observe(false, start, result.Total)

	return result
}

// Report returns every record of snap matching c, sorted by mode, without
// pagination. It bypasses the cache.
func (e *Engine) Report(snap store.Snapshot, c Criteria, mode SortMode) []model.Record {
	return e.report(snap.Records, c, mode)
}

func (e *Engine) report(records []model.Record, c Criteria, mode SortMode) []model.Record {
	matched := Filter(c, records)
	Sort(matched, mode)
	return matched
}

// Invalidate drops the cached result.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cached = false
	e.result = Result{}
}

func (e *Engine) observe(cached bool, start time.Time, matches int) {
	if e.observer == nil {
		return
	}
	e.observer.ObserveQuery(cached, e.now().Sub(start), matches)
}
