package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostyay/netinspect/internal/model"
)

type countingObserver struct {
	hits, misses int
	lastMatches  int
}

func (o *countingObserver) ObserveQuery(cached bool, _ time.Duration, matches int) {
	if cached {
		o.hits++
	} else {
		o.misses++
	}
	o.lastMatches = matches
}

func stateWith(c Criteria, mode SortMode, page int) State {
	s := NewState()
	s.Criteria = c
	s.Mode = mode
	s.Page = page
	return s
}

func TestQuery_ScenarioMostBytes(t *testing.T) {
	snap := snapshotOf(1, rec(1, 100, 1), rec(2, 500, 1), rec(3, 50, 1))

	res := NewEngine().Query(snap, stateWith(Criteria{}, MostBytes, 1))

	assert.Equal(t, []uint64{500, 100, 50}, bytesOf(res.Rows()))
	assert.Equal(t, 3, res.Total)
}

func TestQuery_ScenarioOnlyFavorites(t *testing.T) {
	snap := snapshotOf(1, rec(1, 100, 1), favorite(rec(2, 500, 1)), rec(3, 50, 1))

	res := NewEngine().Query(snap, stateWith(Criteria{}.WithOnlyFavorites(true), MostBytes, 1))

	assert.Equal(t, []uint64{500}, bytesOf(res.Rows()))
	assert.Equal(t, 1, res.Total)
}

func TestQuery_ScenarioThirdPage(t *testing.T) {
	snap := snapshotOf(1, manyRecords(45)...)

	res := NewEngine().Query(snap, stateWith(Criteria{}, MostBytes, 3))

	assert.Equal(t, 3, res.Page.TotalPages)
	assert.Len(t, res.Rows(), 5)
	assert.Equal(t, 41, res.Page.DisplayStart())
	assert.Equal(t, 45, res.Page.DisplayEnd())
}

func TestQuery_ScenarioClampToLastPage(t *testing.T) {
	snap := snapshotOf(1, manyRecords(45)...)

	third := NewEngine().Query(snap, stateWith(Criteria{}, MostBytes, 3))
	tenth := NewEngine().Query(snap, stateWith(Criteria{}, MostBytes, 10))

	assert.Equal(t, 3, tenth.Page.Number)
	assert.Equal(t, third.Rows(), tenth.Rows())
}

func TestQuery_ScenarioUnresolvedDomain(t *testing.T) {
	snap := snapshotOf(1, rec(1, 10, 1))

	res := NewEngine().Query(snap, stateWith(Criteria{}.WithDomain("example.com"), MostRecent, 1))

	assert.Equal(t, 0, res.Total)
	assert.Equal(t, StatusNoMatches, res.Page.Status())
}

func TestQuery_ClearingFiltersRestoresFullSet(t *testing.T) {
	records := []model.Record{
		favorite(withResolution(rec(1, 300, 1), "https", "a.example.com", "US", "")),
		withResolution(rec(2, 200, 1), "dns", "", "DE", ""),
		rec(3, 100, 1),
	}
	snap := snapshotOf(1, records...)
	e := NewEngine()

	full := e.Query(snap, stateWith(Criteria{}, MostBytes, 1))
	filtered := e.Query(snap, stateWith(NewCriteria("https", "", "US", "", true), MostBytes, 1))
	restored := e.Query(snap, stateWith(Criteria{}, MostBytes, 1))

	assert.Equal(t, 1, filtered.Total)
	assert.Equal(t, full.Rows(), restored.Rows())
	assert.Equal(t, 3, restored.Total)
}

func TestQuery_Memoized(t *testing.T) {
	obs := &countingObserver{}
	e := NewEngine(WithObserver(obs))
	snap := snapshotOf(1, manyRecords(30)...)
	st := stateWith(Criteria{}, MostBytes, 1)

	first := e.Query(snap, st)
	second := e.Query(snap, st)

	assert.Equal(t, 1, obs.misses)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 30, obs.lastMatches)
	assert.Equal(t, first, second)
}

func TestQuery_CacheInvalidatedByEachKeyComponent(t *testing.T) {
	snap := snapshotOf(1, manyRecords(30)...)
	st := stateWith(Criteria{}, MostBytes, 1)

	grown := snapshotOf(1, manyRecords(31)...)
	bumped := snapshotOf(2, manyRecords(30)...)
	moreSize := st
	moreSize.PageSize = 10

	variants := map[string]func(e *Engine) Result{
		"traffic counters": func(e *Engine) Result { return e.Query(grown, st) },
		"version":          func(e *Engine) Result { return e.Query(bumped, st) },
		"criteria":         func(e *Engine) Result { return e.Query(snap, st.Dispatch(SetCriteria{Criteria: Criteria{}.WithApp("x")})) },
		"mode":             func(e *Engine) Result { return e.Query(snap, st.Dispatch(SetSortMode{Mode: MostPackets})) },
		"page":             func(e *Engine) Result { return e.Query(snap, st.Dispatch(ChangePage{Delta: 1})) },
		"page size":        func(e *Engine) Result { return e.Query(snap, moreSize) },
	}

	for name, query := range variants {
		t.Run(name, func(t *testing.T) {
			obs := &countingObserver{}
			e := NewEngine(WithObserver(obs))
			e.Query(snap, st)
			query(e)
			assert.Equal(t, 2, obs.misses)
			assert.Equal(t, 0, obs.hits)
		})
	}
}

func TestQuery_FavoriteToggleInvalidates(t *testing.T) {
	records := manyRecords(5)
	e := NewEngine()
	st := stateWith(Criteria{}.WithOnlyFavorites(true), MostBytes, 1)

	before := e.Query(snapshotOf(1, records...), st)
	require.Equal(t, 0, before.Total)

	records[2] = favorite(records[2])
	after := e.Query(snapshotOf(2, records...), st)
	assert.Equal(t, 1, after.Total)
}

func TestQuery_Invalidate(t *testing.T) {
	obs := &countingObserver{}
	e := NewEngine(WithObserver(obs))
	snap := snapshotOf(1, manyRecords(3)...)
	st := NewState()

	e.Query(snap, st)
	e.Invalidate()
	e.Query(snap, st)

	assert.Equal(t, 2, obs.misses)
}

func TestQuery_DoesNotReorderSnapshot(t *testing.T) {
	records := []model.Record{rec(1, 1, 1), rec(2, 3, 1), rec(3, 2, 1)}
	snap := snapshotOf(1, records...)

	NewEngine().Query(snap, stateWith(Criteria{}, MostBytes, 1))

	assert.Equal(t, 1, snap.Records[0].Value.Index)
	assert.Equal(t, 2, snap.Records[1].Value.Index)
	assert.Equal(t, 3, snap.Records[2].Value.Index)
}

func TestReport_Unpaginated(t *testing.T) {
	snap := snapshotOf(1, manyRecords(45)...)

	all := NewEngine().Report(snap, Criteria{}, MostBytes)

	require.Len(t, all, 45)
	assert.Equal(t, uint64(45), all[0].Value.Bytes)
	assert.Equal(t, uint64(1), all[44].Value.Bytes)
}

func TestQuery_PagesReassembleReport(t *testing.T) {
	snap := snapshotOf(1, manyRecords(57)...)
	e := NewEngine()
	want := e.Report(snap, Criteria{}, MostPackets)

	var got []model.Record
	st := stateWith(Criteria{}, MostPackets, 1)
	for {
		res := e.Query(snap, st)
		got = append(got, res.Rows()...)
		if !res.Page.HasNext() {
			break
		}
		st = st.Dispatch(ChangePage{Delta: 1})
	}
	assert.Equal(t, want, got)
}
