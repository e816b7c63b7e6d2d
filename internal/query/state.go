package query

// State is the user-controlled input of a query. It is passed by value and
// only changed through Dispatch.
type State struct {
	Criteria Criteria
	Mode     SortMode
	Page     int // 1-based, possibly stale until clamped by a query
	PageSize int
}

// NewState returns the initial state: no filters, most recent first, page 1.
func NewState() State {
	return State{
		Mode:     MostRecent,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// Msg is a state change request.
type Msg interface {
	isMsg()
}

// SetCriteria replaces the active filter.
type SetCriteria struct{ Criteria Criteria }

// SetSortMode replaces the active sort.
type SetSortMode struct{ Mode SortMode }

// ChangePage moves the page by Delta (normally ±1).
type ChangePage struct{ Delta int }

// SetClampedPage stores the page number a query settled on.
type SetClampedPage struct{ Number int }

func (SetCriteria) isMsg() {}
func (SetSortMode) isMsg() {}
func (ChangePage) isMsg()  {}
func (SetClampedPage) isMsg() {}

// Dispatch applies msg and returns the new state. Changing the filter or the
// sort restarts at page 1; unchanged values leave the page alone.
func (s State) Dispatch(msg Msg) State {
	switch msg := msg.(type) {
	case SetCriteria:
		if msg.Criteria != s.Criteria {
			s.Criteria = msg.Criteria
			s.Page = 1
		}
	case SetSortMode:
		if msg.Mode != s.Mode {
			s.Mode = msg.Mode
			s.Page = 1
		}
	case ChangePage:
		s.Page += msg.Delta
		if s.Page < 1 {
			s.Page = 1
		}
	case SetClampedPage:
		s.Page = msg.Number
	}
	return s
}
