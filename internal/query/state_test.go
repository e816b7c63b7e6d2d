package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, MostRecent, s.Mode)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.False(t, s.Criteria.IsActive())
}

func TestDispatch_SetCriteriaResetsPage(t *testing.T) {
	s := NewState()
	s.Page = 4

	next := s.Dispatch(SetCriteria{Criteria: Criteria{}.WithApp("dns")})

	assert.Equal(t, 1, next.Page)
	assert.Equal(t, "dns", next.Criteria.App())
	assert.Equal(t, 4, s.Page, "Dispatch must not mutate the receiver")
}

func TestDispatch_SameCriteriaKeepsPage(t *testing.T) {
	s := NewState()
	s.Page = 4

	next := s.Dispatch(SetCriteria{Criteria: Criteria{}})
	assert.Equal(t, 4, next.Page)
}

func TestDispatch_SetSortModeResetsPage(t *testing.T) {
	s := NewState()
	s.Page = 3

	next := s.Dispatch(SetSortMode{Mode: MostPackets})
	assert.Equal(t, MostPackets, next.Mode)
	assert.Equal(t, 1, next.Page)

	same := next.Dispatch(ChangePage{Delta: 1}).Dispatch(SetSortMode{Mode: MostPackets})
	assert.Equal(t, 2, same.Page)
}

func TestDispatch_ChangePage(t *testing.T) {
	s := NewState()

	s = s.Dispatch(ChangePage{Delta: 1})
	assert.Equal(t, 2, s.Page)

	s = s.Dispatch(ChangePage{Delta: -1}).Dispatch(ChangePage{Delta: -1})
	assert.Equal(t, 1, s.Page, "page never drops below 1")
}

func TestDispatch_SetClampedPage(t *testing.T) {
	s := NewState().Dispatch(ChangePage{Delta: 9})
	s = s.Dispatch(SetClampedPage{Number: 3})
	assert.Equal(t, 3, s.Page)
}
