package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kostyay/netinspect/internal/query"
)

func TestNewModel_Defaults(t *testing.T) {
	m := NewModel(Options{})

	if m.collector == nil {
		t.Error("NewModel() should set a collector")
	}
	if m.store == nil || m.engine == nil {
		t.Error("NewModel() should create a store and an engine")
	}
	if m.refreshInterval != DefaultRefreshInterval {
		t.Errorf("refreshInterval = %v, want %v", m.refreshInterval, DefaultRefreshInterval)
	}
	if m.exportDir != "." {
		t.Errorf("exportDir = %q, want .", m.exportDir)
	}
	if m.inputFocused() {
		t.Error("no filter input should be focused initially")
	}
	if m.quitting {
		t.Error("NewModel() should not be quitting")
	}
}

func TestNewModel_InitialState(t *testing.T) {
	m := NewModel(Options{})

	st := m.State()
	if st.Mode != query.MostRecent {
		t.Errorf("Mode = %v, want MostRecent", st.Mode)
	}
	if st.Page != 1 {
		t.Errorf("Page = %d, want 1", st.Page)
	}
	if st.Criteria.IsActive() {
		t.Error("initial criteria should be empty")
	}
}

func TestNewModel_RunsInitialQuery(t *testing.T) {
	m := NewModel(Options{Store: newTestStore(5), Collector: newMockCollector()})

	if m.Result().Total != 5 {
		t.Errorf("Total = %d, want 5", m.Result().Total)
	}
	if len(m.Result().Rows()) != 5 {
		t.Errorf("rows = %d, want 5", len(m.Result().Rows()))
	}
}

func TestNewModel_InputsReflectInitialCriteria(t *testing.T) {
	st := query.NewState()
	st.Criteria = st.Criteria.WithApp("dns").WithCountry("de")

	m := NewModel(Options{Store: newTestStore(5), Collector: newMockCollector(), State: st})

	if got := m.inputs[0].Value(); got != "dns" {
		t.Errorf("app input = %q, want dns", got)
	}
	if got := m.inputs[1].Value(); got != "de" {
		t.Errorf("country input = %q, want de", got)
	}
	// Flows 1 and 3 are dns to DE.
	if m.Result().Total != 2 {
		t.Errorf("Total = %d, want 2", m.Result().Total)
	}
}

func TestNewModel_ClampsInitialPage(t *testing.T) {
	st := query.NewState()
	st.Page = 9

	m := NewModel(Options{Store: newTestStore(25), Collector: newMockCollector(), State: st})

	if m.State().Page != 2 {
		t.Errorf("Page = %d, want 2", m.State().Page)
	}
	if len(m.Result().Rows()) != 5 {
		t.Errorf("rows = %d, want 5", len(m.Result().Rows()))
	}
}

func TestModelImplementsTeaModel(t *testing.T) {
	var _ tea.Model = NewModel(Options{})
}

func TestInit_ReturnsBatchCommand(t *testing.T) {
	m := NewModel(Options{Collector: newMockCollector()})
	if cmd := m.Init(); cmd == nil {
		t.Error("Init() should return a command")
	}
}

func TestRefreshConstants(t *testing.T) {
	if MinRefreshInterval != 500*time.Millisecond {
		t.Errorf("MinRefreshInterval = %v, want 500ms", MinRefreshInterval)
	}
	if MaxRefreshInterval != 10*time.Second {
		t.Errorf("MaxRefreshInterval = %v, want 10s", MaxRefreshInterval)
	}
	if DefaultRefreshInterval != time.Second {
		t.Errorf("DefaultRefreshInterval = %v, want 1s", DefaultRefreshInterval)
	}
	if RefreshStep != 500*time.Millisecond {
		t.Errorf("RefreshStep = %v, want 500ms", RefreshStep)
	}
}
