package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kostyay/netinspect/internal/output"
	"github.com/kostyay/netinspect/internal/query"
)

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.tickCmd(),
		m.fetchData(),
	}
	if m.checkUpdate != nil {
		cmds = append(cmds, m.checkUpdateCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate viewport height: total - header - footer - frame borders - frozen rows
		viewportHeight := msg.Height - headerHeight - footerHeight - frameHeight - frozenHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		// Viewport width accounts for frame border and padding (2 border + 2 padding)
		viewportWidth := msg.Width - 4
		if viewportWidth < 1 {
			viewportWidth = 1
		}

		if !m.ready {
			m.viewport = viewport.New(viewportWidth, viewportHeight)
			m.ready = true
		} else {
			m.viewport.Width = viewportWidth
			m.viewport.Height = viewportHeight
		}
		m.updateViewportContent()
		m.syncViewportScroll()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TickMsg:
		// Schedule next tick and fetch new data
		return m, tea.Batch(
			m.tickCmd(),
			m.fetchData(),
		)

	case DataMsg:
		if msg.Err != nil {
			// Store error for display in UI
			m.lastError = msg.Err
			m.lastErrorTime = m.now()
			m.log.WithError(msg.Err).Warn("collection failed")
			return m, nil
		}
		// Clear error on successful fetch
		m.lastError = nil
		m.loaded = true
		if msg.Added > 0 {
			m.log.WithField("added", msg.Added).Debug("new connections")
		}
		m.runQuery()
		return m, nil

	case ExportMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Export failed: %v", msg.Err))
			m.log.WithError(msg.Err).Error("export failed")
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Exported %d connections to %s", msg.Count, msg.Path))
		m.log.WithField("path", msg.Path).Info("report exported")
		return m, nil

	case UpdateMsg:
		m.updateAvailable = msg.Latest
		return m, nil
	}

	// Cursor blink and other input messages go to the focused filter.
	if m.inputFocused() {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Help modal intercepts all keys
	if m.helpMode {
		switch key {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc", "?", "q", "enter":
			m.helpMode = false
		}
		return m, nil
	}

	// Details modal intercepts all keys
	if m.detailsMode {
		switch key {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc", "enter", "backspace", "q":
			m.detailsMode = false
		case "*":
			m.toggleFavorite()
		}
		return m, nil
	}

	// Filter inputs intercept all keys
	if m.inputFocused() {
		return m.handleInputKey(msg)
	}

	switch {
	case matchKey(key, KeyQuit, KeyQuitAlt):
		m.quitting = true
		return m, tea.Quit

	case matchKey(key, KeyUp, KeyUpAlt):
		if m.cursor > 0 {
			m.cursor--
		}
		m.updateViewportContent()
		m.syncViewportScroll()
		return m, nil

	case matchKey(key, KeyDown, KeyDownAlt):
		if m.cursor < len(m.result.Rows())-1 {
			m.cursor++
		}
		m.updateViewportContent()
		m.syncViewportScroll()
		return m, nil

	case matchKey(key, KeyPrevPage, KeyPrevAlt), key == "h":
		if m.result.Page.HasPrev() {
			m.dispatch(query.ChangePage{Delta: -1})
		}
		return m, nil

	case matchKey(key, KeyNextPage, KeyNextAlt), key == "l":
		if m.result.Page.HasNext() {
			m.dispatch(query.ChangePage{Delta: 1})
		}
		return m, nil

	case matchKey(key, KeySortMode):
		m.dispatch(query.SetSortMode{Mode: m.state.Mode.Next()})
		return m, nil

	case matchKey(key, KeyFavorites):
		c := m.state.Criteria
		m.dispatch(query.SetCriteria{Criteria: c.WithOnlyFavorites(!c.OnlyFavorites())})
		return m, nil

	case matchKey(key, KeyClearAll):
		for i := range m.inputs {
			m.inputs[i].SetValue("")
		}
		m.dispatch(query.SetCriteria{Criteria: query.Criteria{}})
		return m, nil

	case matchKey(key, KeySearch, KeyNextInput):
		return m, m.focusInput(0)

	case matchKey(key, KeyPrevInput):
		return m, m.focusInput(len(m.inputs) - 1)

	case matchKey(key, KeyFavorite):
		m.toggleFavorite()
		return m, nil

	case matchKey(key, KeyEnter):
		if _, ok := m.selected(); ok {
			m.detailsMode = true
		}
		return m, nil

	case matchKey(key, KeyExportJSON):
		return m, m.exportCmd("json")

	case matchKey(key, KeyExportCSV):
		return m, m.exportCmd("csv")

	case matchKey(key, KeyHelp):
		m.helpMode = true
		return m, nil

	case key == "+" || key == "=":
		// Decrease refresh interval (faster refresh)
		if m.refreshInterval > MinRefreshInterval {
			m.refreshInterval -= RefreshStep
		}
		return m, nil

	case key == "-" || key == "_":
		// Increase refresh interval (slower refresh)
		if m.refreshInterval < MaxRefreshInterval {
			m.refreshInterval += RefreshStep
		}
		return m, nil
	}

	// Pass unhandled keys to viewport for page up/down, mouse scroll, etc.
	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc", "enter":
		m.blurInputs()
		return m, nil

	case KeyNextInput.Key:
		if m.focus == len(m.inputs)-1 {
			m.blurInputs()
			return m, nil
		}
		return m, m.focusInput(m.focus + 1)

	case KeyPrevInput.Key:
		if m.focus == 0 {
			m.blurInputs()
			return m, nil
		}
		return m, m.focusInput(m.focus - 1)

	case KeyClearInput.Key:
		field := query.Fields[m.focus]
		m.inputs[m.focus].SetValue("")
		m.dispatch(query.SetCriteria{Criteria: m.state.Criteria.Cleared(field)})
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.applyInputs()
	return m, cmd
}

// focusInput moves keyboard focus to filter input i.
func (m *Model) focusInput(i int) tea.Cmd {
	m.blurInputs()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) blurInputs() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = noInput
}

// applyInputs rebuilds the criteria from the filter inputs.
func (m *Model) applyInputs() {
	c := m.state.Criteria
	for i, field := range query.Fields {
		c = c.WithText(field, m.inputs[i].Value())
	}
	m.dispatch(query.SetCriteria{Criteria: c})
}

// dispatch applies a state change and re-runs the query. The cursor returns
// to the top whenever the state actually changed.
func (m *Model) dispatch(msg query.Msg) {
	prev := m.state
	m.state = m.state.Dispatch(msg)
	if m.state != prev {
		m.cursor = 0
		if m.ready {
			m.viewport.GotoTop()
		}
	}
	m.runQuery()
}

// runQuery takes a fresh snapshot and queries it with the current state.
// The page the engine settled on is fed back into the state.
func (m *Model) runQuery() {
	m.snap = m.store.Snapshot()
	m.result = m.engine.Query(m.snap, m.state)
	if m.result.Page.Number != m.state.Page {
		m.state = m.state.Dispatch(query.SetClampedPage{Number: m.result.Page.Number})
	}
	m.clampCursor()
	m.updateViewportContent()
	m.syncViewportScroll()
}

// clampCursor ensures cursor is within bounds after the rows change.
func (m *Model) clampCursor() {
	n := len(m.result.Rows())
	if n == 0 {
		m.cursor = 0
	} else if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m *Model) toggleFavorite() {
	rec, ok := m.selected()
	if !ok {
		return
	}
	if m.store.ToggleFavorite(rec.Key) {
		m.setStatus("★ Added to favorites")
	} else {
		m.setStatus("Removed from favorites")
	}
	m.runQuery()
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusAt = m.now()
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchData collects, enriches and stores one batch of observations.
func (m Model) fetchData() tea.Cmd {
	c, enricher, st, stats := m.collector, m.enricher, m.store, m.stats
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		observations, err := c.Collect(ctx)
		if stats != nil {
			stats.ObserveCollect(len(observations), err)
		}
		if err != nil {
			return DataMsg{Err: err}
		}

		// Reverse lookups outlive this cycle, so they get their own context.
		if enricher != nil {
			enricher.Enrich(context.Background(), observations)
		}
		added := st.Observe(observations...)

		if stats != nil {
			totals := st.Totals()
			stats.ObserveStore(totals.Connections, totals.Bytes)
		}
		return DataMsg{Observed: len(observations), Added: added}
	}
}

// exportCmd writes the unpaginated report for the current state.
func (m Model) exportCmd(ext string) tea.Cmd {
	snap, st, engine, dir, now := m.snap, m.state, m.engine, m.exportDir, m.now()
	return func() tea.Msg {
		records := engine.Report(snap, st.Criteria, st.Mode)
		path := filepath.Join(dir, output.DefaultReportName(now, ext))
		err := output.WriteFile(path, output.Report{
			Timestamp: now,
			Criteria:  st.Criteria,
			Mode:      st.Mode,
			Totals:    snap.Totals,
			Records:   records,
		})
		return ExportMsg{Path: path, Count: len(records), Err: err}
	}
}

func (m Model) checkUpdateCmd() tea.Cmd {
	check := m.checkUpdate
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		latest, err := check(ctx)
		if err != nil {
			return nil
		}
		return UpdateMsg{Latest: latest}
	}
}
