package ui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/kostyay/netinspect/internal/collector"
	"github.com/kostyay/netinspect/internal/model"
	"github.com/kostyay/netinspect/internal/query"
	"github.com/kostyay/netinspect/internal/store"
)

// Refresh interval bounds.
const (
	MinRefreshInterval     = 500 * time.Millisecond
	MaxRefreshInterval     = 10 * time.Second
	DefaultRefreshInterval = time.Second
	RefreshStep            = 500 * time.Millisecond
)

// statusTTL is how long a transient status message stays in the footer.
const statusTTL = 3 * time.Second

// noInput marks that the table, not a filter input, has keyboard focus.
const noInput = -1

// Enricher fills in the resolution of freshly collected observations.
type Enricher interface {
	Enrich(ctx context.Context, observations []model.Observation)
}

// StatsObserver receives collection statistics.
type StatsObserver interface {
	ObserveCollect(observations int, err error)
	ObserveStore(connections int, bytes uint64)
}

// UpdateChecker returns a newer release tag, or "" when current.
type UpdateChecker func(ctx context.Context) (string, error)

// Options configures a Model. Zero fields get defaults.
type Options struct {
	Store           *store.Store
	Engine          *query.Engine
	Collector       collector.Collector
	Enricher        Enricher
	Stats           StatsObserver
	Logger          logrus.FieldLogger
	State           query.State
	RefreshInterval time.Duration
	ExportDir       string
	CheckUpdate     UpdateChecker
}

// Model is the Bubble Tea model for the inspect page.
type Model struct {
	// Data
	store     *store.Store
	engine    *query.Engine
	collector collector.Collector
	enricher  Enricher
	stats     StatsObserver
	log       logrus.FieldLogger

	// Query
	state  query.State
	snap   store.Snapshot
	result query.Result

	// Filter inputs, indexed like query.Fields
	inputs [4]textinput.Model
	focus  int

	// UI State
	cursor      int
	loaded      bool
	detailsMode bool
	helpMode    bool
	quitting    bool

	status   string
	statusAt time.Time

	// Error tracking
	lastError     error
	lastErrorTime time.Time

	updateAvailable string
	checkUpdate     UpdateChecker

	// Configuration
	refreshInterval time.Duration
	exportDir       string
	now             func() time.Time

	// Dimensions
	width  int
	height int

	// Viewport for scrollable content
	viewport viewport.Model
	ready    bool // true after viewport initialized on first WindowSizeMsg
}

// NewModel creates a new Model.
func NewModel(opts Options) Model {
	if opts.Store == nil {
		opts.Store = store.New()
	}
	if opts.Engine == nil {
		opts.Engine = query.NewEngine()
	}
	if opts.Collector == nil {
		opts.Collector = collector.New()
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if opts.State == (query.State{}) {
		opts.State = query.NewState()
	}
	if opts.State.Page < 1 {
		opts.State.Page = 1
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	m := Model{
		store:           opts.Store,
		engine:          opts.Engine,
		collector:       opts.Collector,
		enricher:        opts.Enricher,
		stats:           opts.Stats,
		log:             opts.Logger,
		state:           opts.State,
		focus:           noInput,
		refreshInterval: opts.RefreshInterval,
		exportDir:       opts.ExportDir,
		checkUpdate:     opts.CheckUpdate,
		now:             time.Now,
	}
	for i, field := range query.Fields {
		m.inputs[i] = newFilterInput(opts.State.Criteria.Text(field))
	}
	m.runQuery()
	return m
}

func newFilterInput(value string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "any"
	ti.CharLimit = 64
	ti.Width = 12
	ti.SetValue(value)
	return ti
}

// State returns the current query state.
func (m Model) State() query.State {
	return m.state
}

// Result returns the last query result.
func (m Model) Result() query.Result {
	return m.result
}

// selected returns the record under the cursor.
func (m Model) selected() (model.Record, bool) {
	rows := m.result.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return model.Record{}, false
	}
	return rows[m.cursor], true
}

// inputFocused reports whether a filter input has keyboard focus.
func (m Model) inputFocused() bool {
	return m.focus != noInput
}

var _ tea.Model = Model{}
