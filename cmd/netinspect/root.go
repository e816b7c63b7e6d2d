package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kostyay/netinspect/internal/collector"
	"github.com/kostyay/netinspect/internal/config"
	"github.com/kostyay/netinspect/internal/dns"
	"github.com/kostyay/netinspect/internal/enrich"
	"github.com/kostyay/netinspect/internal/logging"
	"github.com/kostyay/netinspect/internal/metrics"
	"github.com/kostyay/netinspect/internal/output"
	"github.com/kostyay/netinspect/internal/query"
	"github.com/kostyay/netinspect/internal/store"
	"github.com/kostyay/netinspect/internal/ui"
)

// resolveTimeout bounds how long JSON mode waits for reverse lookups.
const resolveTimeout = 2 * time.Second

// rootOptions holds the root command flags.
type rootOptions struct {
	json      bool
	app       string
	domain    string
	country   string
	asName    string
	favorites bool
	sort      string
	page      int
	pageSize  int
	all       bool
	sample    time.Duration
	noDNS     bool

	logFile     string
	logLevel    string
	metricsAddr string
	geoCountry  string
	geoASN      string
}

var opts rootOptions

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&opts.json, "json", false, "Output in JSON format (for scripting/agent consumption)")
	f.StringVar(&opts.app, "app", "", "Filter by application protocol (substring, case-insensitive)")
	f.StringVar(&opts.domain, "domain", "", "Filter by domain")
	f.StringVar(&opts.country, "country", "", "Filter by country code")
	f.StringVar(&opts.asName, "as", "", "Filter by AS name")
	f.BoolVar(&opts.favorites, "favorites", false, "Only show favorite connections")
	f.StringVar(&opts.sort, "sort", "", "Sort mode: recent, bytes or packets")
	f.IntVar(&opts.page, "page", 1, "Page number (JSON mode)")
	f.IntVar(&opts.pageSize, "page-size", 0, "Rows per page")
	f.BoolVar(&opts.all, "all", false, "Output every match instead of one page (JSON mode)")
	f.DurationVar(&opts.sample, "sample", 0, "Observe traffic for this long before reporting (JSON mode)")
	f.BoolVar(&opts.noDNS, "no-dns", false, "Disable reverse DNS lookups")

	f.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9310)")
	f.StringVar(&opts.geoCountry, "geoip-country", "", "Path to a GeoLite2-Country database")
	f.StringVar(&opts.geoASN, "geoip-asn", "", "Path to a GeoLite2-ASN database")
}

var rootCmd = &cobra.Command{
	Use:   "netinspect",
	Short: "Network inspector - search, sort and page through observed connections",
	Long: `netinspect records the network flows of this host and lets you search them
by application protocol, domain, country and AS, sort them by recency, bytes
or packets, and page through the results 20 at a time.

  netinspect                              # interactive inspector
  netinspect --json --app https --sort bytes
  netinspect --json --all --sample 5s > flows.json`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := loadSettings(cmd)

		state, err := buildState(opts, settings)
		if err != nil {
			return err
		}

		logger, closer, err := logging.New(settings.LogLevel, settings.LogFile)
		if err != nil {
			return err
		}
		defer closer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// JSON mode: explicit flag or non-TTY stdout
		if opts.json || !term.IsTerminal(int(os.Stdout.Fd())) {
			return runJSONMode(ctx, cmd.OutOrStdout(), settings, state, logger)
		}
		return runTUI(ctx, settings, state, logger)
	},
}

// loadSettings reads the settings file and applies flags the user set.
func loadSettings(cmd *cobra.Command) *config.Settings {
	if err := config.InitSettings(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring settings file: %v\n", err)
	}
	if err := config.InitTheme(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring skin file: %v\n", err)
	}
	s := *config.CurrentSettings
	applyFlags(cmd, &s, opts)
	return &s
}

// applyFlags overrides settings with the flags that were given explicitly.
func applyFlags(cmd *cobra.Command, s *config.Settings, o rootOptions) {
	changed := cmd.Flags().Changed
	if changed("sort") {
		s.DefaultSort = o.sort
	}
	if changed("page-size") && o.pageSize > 0 {
		s.PageSize = o.pageSize
	}
	if changed("no-dns") {
		s.DNSEnabled = !o.noDNS
	}
	if changed("log-file") {
		s.LogFile = o.logFile
	}
	if changed("log-level") {
		s.LogLevel = o.logLevel
	}
	if changed("metrics-addr") {
		s.MetricsAddr = o.metricsAddr
	}
	if changed("geoip-country") {
		s.GeoIPCountryDB = o.geoCountry
	}
	if changed("geoip-asn") {
		s.GeoIPASNDB = o.geoASN
	}
}

// buildState returns the initial query state from flags and settings.
func buildState(o rootOptions, s *config.Settings) (query.State, error) {
	mode, err := query.ParseSortMode(s.DefaultSort)
	if err != nil {
		return query.State{}, err
	}
	st := query.NewState()
	st.Criteria = query.NewCriteria(o.app, o.domain, o.country, o.asName, o.favorites)
	st.Mode = mode
	st.Page = max(o.page, 1)
	if s.PageSize > 0 {
		st.PageSize = s.PageSize
	}
	return st, nil
}

// enrichment bundles an Enricher with what must be waited on or closed.
type enrichment struct {
	enricher  *enrich.Enricher
	hostnames *dns.Cache // nil when DNS is disabled
	geo       *enrich.Geo
}

func (e enrichment) Close() error {
	return e.geo.Close()
}

func newEnrichment(s *config.Settings, st *store.Store, logger logrus.FieldLogger) (enrichment, error) {
	geo, err := enrich.OpenGeo(s.GeoIPCountryDB, s.GeoIPASNDB)
	if err != nil {
		return enrichment{}, err
	}

	e := enrichment{geo: geo}
	options := []enrich.Option{
		enrich.WithGeo(geo),
		enrich.WithServiceNames(s.ServiceNames),
		enrich.WithLogger(logger),
	}
	if s.DNSEnabled {
		e.hostnames = dns.NewCache()
		options = append(options, enrich.WithHostnames(e.hostnames, st))
	}
	e.enricher = enrich.New(options...)
	return e, nil
}

// runJSONMode collects once and prints the requested page (or every match).
func runJSONMode(ctx context.Context, w io.Writer, s *config.Settings, state query.State, logger logrus.FieldLogger) error {
	st := store.New()
	e, err := newEnrichment(s, st, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	return reportJSON(ctx, w, jsonRun{
		collector: collector.New(),
		store:     st,
		enrich:    e,
		state:     state,
		all:       opts.all,
		sample:    opts.sample,
	})
}

// jsonRun is one JSON report.
type jsonRun struct {
	collector collector.Collector
	store     *store.Store
	enrich    enrichment
	state     query.State
	all       bool
	sample    time.Duration
}

func reportJSON(ctx context.Context, w io.Writer, r jsonRun) error {
	observations, err := collector.CollectOnce(ctx, r.collector, r.sample)
	if err != nil {
		return fmt.Errorf("failed to collect connections: %w", err)
	}

	if r.enrich.enricher != nil {
		r.enrich.enricher.Enrich(ctx, observations)
	}
	r.store.Observe(observations...)

	// Give reverse lookups a moment, then attach whatever settled.
	if r.enrich.hostnames != nil {
		waitCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
		_ = r.enrich.hostnames.Wait(waitCtx)
		cancel()
		r.enrich.enricher.Enrich(ctx, observations)
		for _, obs := range observations {
			r.store.Resolve(obs.Key, obs.Resolution)
		}
	}

	snap := r.store.Snapshot()
	engine := query.NewEngine()
	rep := output.Report{
		Timestamp: snap.TakenAt,
		Criteria:  r.state.Criteria,
		Mode:      r.state.Mode,
		Totals:    snap.Totals,
	}
	if r.all {
		rep.Records = engine.Report(snap, r.state.Criteria, r.state.Mode)
	} else {
		res := engine.Query(snap, r.state)
		rep.Records = res.Rows()
		rep.Page = &res.Page
	}

	if err := output.RenderJSON(w, rep); err != nil {
		return fmt.Errorf("failed to render JSON: %w", err)
	}
	return nil
}

// runTUI launches the interactive inspector.
func runTUI(ctx context.Context, s *config.Settings, state query.State, logger *logrus.Logger) error {
	st := store.New()
	e, err := newEnrichment(s, st, logger)
	if err != nil {
		return err
	}
	defer e.Close()

	var engineOpts []query.Option
	modelOpts := ui.Options{
		Store:           st,
		Collector:       collector.New(),
		Enricher:        e.enricher,
		Logger:          logger,
		State:           state,
		RefreshInterval: s.RefreshInterval,
		CheckUpdate:     updateChecker(),
	}

	if s.MetricsAddr != "" {
		reg := metrics.NewRegistry()
		m := metrics.New(reg)
		engineOpts = append(engineOpts, query.WithObserver(m))
		modelOpts.Stats = m

		go func() {
			if err := metrics.Serve(ctx, s.MetricsAddr, reg, logger); err != nil {
				logger.WithError(err).Error("metrics endpoint stopped")
			}
		}()
	}
	modelOpts.Engine = query.NewEngine(engineOpts...)

	logger.WithFields(logrus.Fields{
		"version":  version,
		"dns":      s.DNSEnabled,
		"geoip":    s.GeoIPCountryDB != "" || s.GeoIPASNDB != "",
		"pageSize": state.PageSize,
	}).Info("starting inspector")

	p := tea.NewProgram(ui.NewModel(modelOpts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// updateChecker returns the GitHub release check used by the TUI header.
func updateChecker() ui.UpdateChecker {
	if version == "dev" {
		return nil
	}
	checker := newChecker()
	return func(ctx context.Context) (string, error) {
		return checker.CheckLatest(ctx, version)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
