// Package metrics exposes query engine and collection metrics for Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics holds the application collectors. It satisfies query.Observer.
type Metrics struct {
	QueriesTotal      *prometheus.CounterVec
	QueryDuration     prometheus.Histogram
	QueryMatches      prometheus.Gauge
	ObservationsTotal prometheus.Counter
	CollectErrors     prometheus.Counter
	Connections       prometheus.Gauge
	TrafficBytes      prometheus.Gauge
}

// New registers the application metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netinspect_queries_total",
				Help: "Inspect queries by cache outcome",
			},
			[]string{"cache"},
		),
		QueryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "netinspect_query_duration_seconds",
				Help:    "Time spent filtering, sorting and paginating",
				Buckets: prometheus.DefBuckets,
			},
		),
		QueryMatches: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "netinspect_query_matches",
				Help: "Records matching the current criteria",
			},
		),
		ObservationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "netinspect_observations_total",
				Help: "Flow sightings merged into the store",
			},
		),
		CollectErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "netinspect_collect_errors_total",
				Help: "Failed collection cycles",
			},
		),
		Connections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "netinspect_connections",
				Help: "Connections held in the store",
			},
		),
		TrafficBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "netinspect_traffic_bytes",
				Help: "Bytes attributed to all stored connections",
			},
		),
	}
}

// ObserveQuery records one engine query.
func (m *Metrics) ObserveQuery(cached bool, elapsed time.Duration, matches int) {
	outcome := "miss"
	if cached {
		outcome = "hit"
	}
	m.QueriesTotal.WithLabelValues(outcome).Inc()
	if !cached {
		m.QueryDuration.Observe(elapsed.Seconds())
	}
	m.QueryMatches.Set(float64(matches))
}

// ObserveCollect records one collection cycle.
func (m *Metrics) ObserveCollect(observations int, err error) {
	if err != nil {
		m.CollectErrors.Inc()
		return
	}
	m.ObservationsTotal.Add(float64(observations))
}

// ObserveStore records the store size and traffic.
func (m *Metrics) ObserveStore(connections int, bytes uint64) {
	m.Connections.Set(float64(connections))
	m.TrafficBytes.Set(float64(bytes))
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	return registry
}

// Handler serves /metrics and /health.
func Handler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// Serve runs the metrics endpoint on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, logger logrus.FieldLogger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Infof("Metrics available at http://%s/metrics", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
