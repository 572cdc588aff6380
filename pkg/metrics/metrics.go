// Package metrics provides the Prometheus metrics of the indexer and the query API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultNamespace = "midgardx"

// Metrics holds all Prometheus metrics for one process. Methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion metrics
	PagesIngested  *prometheus.CounterVec
	BucketsWritten *prometheus.CounterVec
	RecordsSkipped *prometheus.CounterVec
	BackfillErrors *prometheus.CounterVec
	HighWaterMark  *prometheus.GaugeVec
	PageDuration   *prometheus.HistogramVec
	TickDuration   prometheus.Histogram

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered on its own registry, with Go and process collectors.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		PagesIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "pages_total",
			Help:      "Upstream pages persisted, by series",
		}, []string{"series"}),
		BucketsWritten: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "buckets_written_total",
			Help:      "Buckets written to the store, by series",
		}, []string{"series"}),
		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "records_skipped_total",
			Help:      "Upstream records dropped by the mapper, by series",
		}, []string{"series"}),
		BackfillErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "errors_total",
			Help:      "Aborted backfill runs, by series and reason",
		}, []string{"series", "reason"}),
		HighWaterMark: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "high_water_mark_seconds",
			Help:      "Latest persisted end_time, by series",
		}, []string{"series"}),
		PageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backfill",
			Name:      "page_duration_seconds",
			Help:      "Time to fetch, map and persist one page",
			Buckets:   prometheus.DefBuckets,
		}, []string{"series"}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Time to run every series of one tick",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Query API requests, by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Query API latency, by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObservePage(series string, written, skipped int, took time.Duration) {
	if m == nil {
		return
	}
	m.PagesIngested.WithLabelValues(series).Inc()
	m.BucketsWritten.WithLabelValues(series).Add(float64(written))
	m.RecordsSkipped.WithLabelValues(series).Add(float64(skipped))
	m.PageDuration.WithLabelValues(series).Observe(took.Seconds())
}

func (m *Metrics) ObserveBackfillError(series, reason string) {
	if m == nil {
		return
	}
	m.BackfillErrors.WithLabelValues(series, reason).Inc()
}

func (m *Metrics) SetHighWaterMark(series string, endTime int64) {
	if m == nil {
		return
	}
	m.HighWaterMark.WithLabelValues(series).Set(float64(endTime))
}

func (m *Metrics) ObserveTick(took time.Duration) {
	if m == nil {
		return
	}
	m.TickDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveRequest(route string, code int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(took.Seconds())
}
