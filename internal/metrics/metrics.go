// Package metrics exposes Prometheus collectors for the API client and the
// refresh cycle.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/selfservice0/DynamicShop/internal/refresh"
)

const namespace = "shopdash"

// Cycle outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

var _ refresh.Observer = (*Collectors)(nil)

// MemoStats reports the sort memo's hit and miss counts.
type MemoStats func() (hits, misses int)

// Collectors holds the dashboard's metrics on a private registry.
type Collectors struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	droppedRecords  *prometheus.CounterVec
	sectionDuration *prometheus.HistogramVec
	sectionErrors   *prometheus.CounterVec
	cycles          *prometheus.CounterVec
	snapshotSize    prometheus.Gauge
	lastRefresh     prometheus.Gauge

	mu          sync.RWMutex
	lastCycleAt time.Time
	lastCycleID string
}

// New creates and registers the collectors.
func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of shop API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
		droppedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "dropped_records_total",
			Help:      "Records dropped because they failed validation.",
		}, []string{"endpoint"}),
		sectionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "section_duration_seconds",
			Help:      "Duration of each refresh section fetch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"section"}),
		sectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "section_errors_total",
			Help:      "Failed refresh section fetches.",
		}, []string{"section"}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "cycles_total",
			Help:      "Completed refresh cycles by outcome.",
		}, []string{"outcome"}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_transactions",
			Help:      "Transactions held by the current snapshot.",
		}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last refresh cycle finished.",
		}),
	}

	c.registry.MustRegister(
		c.requestDuration,
		c.droppedRecords,
		c.sectionDuration,
		c.sectionErrors,
		c.cycles,
		c.snapshotSize,
		c.lastRefresh,
		collectors.NewGoCollector(),
	)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// RegisterMemo exports the sort memo counters read from stats.
func (c *Collectors) RegisterMemo(stats MemoStats) {
	c.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sort_memo",
			Name:      "hits_total",
			Help:      "Derivations served from the sort memo.",
		}, func() float64 {
			hits, _ := stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sort_memo",
			Name:      "misses_total",
			Help:      "Derivations that had to sort.",
		}, func() float64 {
			_, misses := stats()
			return float64(misses)
		}),
	)
}

// ObserveRequest records one API request. Its signature matches the API
// client's request observer.
func (c *Collectors) ObserveRequest(endpoint string, status int, duration time.Duration, err error) {
	label := strconv.Itoa(status)
	if err != nil && status == 0 {
		label = "error"
	}
	c.requestDuration.WithLabelValues(endpoint, label).Observe(duration.Seconds())
}

// ObserveDrop records records dropped from an API response.
func (c *Collectors) ObserveDrop(endpoint string, dropped int) {
	c.droppedRecords.WithLabelValues(endpoint).Add(float64(dropped))
}

// SectionDone records one refresh section fetch.
func (c *Collectors) SectionDone(section refresh.Section, duration time.Duration, err error) {
	c.sectionDuration.WithLabelValues(string(section)).Observe(duration.Seconds())
	if err != nil {
		c.sectionErrors.WithLabelValues(string(section)).Inc()
	}
}

// CycleDone records a completed refresh cycle.
func (c *Collectors) CycleDone(result *refresh.Result) {
	c.cycles.WithLabelValues(Outcome(result)).Inc()
	c.snapshotSize.Set(float64(result.Snapshot.Len()))
	c.lastRefresh.Set(float64(result.FinishedAt.Unix()))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastCycleAt = result.FinishedAt
	c.lastCycleID = result.CycleID
}

// Outcome classifies a cycle as ok, partial or failed.
func Outcome(result *refresh.Result) string {
	switch {
	case result.OK():
		return OutcomeOK
	case len(result.Errors) >= len(refresh.Sections):
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}

type healthResponse struct {
	Status      string     `json:"status"`
	LastCycleID string     `json:"lastCycleId,omitempty"`
	LastCycleAt *time.Time `json:"lastCycleAt,omitempty"`
}

// Routes returns a router serving /metrics and /healthz.
func (c *Collectors) Routes() chi.Router {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry}))
	r.Get("/healthz", c.getHealth)
	return r
}

func (c *Collectors) getHealth(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	resp := healthResponse{Status: "ok", LastCycleID: c.lastCycleID}
	if !c.lastCycleAt.IsZero() {
		at := c.lastCycleAt
		resp.LastCycleAt = &at
	}
	c.mu.RUnlock()

	render.JSON(w, r, resp)
}
