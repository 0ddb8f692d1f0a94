package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	eventsAppliedTotal   *prometheus.CounterVec
	eventsDroppedTotal   *prometheus.CounterVec
	snapshotFetchesTotal *prometheus.CounterVec
	feedConnectionState  prometheus.Gauge
	viewRequestsTotal    *prometheus.CounterVec
	viewLatencySeconds   *prometheus.HistogramVec
)

// RegisterMetrics initialises the Prometheus collectors for the dashboard engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		eventsAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reconcile_events_applied_total",
			Help: "Total number of push-channel events applied to the entity store.",
		}, []string{"kind"})

		eventsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reconcile_events_dropped_total",
			Help: "Total number of push-channel events dropped without applying.",
		}, []string{"reason"})

		snapshotFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapshot_fetches_total",
			Help: "Total number of full snapshot applications by entity kind.",
		}, []string{"kind"})

		feedConnectionState = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feed_connection_state",
			Help: "Current push-channel state (0 connecting, 1 open, 2 closing, 3 closed).",
		})

		viewRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_requests_total",
			Help: "Total number of dashboard API requests served.",
		}, []string{"method", "route", "status"})

		viewLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_latency_seconds",
			Help:    "Latency distribution for dashboard API requests.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"method", "route"})

		prometheus.MustRegister(
			eventsAppliedTotal,
			eventsDroppedTotal,
			snapshotFetchesTotal,
			feedConnectionState,
			viewRequestsTotal,
			viewLatencySeconds,
		)
	})
}

// EventsApplied exposes the applied-event counter.
func EventsApplied() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsAppliedTotal
}

// EventsDropped exposes the dropped-event counter.
func EventsDropped() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsDroppedTotal
}

// SnapshotFetches exposes the snapshot counter.
func SnapshotFetches() *prometheus.CounterVec {
	RegisterMetrics()
	return snapshotFetchesTotal
}

// FeedState exposes the connection-state gauge.
func FeedState() prometheus.Gauge {
	RegisterMetrics()
	return feedConnectionState
}

// ViewRequests exposes the counter for dashboard requests.
func ViewRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return viewRequestsTotal
}

// ViewLatency exposes the latency histogram for dashboard requests.
func ViewLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return viewLatencySeconds
}
