package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec

	storeMutationsTotal  *prometheus.CounterVec
	sessionOpsTotal      *prometheus.CounterVec
	uploadLatencySeconds prometheus.Histogram
	uploadRejectedTotal  *prometheus.CounterVec
	eventsClientsActive  prometheus.Gauge
	eventsPublishedTotal *prometheus.CounterVec
)

// RegisterMetrics registers every collector once with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "algotutor",
			Name:      "api_requests_total",
			Help:      "API requests by route template and status code.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "algotutor",
			Name:      "api_latency_seconds",
			Help:      "API request latency by route template.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2.5, 8),
		}, []string{"method", "route"})

		storeMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "store_mutations_total",
			Help: "Mutations attempted against the in-memory collections.",
		}, []string{"collection", "action", "result"})

		sessionOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_operations_total",
			Help: "Session store operations by outcome.",
		}, []string{"operation", "result"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Time spent handing files to the blob store.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Uploads rejected before or during storage.",
		}, []string{"reason"})

		eventsClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "events_clients_active",
			Help: "Connected change-stream subscribers.",
		})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Change events delivered to local subscribers.",
		}, []string{"collection"})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds,
			storeMutationsTotal, sessionOpsTotal,
			uploadLatencySeconds, uploadRejectedTotal,
			eventsClientsActive, eventsPublishedTotal,
		)
	})
}

// APIRequests counts API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the API latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// StoreMutations counts collection mutations by outcome
// (applied, noop, denied, rejected).
func StoreMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return storeMutationsTotal
}

// SessionOperations counts login, logout and restore outcomes.
func SessionOperations() *prometheus.CounterVec {
	RegisterMetrics()
	return sessionOpsTotal
}

// UploadLatency exposes the blob upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// UploadRejected counts rejected uploads by reason.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// EventsClientsActive tracks connected change-stream clients.
func EventsClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return eventsClientsActive
}

// EventsPublished counts delivered change events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}
