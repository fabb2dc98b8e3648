package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Item lifecycle events
const (
	EventCreated = "created"
	EventGiven   = "given"
	EventDeleted = "deleted"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	itemEvents     *prometheus.CounterVec
	uploadFailures prometheus.Counter
	sessions       prometheus.Gauge
}

// New registers the application collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giveup_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giveup_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		itemEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giveup_item_events_total",
			Help: "Item lifecycle transitions.",
		}, []string{"event"}),
		uploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giveup_image_upload_failures_total",
			Help: "Image uploads that failed during item creation.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "giveup_session_streams",
			Help: "Open session stream connections.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.itemEvents, m.uploadFailures, m.sessions)
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ItemEvent counts an item lifecycle transition
func (m *Metrics) ItemEvent(event string) {
	if m == nil {
		return
	}
	m.itemEvents.WithLabelValues(event).Inc()
}

// UploadFailures counts failed image uploads
func (m *Metrics) UploadFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.uploadFailures.Add(float64(n))
}

// SessionOpened tracks a new session stream connection
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

// SessionClosed tracks a closed session stream connection
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}
