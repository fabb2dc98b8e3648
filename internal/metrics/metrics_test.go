package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestItemEventsAndRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ItemEvent(EventCreated)
	m.ItemEvent(EventCreated)
	m.ItemEvent(EventGiven)
	m.UploadFailures(2)
	m.ObserveRequest("/api/v1/items", http.MethodGet, http.StatusOK, 15*time.Millisecond)
	m.ObserveRequest("", http.MethodGet, http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.itemEvents.WithLabelValues(EventCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemEvents.WithLabelValues(EventGiven)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploadFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/items", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}

func TestSessionsGauge(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ItemEvent(EventDeleted)
		m.UploadFailures(1)
		m.ObserveRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.SessionOpened()
		m.SessionClosed()
	})
}
