package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.IncLikeToggle(true)
		m.IncRSVP("insert")
		m.AddPoints(5)
		m.SetSubscribers(3)
	})
	assert.Nil(t, New(nil))
}

func TestCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)
	require.NotNil(t, m)

	m.IncLikeToggle(true)
	m.IncLikeToggle(true)
	m.IncLikeToggle(false)
	m.AddPoints(5)
	m.AddPoints(3)
	m.IncRSVP("update")
	m.ObserveRequest("/api/v1/feed", http.MethodGet, http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.likes.WithLabelValues("liked")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.likes.WithLabelValues("unliked")))
	assert.Equal(t, float64(8), testutil.ToFloat64(m.pointsGranted))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ledgerEntries))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rsvps.WithLabelValues("update")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("/api/v1/feed", "GET", "200")))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
