// Package metrics exposes the Prometheus collectors of the API. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clubhub"

type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	likes           *prometheus.CounterVec
	rsvps           *prometheus.CounterVec
	pointsGranted   prometheus.Counter
	ledgerEntries   prometheus.Counter
	notifications   prometheus.Gauge
}

// New creates the collectors and registers them with registry. A nil
// registry gives a nil *Metrics.
func New(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		return nil
	}

	m := &Metrics{}
	factory := promauto.With(registry)

	m.requests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	m.requestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	m.likes = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_like_toggles_total",
		Help:      "Total number of like toggles by resulting state",
	}, []string{"state"})

	m.rsvps = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "meeting_rsvp_writes_total",
		Help:      "Total number of RSVP writes by action",
	}, []string{"action"})

	m.pointsGranted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_granted_total",
		Help:      "Sum of complexity scores granted",
	})

	m.ledgerEntries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_ledger_entries_total",
		Help:      "Total number of ledger entries appended",
	})

	m.notifications = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_subscribers",
		Help:      "Number of connected notification websockets",
	})

	return m
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) IncLikeToggle(liked bool) {
	if m == nil {
		return
	}
	state := "unliked"
	if liked {
		state = "liked"
	}
	m.likes.WithLabelValues(state).Inc()
}

func (m *Metrics) IncRSVP(action string) {
	if m == nil {
		return
	}
	m.rsvps.WithLabelValues(action).Inc()
}

func (m *Metrics) AddPoints(score int) {
	if m == nil {
		return
	}
	m.ledgerEntries.Inc()
	m.pointsGranted.Add(float64(score))
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.notifications.Set(float64(n))
}
