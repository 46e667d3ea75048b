package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auction_house"

// Metrics holds the collectors exported by the service. A nil *Metrics is a valid no-op.
type Metrics struct {
	bids          *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	chat          *prometheus.CounterVec
	notifications *prometheus.CounterVec
	queueDepth    prometheus.Gauge
	sweeps        *prometheus.HistogramVec
	requests      *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. reg must also be a Gatherer to serve /metrics.
func New(reg interface {
	prometheus.Registerer
	prometheus.Gatherer
}) *Metrics {
	m := &Metrics{
		bids: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bids_total",
			Help:      "Bid attempts by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Auction status transitions by target status.",
		}, []string{"to"}),
		chat: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat post attempts by outcome.",
		}, []string{"outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notification_queue_depth",
			Help:      "Notifications waiting for a worker.",
		}),
		sweeps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of background sweeps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}

	reg.MustRegister(m.bids, m.transitions, m.chat, m.notifications, m.queueDepth, m.sweeps, m.requests)
	return m
}

func (m *Metrics) BidAttempt(outcome string) {
	if m == nil {
		return
	}
	m.bids.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Transition(to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(to).Inc()
}

func (m *Metrics) ChatAttempt(outcome string) {
	if m == nil {
		return
	}
	m.chat.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Notification(kind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) QueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func (m *Metrics) ObserveSweep(task string, d time.Duration) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(task).Observe(d.Seconds())
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// Handler serves the registered collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
