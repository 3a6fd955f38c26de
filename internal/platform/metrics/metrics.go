package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Mutations        *prometheus.CounterVec
	Published        *prometheus.CounterVec
	HandlerFailures  *prometheus.CounterVec
	ToolCalls        *prometheus.CounterVec
	RequestDurations *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentions_mutations_total",
			Help: "Successful repository mutations by entity family and operation",
		}, []string{"family", "op"}),
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentions_notifications_published_total",
			Help: "Notifications published on the bus by kind",
		}, []string{"kind"}),
		HandlerFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentions_notification_handler_failures_total",
			Help: "Notification handlers that returned an error or panicked, by kind",
		}, []string{"kind"}),
		ToolCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "intentions_tool_calls_total",
			Help: "Tool invocations by tool name and outcome",
		}, []string{"tool", "outcome"}),
		RequestDurations: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intentions_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
}

// IncMutation records a successful mutation.
func (m *Metrics) IncMutation(family, op string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(family, op).Inc()
}

// IncPublished records a published notification.
func (m *Metrics) IncPublished(kind string) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(kind).Inc()
}

// IncHandlerFailure records a failed notification handler.
func (m *Metrics) IncHandlerFailure(kind string) {
	if m == nil {
		return
	}
	m.HandlerFailures.WithLabelValues(kind).Inc()
}

// IncToolCall records a tool invocation outcome ("ok", "not_found", "error").
func (m *Metrics) IncToolCall(tool, outcome string) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
}

// ObserveRequest records an HTTP request duration in seconds.
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDurations.WithLabelValues(route, method, status).Observe(seconds)
}
