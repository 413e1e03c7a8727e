package observability

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application counters for the reconciliation core.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	WebhookEvents   *prometheus.CounterVec
	GatewayRequests *prometheus.CounterVec
	LedgerEntries   *prometheus.CounterVec
}

// NewMetrics registers collectors on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolar_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "escolar_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		WebhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolar_webhook_events_total",
			Help: "Gateway webhook events by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		GatewayRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolar_gateway_requests_total",
			Help: "Payment gateway calls by operation and result.",
		}, []string{"operation", "result"}),
		LedgerEntries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "escolar_ledger_entries_total",
			Help: "Ledger entries created by kind.",
		}, []string{"kind"}),
	}
}

// RecordWebhook counts a processed webhook delivery outcome.
func (m *Metrics) RecordWebhook(eventType, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEvents.WithLabelValues(orUnknown(eventType), orUnknown(outcome)).Inc()
}

// RecordGatewayCall counts a gateway round-trip result.
func (m *Metrics) RecordGatewayCall(operation, result string) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(orUnknown(operation), orUnknown(result)).Inc()
}

// RecordLedgerEntry counts a created ledger entry.
func (m *Metrics) RecordLedgerEntry(kind string) {
	if m == nil {
		return
	}
	m.LedgerEntries.WithLabelValues(orUnknown(kind)).Inc()
}

// MetricsMiddleware records per-request counters and latency.
func MetricsMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.HTTPRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}
