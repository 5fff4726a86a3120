package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const divisor = 100

// Metrics defines all Prometheus metrics for the launch-list service.
type Metrics struct {
	Registry *prometheus.Registry

	// RED (Rate, Errors, Duration) for HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestDuration  *prometheus.HistogramVec

	// Business metrics
	SubscriptionsCreated  *prometheus.CounterVec // by origin
	SubscriptionsExisting *prometheus.CounterVec // by origin
	SubscriptionsRejected prometheus.Counter
	ChatMessages          *prometheus.CounterVec // by agent, result

	// Storage metrics
	StorageOpDuration     *prometheus.HistogramVec
	StorageErrors         *prometheus.CounterVec // by location, op
	StorageExhausted      prometheus.Counter
	SubscribersByLocation *prometheus.GaugeVec
	LocationBreakerOpen   *prometheus.GaugeVec
	ConsolidatedTotal     prometheus.Counter

	// Cron job metrics
	CronRuns        *prometheus.CounterVec
	CronRunDuration *prometheus.HistogramVec

	// Notification metrics
	NotificationsTotal *prometheus.CounterVec // by result

	ServiceUptime prometheus.Gauge

	BusinessErrors  *prometheus.CounterVec
	TechnicalErrors *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics under the given namespace on a private registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	errorLabels := []string{"error_type", "severity"}
	m := &Metrics{
		Registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests total",
			},
			[]string{"method", "endpoint", "status_class"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "In-flight HTTP requests",
			},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		SubscriptionsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_created_total",
				Help:      "New subscribers stored, by storage location",
			},
			[]string{"origin"},
		),
		SubscriptionsExisting: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_existing_total",
				Help:      "Idempotent re-subscribes, by storage location",
			},
			[]string{"origin"},
		),
		SubscriptionsRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_rejected_total",
				Help:      "Subscribe attempts rejected by validation",
			},
		),
		ChatMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_messages_total",
				Help:      "Chat messages processed",
			},
			[]string{"agent", "result"},
		),

		StorageOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_operation_duration_seconds",
				Help:      "Duration of storage location operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"location", "op"},
		),
		StorageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_errors_total",
				Help:      "Storage location operation failures",
			},
			[]string{"location", "op"},
		),
		StorageExhausted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_exhausted_total",
				Help:      "Writes rejected by every storage location",
			},
		),
		SubscribersByLocation: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "subscribers",
				Help:      "Stored subscribers per storage location",
			},
			[]string{"location"},
		),
		LocationBreakerOpen: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "storage_breaker_open",
				Help:      "1 when the circuit breaker of a storage location is open",
			},
			[]string{"location"},
		),
		ConsolidatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscribers_consolidated_total",
				Help:      "Subscribers copied from fallback locations into the primary location",
			},
		),

		CronRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cron_runs_total",
				Help:      "Cron job executions",
			},
			[]string{"job"},
		),
		CronRunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cron_run_duration_seconds",
				Help:      "Duration of cron jobs",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"job"},
		),

		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Outbound subscriber notifications",
			},
			[]string{"result"},
		),

		ServiceUptime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_uptime_seconds",
				Help:      "Service start time in seconds",
			},
		),

		BusinessErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "business_errors_total",
				Help:      "Total business errors",
			},
			errorLabels,
		),
		TechnicalErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "technical_errors_total",
				Help:      "Total technical errors",
			},
			errorLabels,
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestsInFlight,
		m.HTTPRequestDuration,
		m.SubscriptionsCreated,
		m.SubscriptionsExisting,
		m.SubscriptionsRejected,
		m.ChatMessages,
		m.StorageOpDuration,
		m.StorageErrors,
		m.StorageExhausted,
		m.SubscribersByLocation,
		m.LocationBreakerOpen,
		m.ConsolidatedTotal,
		m.CronRuns,
		m.CronRunDuration,
		m.NotificationsTotal,
		m.ServiceUptime,
		m.BusinessErrors,
		m.TechnicalErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m.ServiceUptime.SetToCurrentTime()

	return m
}

// Handler exposes the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// HTTPMiddleware instruments Gin HTTP handlers for RED metrics.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		c.Next()
		m.HTTPRequestsInFlight.Dec()

		dur := time.Since(start).Seconds()
		status := c.Writer.Status()
		statusClass := fmt.Sprintf("%dxx", status/divisor)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, statusClass).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(dur)
	}
}

// CronJob wraps a function with cron metrics (runs + duration).
func (m *Metrics) CronJob(job string, fn func()) {
	start := time.Now()
	m.CronRuns.WithLabelValues(job).Inc()
	fn()
	m.CronRunDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())
}

// RecordNotification counts a notification attempt result ("sent", "failed" or "skipped").
func (m *Metrics) RecordNotification(result string) {
	m.NotificationsTotal.WithLabelValues(result).Inc()
}
