package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API and the lifecycle
// automation.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal         *prometheus.CounterVec
	httpRequestDuration       *prometheus.HistogramVec
	batchesCompletedTotal     prometheus.Counter
	batchesReactivatedTotal   prometheus.Counter
	studentsCascadedTotal     *prometheus.CounterVec
	notificationsEmittedTotal *prometheus.CounterVec
	webhookEnquiriesTotal     *prometheus.CounterVec
	automationRunDuration     prometheus.Histogram
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "batchline",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "batchline",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		batchesCompletedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "batchline",
				Name:      "batches_completed_total",
				Help:      "Total number of batches auto-completed by the lifecycle automation.",
			},
		),
		batchesReactivatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "batchline",
				Name:      "batches_reactivated_total",
				Help:      "Total number of completed batches manually reactivated.",
			},
		),
		studentsCascadedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "batchline",
				Name:      "students_cascaded_total",
				Help:      "Total number of student status flips caused by batch transitions.",
			},
			[]string{"transition"},
		),
		notificationsEmittedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "batchline",
				Name:      "notifications_emitted_total",
				Help:      "Total number of in-app notifications emitted by kind.",
			},
			[]string{"kind"},
		),
		webhookEnquiriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "batchline",
				Name:      "webhook_enquiries_total",
				Help:      "Total number of enquiry webhook submissions by outcome.",
			},
			[]string{"outcome"},
		),
		automationRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "batchline",
				Name:      "automation_run_duration_seconds",
				Help:      "Duration of one lifecycle automation run in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.batchesCompletedTotal,
		m.batchesReactivatedTotal,
		m.studentsCascadedTotal,
		m.notificationsEmittedTotal,
		m.webhookEnquiriesTotal,
		m.automationRunDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncBatchCompleted() {
	if m == nil {
		return
	}
	m.batchesCompletedTotal.Inc()
}

func (m *Metrics) IncBatchReactivated() {
	if m == nil {
		return
	}
	m.batchesReactivatedTotal.Inc()
}

func (m *Metrics) AddStudentsCascaded(transition string, count int64) {
	if m == nil || count <= 0 {
		return
	}
	m.studentsCascadedTotal.WithLabelValues(normalizeLabel(transition)).Add(float64(count))
}

func (m *Metrics) IncNotificationEmitted(kind string) {
	if m == nil {
		return
	}
	m.notificationsEmittedTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) IncWebhookEnquiry(outcome string) {
	if m == nil {
		return
	}
	m.webhookEnquiriesTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) ObserveAutomationRunDuration(duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.automationRunDuration.Observe(seconds)
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(v string) string {
	normalized := strings.ToLower(strings.TrimSpace(v))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
