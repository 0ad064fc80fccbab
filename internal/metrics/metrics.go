package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WorkOrdersCreated   prometheus.Counter
	StatusTransitions   *prometheus.CounterVec
	QuoteDecisions      *prometheus.CounterVec
	RemindersSent       prometheus.Counter
	NotificationsQueued *prometheus.CounterVec

	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec

	namespace string
)

// Init registers all collectors on the default registry.
func Init(ns string) {
	if ns == "" {
		ns = "workorders"
	}
	namespace = ns

	WorkOrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "work_orders_created_total",
		Help:      "Total number of work orders created",
	})

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Total number of work order status transitions",
		},
		[]string{"from", "to"},
	)

	QuoteDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_decisions_total",
			Help:      "Total number of quote decisions",
		},
		[]string{"action"},
	)

	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "follow_up_reminders_sent_total",
		Help:      "Total number of automated follow-up reminders sent",
	})

	NotificationsQueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_queued_total",
			Help:      "Total number of notification jobs queued",
		},
		[]string{"kind"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	ErrorTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API error responses",
		},
		[]string{"method", "path", "status"},
	)
}

// Middleware tracks per-route request counts, latency and errors.
// Route templates (not raw URLs) are used as the path label.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		RequestTotal.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
		}).Inc()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		RequestDuration.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": status,
		}).Observe(time.Since(start).Seconds())

		if c.Writer.Status() >= 400 {
			ErrorTotal.With(prometheus.Labels{
				"method": c.Request.Method,
				"path":   path,
				"status": status,
			}).Inc()
		}
	}
}

// Handler exposes the /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RecordTransition(from, to string) {
	if StatusTransitions != nil {
		StatusTransitions.With(prometheus.Labels{"from": from, "to": to}).Inc()
	}
}

func RecordQuoteDecision(action string) {
	if QuoteDecisions != nil {
		QuoteDecisions.With(prometheus.Labels{"action": action}).Inc()
	}
}

func RecordReminderSent() {
	if RemindersSent != nil {
		RemindersSent.Inc()
	}
}

func RecordNotificationQueued(kind string) {
	if NotificationsQueued != nil {
		NotificationsQueued.With(prometheus.Labels{"kind": kind}).Inc()
	}
}
