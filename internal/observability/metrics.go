package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_http_requests_total",
			Help: "Total number of HTTP requests processed by the messenger service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messenger_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messenger_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_ws_events_total",
			Help: "Total number of websocket lifecycle and inbound events.",
		},
		[]string{"event"},
	)
	eventsDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_events_delivered_total",
			Help: "Outbound events written to at least one live connection.",
		},
		[]string{"type"},
	)
	eventsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_events_dropped_total",
			Help: "Outbound events dropped because the target room was empty.",
		},
		[]string{"type"},
	)
	messagesSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_messages_swept_total",
			Help: "Expired messages removed by the background sweeper.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		eventsDeliveredTotal,
		eventsDroppedTotal,
		messagesSweptTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncEventDelivered(eventType string) {
	eventsDeliveredTotal.WithLabelValues(eventType).Inc()
}

func IncEventDropped(eventType string) {
	eventsDroppedTotal.WithLabelValues(eventType).Inc()
}

func AddMessagesSwept(n int64) {
	messagesSweptTotal.Add(float64(n))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
