// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cafe",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	OrdersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "orders_created_total",
			Help:      "Orders committed",
		},
	)

	StatusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "order_status_transitions_total",
			Help:      "Committed order status changes by target status",
		},
		[]string{"to"},
	)

	PriceFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "price_fallbacks_total",
			Help:      "Prices taken from the client because the catalog could not resolve them",
		},
		[]string{"kind"},
	)

	BroadcastEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Subsystem: "ws",
			Name:      "events_total",
			Help:      "Realtime events broadcast by type",
		},
		[]string{"type"},
	)

	BroadcastDrops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Subsystem: "ws",
			Name:      "dropped_clients_total",
			Help:      "Clients disconnected because their send buffer was full",
		},
	)

	WSClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cafe",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected realtime clients",
		},
	)

	NotificationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "notification_failures_total",
			Help:      "Emails that could not be sent, by kind",
		},
		[]string{"kind"},
	)

	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by a rate limiter",
		},
		[]string{"limiter"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPDuration,
		HTTPRequests,
		OrdersCreated,
		StatusTransitions,
		PriceFallbacks,
		BroadcastEvents,
		BroadcastDrops,
		WSClients,
		NotificationFailures,
		RateLimited,
	)
}
