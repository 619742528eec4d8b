// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tradedesk"

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WalletOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "operations_total",
			Help:      "Ledger postings by entry type, source and result",
		},
		[]string{"type", "source", "result"},
	)

	WalletVolume = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "volume_total",
			Help:      "Sum of posted amounts in the wallet currency",
		},
		[]string{"type", "source"},
	)

	WalletOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "operation_duration_seconds",
			Help:      "Time spent posting to the ledger",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	TradeSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "submitted_total",
			Help:      "Trades submitted by product and side",
		},
		[]string{"product", "side"},
	)

	TradeReviews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trades",
			Name:      "reviewed_total",
			Help:      "Trade reviews by product and resulting status",
		},
		[]string{"product", "status"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Notifications delivered by channel and result",
		},
		[]string{"channel", "result"},
	)

	AlertsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "dispatched_total",
			Help:      "Alerts fanned out to recipients",
		},
	)
)

// Result labels a counter with the outcome of an operation.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
