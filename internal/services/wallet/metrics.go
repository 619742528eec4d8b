package wallet

import (
	"time"

	"tradedesk/internal/metrics"

	"github.com/shopspring/decimal"
)

// PrometheusMetrics reports postings to the process-wide collectors.
type PrometheusMetrics struct{}

func (PrometheusMetrics) RecordOperation(entryType, source, result string, amount decimal.Decimal, duration time.Duration) {
	metrics.WalletOperations.WithLabelValues(entryType, source, result).Inc()
	metrics.WalletOperationDuration.WithLabelValues(entryType).Observe(duration.Seconds())
	if result == "ok" {
		metrics.WalletVolume.WithLabelValues(entryType, source).Add(amount.InexactFloat64())
	}
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOperation(string, string, string, decimal.Decimal, time.Duration) {}
