package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Command results reported by RecordCommand
const (
	ResultApplied      = "applied"
	ResultUnrecognized = "unrecognized"
)

// MetricsCollector exports interpreter, ledger and session metrics on a
// private registry and mirrors headline values into a Monitor snapshot.
type MetricsCollector struct {
	registry *prometheus.Registry
	metrics  map[string]prometheus.Collector
	monitor  *Monitor
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()

	intents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cantina_intents_total",
			Help: "Utterances classified per intent",
		},
		[]string{"intent"},
	)

	commands := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cantina_commands_total",
			Help: "Order commands applied to ledgers",
		},
		[]string{"intent", "result"},
	)

	generationFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cantina_generation_failures_total",
			Help: "Response generator calls that failed",
		},
	)

	generationDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cantina_generation_duration_seconds",
			Help:    "Time spent waiting on the response generator",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	checkoutTotal := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cantina_checkout_total_amount",
			Help:    "Order totals at checkout",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	activeSessions := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cantina_active_sessions",
			Help: "Conversations currently held in memory",
		},
	)

	metrics := map[string]prometheus.Collector{
		"intents":             intents,
		"commands":            commands,
		"generation_failures": generationFailures,
		"generation_duration": generationDuration,
		"checkout_total":      checkoutTotal,
		"active_sessions":     activeSessions,
	}

	for _, metric := range metrics {
		registry.MustRegister(metric)
	}

	return &MetricsCollector{
		registry: registry,
		metrics:  metrics,
		monitor:  NewMonitor(),
	}
}

// Registry exposes the collector's registry
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// Monitor returns the in-process snapshot of headline values
func (mc *MetricsCollector) Monitor() *Monitor {
	return mc.monitor
}

// Handler serves the registry in the Prometheus text format
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

// RecordIntent counts one classified utterance
func (mc *MetricsCollector) RecordIntent(intent string) {
	if counter, ok := mc.metrics["intents"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(intent).Inc()
	}
	mc.monitor.Increment("messages_total")
	mc.monitor.RecordMetric("last_intent", intent)
}

// RecordCommand counts one applied command
func (mc *MetricsCollector) RecordCommand(intent, result string) {
	if counter, ok := mc.metrics["commands"].(*prometheus.CounterVec); ok {
		counter.WithLabelValues(intent, result).Inc()
	}
	mc.monitor.Increment("commands_" + result)
}

// RecordGeneration observes one generator call
func (mc *MetricsCollector) RecordGeneration(elapsed time.Duration, err error) {
	if histogram, ok := mc.metrics["generation_duration"].(prometheus.Histogram); ok {
		histogram.Observe(elapsed.Seconds())
	}
	if err != nil {
		if counter, ok := mc.metrics["generation_failures"].(prometheus.Counter); ok {
			counter.Inc()
		}
		mc.monitor.Increment("generation_failures")
	}
}

// RecordCheckout observes the total of a completed order
func (mc *MetricsCollector) RecordCheckout(total decimal.Decimal) {
	if histogram, ok := mc.metrics["checkout_total"].(prometheus.Histogram); ok {
		histogram.Observe(total.InexactFloat64())
	}
	mc.monitor.Increment("orders_completed")
}

// SetActiveSessions sets the live session gauge
func (mc *MetricsCollector) SetActiveSessions(n int) {
	if gauge, ok := mc.metrics["active_sessions"].(prometheus.Gauge); ok {
		gauge.Set(float64(n))
	}
	mc.monitor.RecordMetric("active_sessions", n)
}
