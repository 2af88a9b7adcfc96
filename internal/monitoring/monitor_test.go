package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("last_intent", "add_item")
	m.Increment("messages_total")
	m.Increment("messages_total")

	metrics := m.GetMetrics()

	assert.Equal(t, "add_item", metrics["last_intent"])
	assert.Equal(t, int64(2), metrics["messages_total"])
	assert.Contains(t, metrics, "uptime_seconds")
}

func TestMetricsCollector_Counters(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordIntent("add_item")
	mc.RecordIntent("add_item")
	mc.RecordIntent("cancel_order")
	mc.RecordCommand("add_item", ResultApplied)
	mc.RecordCommand("add_item", ResultUnrecognized)
	mc.RecordGeneration(120*time.Millisecond, nil)
	mc.RecordGeneration(time.Second, errors.New("timeout"))
	mc.RecordCheckout(decimal.RequireFromString("12.50"))
	mc.SetActiveSessions(3)

	intents := mc.metrics["intents"].(*prometheus.CounterVec)
	assert.Equal(t, 2.0, testutil.ToFloat64(intents.WithLabelValues("add_item")))
	assert.Equal(t, 1.0, testutil.ToFloat64(intents.WithLabelValues("cancel_order")))

	commands := mc.metrics["commands"].(*prometheus.CounterVec)
	assert.Equal(t, 1.0, testutil.ToFloat64(commands.WithLabelValues("add_item", ResultUnrecognized)))

	assert.Equal(t, 1.0, testutil.ToFloat64(mc.metrics["generation_failures"].(prometheus.Counter)))
	assert.Equal(t, 3.0, testutil.ToFloat64(mc.metrics["active_sessions"].(prometheus.Gauge)))

	snapshot := mc.Monitor().GetMetrics()
	assert.Equal(t, int64(3), snapshot["messages_total"])
	assert.Equal(t, int64(1), snapshot["orders_completed"])
	assert.Equal(t, "cancel_order", snapshot["last_intent"])
}

func TestMetricsCollector_Handler(t *testing.T) {
	mc := NewMetricsCollector()
	mc.RecordIntent("get_menu")

	rec := httptest.NewRecorder()
	mc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `cantina_intents_total{intent="get_menu"} 1`), body)
	assert.Contains(t, body, "cantina_active_sessions")
}

func TestMetricsCollector_IndependentRegistries(t *testing.T) {
	// collectors never share a registry
	assert.NotPanics(t, func() {
		NewMetricsCollector()
		NewMetricsCollector()
	})
}
