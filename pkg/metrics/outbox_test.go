package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestOutboxMetricsExposedByHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.ObserveRow("bid_placed", OutboxPublished)
	m.ObserveRow("bid_placed", OutboxPublished)
	m.ObserveRow("", OutboxDLQ)
	m.ObserveBatch(20 * time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	text := string(body)
	require.Contains(t, text, `mandi_outbox_rows_total{event_type="bid_placed",outcome="published"} 2`)
	require.Contains(t, text, `mandi_outbox_rows_total{event_type="unknown",outcome="dlq"} 1`)
	require.True(t, strings.Contains(text, "mandi_outbox_batch_duration_seconds_count 1"))
}

func TestNilOutboxMetricsAreNoops(t *testing.T) {
	var m *OutboxMetrics
	m.ObserveRow("x", OutboxRetry)
	m.ObserveBatch(time.Second)
	NewOutboxMetrics(nil).ObserveRow("x", OutboxRetry)
}
