package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Publish outcomes for a single outbox row.
const (
	OutboxPublished = "published"
	OutboxRetry     = "retry"
	OutboxDLQ       = "dlq"
)

// OutboxMetrics tracks the relay from outbox_events to NATS.
type OutboxMetrics struct {
	rows  *prometheus.CounterVec
	batch prometheus.Histogram
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mandi_outbox_rows_total",
		Help: "Outbox rows handled by the publisher, by event type and outcome.",
	}, []string{"event_type", "outcome"})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mandi_outbox_batch_duration_seconds",
		Help:    "Time spent relaying one non-empty batch.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})
	reg.MustRegister(rows, batch)
	return &OutboxMetrics{rows: rows, batch: batch}
}

func (m *OutboxMetrics) ObserveRow(eventType, outcome string) {
	if m == nil || m.rows == nil {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(eventType), outcome).Inc()
}

func (m *OutboxMetrics) ObserveBatch(d time.Duration) {
	if m == nil || m.batch == nil {
		return
	}
	m.batch.Observe(d.Seconds())
}
