package metrics

import "github.com/prometheus/client_golang/prometheus"

// Bid outcomes reported by the auction engine.
const (
	BidAccepted = "accepted"
	BidTooLow   = "too_low"
	BidConflict = "conflict"
	BidRejected = "rejected"
)

// MarketplaceMetrics counts bids, auction outcomes and settlements.
type MarketplaceMetrics struct {
	bids        *prometheus.CounterVec
	closings    *prometheus.CounterVec
	settlements *prometheus.CounterVec
}

// NewMarketplaceMetrics registers the marketplace counters on the provided registerer.
func NewMarketplaceMetrics(reg prometheus.Registerer) *MarketplaceMetrics {
	if reg == nil {
		return &MarketplaceMetrics{}
	}
	bids := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mandi_bids_total",
		Help: "Bids received by the auction engine, by outcome.",
	}, []string{"result"})
	closings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mandi_auctions_closed_total",
		Help: "Auctions closed, by final listing status.",
	}, []string{"status"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mandi_settlements_total",
		Help: "Settlement attempts, by channel and whether a new record was written.",
	}, []string{"channel", "outcome"})
	reg.MustRegister(bids, closings, settlements)
	return &MarketplaceMetrics{
		bids:        bids,
		closings:    closings,
		settlements: settlements,
	}
}

// ObserveBid counts one bid attempt.
func (m *MarketplaceMetrics) ObserveBid(result string) {
	if m == nil || m.bids == nil {
		return
	}
	m.bids.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveAuctionClosed counts an auction reaching sold or unsold.
func (m *MarketplaceMetrics) ObserveAuctionClosed(status string) {
	if m == nil || m.closings == nil {
		return
	}
	m.closings.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveSettlement counts a settle call; duplicate marks an idempotent replay.
func (m *MarketplaceMetrics) ObserveSettlement(channel string, duplicate bool) {
	if m == nil || m.settlements == nil {
		return
	}
	outcome := "recorded"
	if duplicate {
		outcome = "duplicate"
	}
	m.settlements.WithLabelValues(normalizeLabel(channel), outcome).Inc()
}
