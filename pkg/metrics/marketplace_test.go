package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMarketplaceMetricsCountBidsBySettlementOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMarketplaceMetrics(reg)

	m.ObserveBid(BidAccepted)
	m.ObserveBid(BidAccepted)
	m.ObserveBid(BidTooLow)
	m.ObserveAuctionClosed("sold")
	m.ObserveSettlement("marketplace", false)
	m.ObserveSettlement("marketplace", true)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "mandi_bids_total", map[string]string{"result": BidAccepted}); err != nil || got != 2 {
		t.Fatalf("expected accepted=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "mandi_bids_total", map[string]string{"result": BidTooLow}); err != nil || got != 1 {
		t.Fatalf("expected too_low=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "mandi_auctions_closed_total", map[string]string{"status": "sold"}); err != nil || got != 1 {
		t.Fatalf("expected sold=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "mandi_settlements_total", map[string]string{"outcome": "duplicate"}); err != nil || got != 1 {
		t.Fatalf("expected duplicate=1, got %f (%v)", got, err)
	}
}

func TestMarketplaceMetricsNilSafe(t *testing.T) {
	var m *MarketplaceMetrics
	m.ObserveBid(BidAccepted)
	m.ObserveSettlement("msp", false)
	NewMarketplaceMetrics(nil).ObserveAuctionClosed("unsold")
}
