package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateCropBatch        OutboxAggregateType = "crop_batch"
	AggregateCertification    OutboxAggregateType = "certification"
	AggregateListing          OutboxAggregateType = "listing"
	AggregateRequirement      OutboxAggregateType = "requirement"
	AggregateRequirementOffer OutboxAggregateType = "requirement_offer"
	AggregateMSPRate          OutboxAggregateType = "msp_rate"
	AggregateTransaction      OutboxAggregateType = "transaction"
	AggregateVendorOrder      OutboxAggregateType = "vendor_order"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCropBatch,
	AggregateCertification,
	AggregateListing,
	AggregateRequirement,
	AggregateRequirementOffer,
	AggregateMSPRate,
	AggregateTransaction,
	AggregateVendorOrder,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventBatchCreated             OutboxEventType = "batch_created"
	EventBatchWithdrawn           OutboxEventType = "batch_withdrawn"
	EventBatchReleased            OutboxEventType = "batch_released"
	EventCertificationRequested   OutboxEventType = "certification_requested"
	EventCertificationDecided     OutboxEventType = "certification_decided"
	EventListingCreated           OutboxEventType = "listing_created"
	EventListingCancelled         OutboxEventType = "listing_cancelled"
	EventAuctionOpened            OutboxEventType = "auction_opened"
	EventBidPlaced                OutboxEventType = "bid_placed"
	EventAuctionClosed            OutboxEventType = "auction_closed"
	EventRequirementCreated       OutboxEventType = "requirement_created"
	EventRequirementFulfilled     OutboxEventType = "requirement_fulfilled"
	EventRequirementExpired       OutboxEventType = "requirement_expired"
	EventOfferSubmitted           OutboxEventType = "offer_submitted"
	EventOfferDecided             OutboxEventType = "offer_decided"
	EventMSPRatePublished         OutboxEventType = "msp_rate_published"
	EventMSPProcured              OutboxEventType = "msp_procured"
	EventSettlementRecorded       OutboxEventType = "settlement_recorded"
	EventVendorOrderCreated       OutboxEventType = "vendor_order_created"
	EventVendorOrderStatusChanged OutboxEventType = "vendor_order_status_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBatchCreated,
	EventBatchWithdrawn,
	EventBatchReleased,
	EventCertificationRequested,
	EventCertificationDecided,
	EventListingCreated,
	EventListingCancelled,
	EventAuctionOpened,
	EventBidPlaced,
	EventAuctionClosed,
	EventRequirementCreated,
	EventRequirementFulfilled,
	EventRequirementExpired,
	EventOfferSubmitted,
	EventOfferDecided,
	EventMSPRatePublished,
	EventMSPProcured,
	EventSettlementRecorded,
	EventVendorOrderCreated,
	EventVendorOrderStatusChanged,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
