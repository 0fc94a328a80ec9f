package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kisanmandi/mandi-backend/pkg/config"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
)

// EventDescriptor links an event type to its aggregate, NATS subject and payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Subject        string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry. Subjects follow
// <prefix>.<aggregate_type>.<event_type>, e.g. mandi.events.listing.bid_placed.
func NewEventRegistry(cfg config.NATSConfig) (*EventRegistry, error) {
	prefix := strings.Trim(strings.TrimSpace(cfg.SubjectPrefix), ".")
	if prefix == "" {
		return nil, fmt.Errorf("nats subject prefix is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	add := func(eventType enums.OutboxEventType, aggregate enums.OutboxAggregateType, factory func() interface{}) {
		reg.register(EventDescriptor{
			EventType:      eventType,
			AggregateType:  aggregate,
			Subject:        fmt.Sprintf("%s.%s.%s", prefix, aggregate, eventType),
			PayloadFactory: factory,
		})
	}

	batch := func() interface{} { return &payloads.BatchEvent{} }
	add(enums.EventBatchCreated, enums.AggregateCropBatch, batch)
	add(enums.EventBatchWithdrawn, enums.AggregateCropBatch, batch)
	add(enums.EventBatchReleased, enums.AggregateCropBatch, batch)

	cert := func() interface{} { return &payloads.CertificationEvent{} }
	add(enums.EventCertificationRequested, enums.AggregateCertification, cert)
	add(enums.EventCertificationDecided, enums.AggregateCertification, cert)

	listing := func() interface{} { return &payloads.ListingEvent{} }
	add(enums.EventListingCreated, enums.AggregateListing, listing)
	add(enums.EventListingCancelled, enums.AggregateListing, listing)

	auction := func() interface{} { return &payloads.AuctionEvent{} }
	add(enums.EventAuctionOpened, enums.AggregateListing, auction)
	add(enums.EventAuctionClosed, enums.AggregateListing, auction)
	add(enums.EventBidPlaced, enums.AggregateListing, func() interface{} { return &payloads.BidPlacedEvent{} })

	requirement := func() interface{} { return &payloads.RequirementEvent{} }
	add(enums.EventRequirementCreated, enums.AggregateRequirement, requirement)
	add(enums.EventRequirementFulfilled, enums.AggregateRequirement, requirement)
	add(enums.EventRequirementExpired, enums.AggregateRequirement, requirement)

	offer := func() interface{} { return &payloads.OfferEvent{} }
	add(enums.EventOfferSubmitted, enums.AggregateRequirementOffer, offer)
	add(enums.EventOfferDecided, enums.AggregateRequirementOffer, offer)

	add(enums.EventMSPRatePublished, enums.AggregateMSPRate, func() interface{} { return &payloads.MSPRatePublishedEvent{} })
	add(enums.EventMSPProcured, enums.AggregateListing, func() interface{} { return &payloads.MSPProcuredEvent{} })
	add(enums.EventSettlementRecorded, enums.AggregateTransaction, func() interface{} { return &payloads.SettlementRecordedEvent{} })

	vendorOrder := func() interface{} { return &payloads.VendorOrderEvent{} }
	add(enums.EventVendorOrderCreated, enums.AggregateVendorOrder, vendorOrder)
	add(enums.EventVendorOrderStatusChanged, enums.AggregateVendorOrder, vendorOrder)

	return reg, nil
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("%s: %w", event.EventType, err))
	}

	payload := desc.PayloadFactory()
	if err := json.Unmarshal(envelope.Data, payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
