package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// BatchEvent covers creation, withdrawal and release of a crop batch.
type BatchEvent struct {
	BatchID       uuid.UUID             `json:"batch_id"`
	FarmerID      uuid.UUID             `json:"farmer_id"`
	CropType      string                `json:"crop_type"`
	SaleStatus    enums.BatchSaleStatus `json:"sale_status"`
	QualityStatus enums.QualityStatus   `json:"quality_status"`
}

// CertificationEvent is emitted when an inspection is requested or decided.
type CertificationEvent struct {
	CertificationID uuid.UUID                 `json:"certification_id"`
	BatchID         uuid.UUID                 `json:"batch_id"`
	Status          enums.CertificationStatus `json:"status"`
	Grade           *string                   `json:"grade,omitempty"`
}

// ListingEvent is emitted when a listing is created or cancelled.
type ListingEvent struct {
	ListingID uuid.UUID           `json:"listing_id"`
	BatchID   uuid.UUID           `json:"batch_id"`
	FarmerID  uuid.UUID           `json:"farmer_id"`
	Channel   enums.SaleChannel   `json:"channel"`
	Status    enums.ListingStatus `json:"status"`
}

// BidPlacedEvent carries an accepted bid.
type BidPlacedEvent struct {
	ListingID uuid.UUID       `json:"listing_id"`
	BidID     uuid.UUID       `json:"bid_id"`
	BidderID  uuid.UUID       `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	Sequence  int64           `json:"sequence"`
	Version   int64           `json:"version"`
}

// AuctionEvent is emitted when an auction opens or closes.
type AuctionEvent struct {
	ListingID     uuid.UUID           `json:"listing_id"`
	BatchID       uuid.UUID           `json:"batch_id"`
	Status        enums.ListingStatus `json:"status"`
	WinnerID      *uuid.UUID          `json:"winner_id,omitempty"`
	WinningBid    *decimal.Decimal    `json:"winning_bid,omitempty"`
	TransactionID *uuid.UUID          `json:"transaction_id,omitempty"`
}

// RequirementEvent is emitted on requirement creation and status changes.
type RequirementEvent struct {
	RequirementID uuid.UUID               `json:"requirement_id"`
	BuyerID       uuid.UUID               `json:"buyer_id"`
	CropType      string                  `json:"crop_type"`
	Status        enums.RequirementStatus `json:"status"`
}

// OfferEvent is emitted on offer submission and decision.
type OfferEvent struct {
	OfferID       uuid.UUID         `json:"offer_id"`
	RequirementID uuid.UUID         `json:"requirement_id"`
	ListingID     uuid.UUID         `json:"listing_id"`
	BatchID       uuid.UUID         `json:"batch_id"`
	FarmerID      uuid.UUID         `json:"farmer_id"`
	Status        enums.OfferStatus `json:"status"`
}

// MSPRatePublishedEvent announces a new procurement price.
type MSPRatePublishedEvent struct {
	RateID        uuid.UUID       `json:"rate_id"`
	CropType      string          `json:"crop_type"`
	Unit          enums.CropUnit  `json:"unit"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveFrom time.Time       `json:"effective_from"`
}

// MSPProcuredEvent records a completed MSP sale.
type MSPProcuredEvent struct {
	ListingID     uuid.UUID       `json:"listing_id"`
	BatchID       uuid.UUID       `json:"batch_id"`
	FarmerID      uuid.UUID       `json:"farmer_id"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID uuid.UUID       `json:"transaction_id"`
}

// SettlementRecordedEvent mirrors a new ledger transaction.
type SettlementRecordedEvent struct {
	TransactionID uuid.UUID                  `json:"transaction_id"`
	SourceID      uuid.UUID                  `json:"source_id"`
	SourceType    enums.SettlementSourceType `json:"source_type"`
	Channel       enums.LedgerChannel        `json:"channel"`
	PayerID       uuid.UUID                  `json:"payer_id"`
	PayeeID       uuid.UUID                  `json:"payee_id"`
	Amount        decimal.Decimal            `json:"amount"`
}

// VendorOrderEvent is emitted on vendor order creation and status changes.
type VendorOrderEvent struct {
	OrderID    uuid.UUID                 `json:"order_id"`
	VendorID   uuid.UUID                 `json:"vendor_id"`
	CustomerID uuid.UUID                 `json:"customer_id"`
	Status     enums.VendorOrderStatus   `json:"status"`
	Category   enums.VendorOrderCategory `json:"category"`
}
