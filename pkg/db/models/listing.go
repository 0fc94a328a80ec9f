package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// Listing is a batch offered through exactly one sale channel.
// The highest-bid columns and Version are written only by the auction engine.
type Listing struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BatchID         uuid.UUID           `gorm:"column:batch_id;type:uuid;not null" json:"batch_id"`
	FarmerID        uuid.UUID           `gorm:"column:farmer_id;type:uuid;not null" json:"farmer_id"`
	Channel         enums.SaleChannel   `gorm:"column:channel;type:sale_channel;not null" json:"channel"`
	Status          enums.ListingStatus `gorm:"column:status;type:listing_status;not null;default:'pending'" json:"status"`
	MinimumPrice    *decimal.Decimal    `gorm:"column:minimum_price;type:numeric(14,2)" json:"minimum_price,omitempty"`
	MinIncrement    *decimal.Decimal    `gorm:"column:min_increment;type:numeric(14,2)" json:"min_increment,omitempty"`
	StartsAt        *time.Time          `gorm:"column:starts_at" json:"starts_at,omitempty"`
	EndsAt          *time.Time          `gorm:"column:ends_at" json:"ends_at,omitempty"`
	MSPRate         *decimal.Decimal    `gorm:"column:msp_rate;type:numeric(14,2)" json:"msp_rate,omitempty"`
	RequirementID   *uuid.UUID          `gorm:"column:requirement_id;type:uuid" json:"requirement_id,omitempty"`
	HighestBid      *decimal.Decimal    `gorm:"column:highest_bid;type:numeric(14,2)" json:"highest_bid,omitempty"`
	HighestBidderID *uuid.UUID          `gorm:"column:highest_bidder_id;type:uuid" json:"highest_bidder_id,omitempty"`
	HighestBidAt    *time.Time          `gorm:"column:highest_bid_at" json:"highest_bid_at,omitempty"`
	BidCount        int                 `gorm:"column:bid_count;not null;default:0" json:"bid_count"`
	Version         int64               `gorm:"column:version;not null;default:0" json:"version"`
	ClosedAt        *time.Time          `gorm:"column:closed_at" json:"closed_at,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
