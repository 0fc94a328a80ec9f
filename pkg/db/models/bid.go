package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is an accepted bid. Rejected attempts are never stored.
type Bid struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListingID uuid.UUID       `gorm:"column:listing_id;type:uuid;not null" json:"listing_id"`
	BidderID  uuid.UUID       `gorm:"column:bidder_id;type:uuid;not null" json:"bidder_id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Sequence  int64           `gorm:"column:sequence;not null" json:"sequence"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
