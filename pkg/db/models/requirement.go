package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// Requirement is a buyer's posted demand for a crop.
type Requirement struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BuyerID     uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null" json:"buyer_id"`
	CropType    string                  `gorm:"column:crop_type;not null" json:"crop_type"`
	Quantity    decimal.Decimal         `gorm:"column:quantity;type:numeric(14,3);not null" json:"quantity"`
	Unit        enums.CropUnit          `gorm:"column:unit;type:crop_unit;not null" json:"unit"`
	TargetPrice *decimal.Decimal        `gorm:"column:target_price;type:numeric(14,2)" json:"target_price,omitempty"`
	Deadline    time.Time               `gorm:"column:deadline;not null" json:"deadline"`
	Notes       *string                 `gorm:"column:notes" json:"notes,omitempty"`
	Status      enums.RequirementStatus `gorm:"column:status;type:requirement_status;not null;default:'open'" json:"status"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// RequirementOffer is a farmer's priced proposal against a requirement.
type RequirementOffer struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequirementID uuid.UUID         `gorm:"column:requirement_id;type:uuid;not null" json:"requirement_id"`
	BatchID       uuid.UUID         `gorm:"column:batch_id;type:uuid;not null" json:"batch_id"`
	ListingID     uuid.UUID         `gorm:"column:listing_id;type:uuid;not null" json:"listing_id"`
	FarmerID      uuid.UUID         `gorm:"column:farmer_id;type:uuid;not null" json:"farmer_id"`
	PricePerUnit  decimal.Decimal   `gorm:"column:price_per_unit;type:numeric(14,2);not null" json:"price_per_unit"`
	Quantity      decimal.Decimal   `gorm:"column:quantity;type:numeric(14,3);not null" json:"quantity"`
	AvailableDate *time.Time        `gorm:"column:available_date" json:"available_date,omitempty"`
	Message       *string           `gorm:"column:message" json:"message,omitempty"`
	Status        enums.OfferStatus `gorm:"column:status;type:offer_status;not null;default:'pending'" json:"status"`
	DecidedAt     *time.Time        `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
