package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// MSPRate is a published government procurement price for a crop.
type MSPRate struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CropType      string          `gorm:"column:crop_type;not null" json:"crop_type"`
	Unit          enums.CropUnit  `gorm:"column:unit;type:crop_unit;not null" json:"unit"`
	Rate          decimal.Decimal `gorm:"column:rate;type:numeric(14,2);not null" json:"rate"`
	Season        *string         `gorm:"column:season" json:"season,omitempty"`
	PublishedBy   uuid.UUID       `gorm:"column:published_by;type:uuid;not null" json:"published_by"`
	EffectiveFrom time.Time       `gorm:"column:effective_from;not null" json:"effective_from"`
	PublishedAt   time.Time       `gorm:"column:published_at;not null" json:"published_at"`
}
