package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// CropBatch is a farmer's harvested lot. Rows are never deleted.
type CropBatch struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FarmerID        uuid.UUID             `gorm:"column:farmer_id;type:uuid;not null" json:"farmer_id"`
	CropType        string                `gorm:"column:crop_type;not null" json:"crop_type"`
	Variety         *string               `gorm:"column:variety" json:"variety,omitempty"`
	Quantity        decimal.Decimal       `gorm:"column:quantity;type:numeric(14,3);not null" json:"quantity"`
	Unit            enums.CropUnit        `gorm:"column:unit;type:crop_unit;not null" json:"unit"`
	HarvestDate     time.Time             `gorm:"column:harvest_date;not null" json:"harvest_date"`
	StorageLocation string                `gorm:"column:storage_location;not null;default:''" json:"storage_location"`
	QualityStatus   enums.QualityStatus   `gorm:"column:quality_status;type:quality_status;not null;default:'unchecked'" json:"quality_status"`
	QualityGrade    *string               `gorm:"column:quality_grade" json:"quality_grade,omitempty"`
	SaleStatus      enums.BatchSaleStatus `gorm:"column:sale_status;type:batch_sale_status;not null;default:'available'" json:"sale_status"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
