package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// VendorOrder is an equipment rental or input purchase between a customer and a vendor.
type VendorOrder struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID    uuid.UUID               `gorm:"column:vendor_id;type:uuid;not null" json:"vendor_id"`
	CustomerID  uuid.UUID               `gorm:"column:customer_id;type:uuid;not null" json:"customer_id"`
	Kind        enums.VendorOrderKind   `gorm:"column:kind;type:vendor_order_kind;not null" json:"kind"`
	ItemName    string                  `gorm:"column:item_name;not null" json:"item_name"`
	Quantity    decimal.Decimal         `gorm:"column:quantity;type:numeric(14,3);not null" json:"quantity"`
	UnitPrice   decimal.Decimal         `gorm:"column:unit_price;type:numeric(14,2);not null" json:"unit_price"`
	TotalAmount decimal.Decimal         `gorm:"column:total_amount;type:numeric(14,2);not null" json:"total_amount"`
	Status      enums.VendorOrderStatus `gorm:"column:status;type:vendor_order_status;not null;default:'pending'" json:"status"`
	Notes       *string                 `gorm:"column:notes" json:"notes,omitempty"`
	DecidedAt   *time.Time              `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CompletedAt *time.Time              `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CancelledAt *time.Time              `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
