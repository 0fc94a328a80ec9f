package vendororders

import (
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListFilters narrow an order list by exact status or by tab category.
type ListFilters struct {
	Status   *enums.VendorOrderStatus
	Category *enums.VendorOrderCategory
}

// OrderSummary is an order plus its tab category.
type OrderSummary struct {
	models.VendorOrder
	Category enums.VendorOrderCategory `json:"category"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// CreateInput is a customer's order request to a vendor.
type CreateInput struct {
	CustomerID uuid.UUID
	VendorID   uuid.UUID
	Kind       enums.VendorOrderKind
	ItemName   string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Notes      *string
}

// StatusInput moves an order to Target on behalf of ActorID.
type StatusInput struct {
	OrderID   uuid.UUID
	ActorID   uuid.UUID
	ActorRole enums.ActorRole
	Target    enums.VendorOrderStatus
}

// StatusResult carries the updated order and, on completion, its settlement.
type StatusResult struct {
	Order       OrderSummary        `json:"order"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}
