package enums

import "fmt"

// VendorOrderStatus tracks the lifecycle of a vendor rental or sale order.
type VendorOrderStatus string

const (
	VendorOrderStatusPending   VendorOrderStatus = "pending"
	VendorOrderStatusAccepted  VendorOrderStatus = "accepted"
	VendorOrderStatusRejected  VendorOrderStatus = "rejected"
	VendorOrderStatusCancelled VendorOrderStatus = "cancelled"
	VendorOrderStatusCompleted VendorOrderStatus = "completed"
)

var validVendorOrderStatuses = []VendorOrderStatus{
	VendorOrderStatusPending,
	VendorOrderStatusAccepted,
	VendorOrderStatusRejected,
	VendorOrderStatusCancelled,
	VendorOrderStatusCompleted,
}

// VendorOrderStatuses returns every known status in lifecycle order.
func VendorOrderStatuses() []VendorOrderStatus {
	out := make([]VendorOrderStatus, len(validVendorOrderStatuses))
	copy(out, validVendorOrderStatuses)
	return out
}

// String implements fmt.Stringer.
func (v VendorOrderStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorOrderStatus.
func (v VendorOrderStatus) IsValid() bool {
	for _, candidate := range validVendorOrderStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorOrderStatus converts raw input into a VendorOrderStatus.
func ParseVendorOrderStatus(value string) (VendorOrderStatus, error) {
	for _, candidate := range validVendorOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor order status %q", value)
}

// VendorOrderCategory groups statuses for order tabs.
type VendorOrderCategory string

const (
	VendorOrderCategoryOpen       VendorOrderCategory = "open"
	VendorOrderCategoryInProgress VendorOrderCategory = "in_progress"
	VendorOrderCategoryClosed     VendorOrderCategory = "closed"
)

// ParseVendorOrderCategory converts raw input into a VendorOrderCategory.
func ParseVendorOrderCategory(value string) (VendorOrderCategory, error) {
	switch VendorOrderCategory(value) {
	case VendorOrderCategoryOpen, VendorOrderCategoryInProgress, VendorOrderCategoryClosed:
		return VendorOrderCategory(value), nil
	}
	return "", fmt.Errorf("invalid vendor order category %q", value)
}

// Category is the single projection of a status onto its tab.
func (v VendorOrderStatus) Category() VendorOrderCategory {
	switch v {
	case VendorOrderStatusPending:
		return VendorOrderCategoryOpen
	case VendorOrderStatusAccepted:
		return VendorOrderCategoryInProgress
	default:
		return VendorOrderCategoryClosed
	}
}
