package enums

import "fmt"

// BatchSaleStatus tracks where a crop batch sits in its sale lifecycle.
type BatchSaleStatus string

const (
	BatchSaleStatusAvailable BatchSaleStatus = "available"
	BatchSaleStatusListed    BatchSaleStatus = "listed"
	BatchSaleStatusSold      BatchSaleStatus = "sold"
	BatchSaleStatusUnsold    BatchSaleStatus = "unsold"
	BatchSaleStatusCancelled BatchSaleStatus = "cancelled"
)

var validBatchSaleStatuses = []BatchSaleStatus{
	BatchSaleStatusAvailable,
	BatchSaleStatusListed,
	BatchSaleStatusSold,
	BatchSaleStatusUnsold,
	BatchSaleStatusCancelled,
}

// String implements fmt.Stringer.
func (b BatchSaleStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BatchSaleStatus.
func (b BatchSaleStatus) IsValid() bool {
	for _, candidate := range validBatchSaleStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBatchSaleStatus converts raw input into a BatchSaleStatus.
func ParseBatchSaleStatus(value string) (BatchSaleStatus, error) {
	for _, candidate := range validBatchSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid batch sale status %q", value)
}

// IsTerminal reports whether no further transition may leave this status.
func (b BatchSaleStatus) IsTerminal() bool {
	return b == BatchSaleStatusSold || b == BatchSaleStatusCancelled
}
