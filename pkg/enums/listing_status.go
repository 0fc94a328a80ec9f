package enums

import "fmt"

// ListingStatus maps to the listing_status_enum enum in Postgres.
type ListingStatus string

const (
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusActive    ListingStatus = "active"
	ListingStatusSold      ListingStatus = "sold"
	ListingStatusUnsold    ListingStatus = "unsold"
	ListingStatusCancelled ListingStatus = "cancelled"
)

var validListingStatuses = []ListingStatus{
	ListingStatusPending,
	ListingStatusActive,
	ListingStatusSold,
	ListingStatusUnsold,
	ListingStatusCancelled,
}

// String implements fmt.Stringer.
func (l ListingStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingStatus.
func (l ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}

// IsOpen reports whether the listing still holds its batch.
func (l ListingStatus) IsOpen() bool {
	return l == ListingStatusPending || l == ListingStatusActive
}

// IsClosed reports whether the listing reached a final outcome.
func (l ListingStatus) IsClosed() bool {
	return l == ListingStatusSold || l == ListingStatusUnsold || l == ListingStatusCancelled
}
