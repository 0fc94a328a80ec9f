package enums

import "fmt"

// BidderStatus is the derived standing of a bidder on one listing. It is never persisted.
type BidderStatus string

const (
	BidderStatusPending   BidderStatus = "pending"
	BidderStatusWinning   BidderStatus = "winning"
	BidderStatusOutbid    BidderStatus = "outbid"
	BidderStatusWon       BidderStatus = "won"
	BidderStatusLost      BidderStatus = "lost"
	BidderStatusCancelled BidderStatus = "cancelled"
)

var validBidderStatuses = []BidderStatus{
	BidderStatusPending,
	BidderStatusWinning,
	BidderStatusOutbid,
	BidderStatusWon,
	BidderStatusLost,
	BidderStatusCancelled,
}

// String implements fmt.Stringer.
func (b BidderStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BidderStatus.
func (b BidderStatus) IsValid() bool {
	for _, candidate := range validBidderStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBidderStatus converts raw input into a BidderStatus.
func ParseBidderStatus(value string) (BidderStatus, error) {
	for _, candidate := range validBidderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bidder status %q", value)
}
