package auction

import (
	"sort"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

// DeriveBidderStatus projects a bidder's standing from the listing status and
// whether the bidder currently holds the highest bid. It is the only source
// of won/lost/outbid/winning.
func DeriveBidderStatus(listingStatus enums.ListingStatus, isHighest bool) enums.BidderStatus {
	switch listingStatus {
	case enums.ListingStatusPending:
		return enums.BidderStatusPending
	case enums.ListingStatusCancelled:
		return enums.BidderStatusCancelled
	case enums.ListingStatusActive:
		if isHighest {
			return enums.BidderStatusWinning
		}
		return enums.BidderStatusOutbid
	case enums.ListingStatusSold:
		if isHighest {
			return enums.BidderStatusWon
		}
		return enums.BidderStatusLost
	default:
		return enums.BidderStatusLost
	}
}

// SelectWinner picks the highest amount, earliest acceptance on ties.
func SelectWinner(bids []models.Bid) *models.Bid {
	if len(bids) == 0 {
		return nil
	}
	ordered := make([]models.Bid, len(bids))
	copy(ordered, bids)
	sort.SliceStable(ordered, func(i, j int) bool {
		if cmp := ordered[i].Amount.Cmp(ordered[j].Amount); cmp != 0 {
			return cmp > 0
		}
		return ordered[i].Sequence < ordered[j].Sequence
	})
	winner := ordered[0]
	return &winner
}
