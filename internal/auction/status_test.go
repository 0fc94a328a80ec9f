package auction

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
)

func TestDeriveBidderStatus(t *testing.T) {
	tests := []struct {
		listing   enums.ListingStatus
		isHighest bool
		want      enums.BidderStatus
	}{
		{enums.ListingStatusPending, false, enums.BidderStatusPending},
		{enums.ListingStatusActive, true, enums.BidderStatusWinning},
		{enums.ListingStatusActive, false, enums.BidderStatusOutbid},
		{enums.ListingStatusSold, true, enums.BidderStatusWon},
		{enums.ListingStatusSold, false, enums.BidderStatusLost},
		{enums.ListingStatusUnsold, false, enums.BidderStatusLost},
		{enums.ListingStatusCancelled, true, enums.BidderStatusCancelled},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, DeriveBidderStatus(tt.listing, tt.isHighest), "%s highest=%v", tt.listing, tt.isHighest)
	}
}

func TestSelectWinnerPrefersEarliestOnTie(t *testing.T) {
	require.Nil(t, SelectWinner(nil))

	early, late := uuid.New(), uuid.New()
	bids := []models.Bid{
		{BidderID: uuid.New(), Amount: decimal.NewFromInt(101), Sequence: 1},
		{BidderID: late, Amount: decimal.NewFromInt(120), Sequence: 3},
		{BidderID: early, Amount: decimal.NewFromInt(120), Sequence: 2},
	}
	winner := SelectWinner(bids)
	require.NotNil(t, winner)
	require.Equal(t, early, winner.BidderID)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	locks := newKeyedMutex()
	key := uuid.New()
	unlock := locks.Lock(key)
	require.Equal(t, 1, locks.size())
	unlock()
	require.Zero(t, locks.size())
}
