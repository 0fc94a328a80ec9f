package listings

import (
	"context"
	"fmt"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Terms carries channel-specific listing parameters. Each channel engine
// reads only the fields it owns.
type Terms struct {
	MinimumPrice  *decimal.Decimal
	MinIncrement  *decimal.Decimal
	StartsAt      *time.Time
	EndsAt        *time.Time
	RequirementID *uuid.UUID
	OfferQuantity *decimal.Decimal
}

// RouteRequest is handed to a channel engine before a listing is persisted.
type RouteRequest struct {
	Batch   *models.CropBatch
	Listing *models.Listing
	Terms   Terms
	Now     time.Time
}

// ChannelEngine is implemented by the auction, MSP and requirement engines.
type ChannelEngine interface {
	// Route validates the channel terms and fills the listing's channel
	// fields and initial status.
	Route(ctx context.Context, tx *gorm.DB, req RouteRequest) error
	// CheckCancel returns an error when the listing can no longer be withdrawn.
	CheckCancel(ctx context.Context, tx *gorm.DB, listing *models.Listing) error
	// OnCancel runs after the listing is marked cancelled.
	OnCancel(ctx context.Context, tx *gorm.DB, listing *models.Listing) error
}

// StatusWriter moves a listing between statuses with a compare-and-set on
// its current status and version.
type StatusWriter interface {
	TransitionListing(ctx context.Context, tx *gorm.DB, listing *models.Listing, to enums.ListingStatus) error
}

var listingTransitions = map[enums.ListingStatus][]enums.ListingStatus{
	enums.ListingStatusPending: {enums.ListingStatusActive, enums.ListingStatusCancelled},
	enums.ListingStatusActive:  {enums.ListingStatusSold, enums.ListingStatusUnsold, enums.ListingStatusCancelled},
}

// CanTransition reports whether a listing may move from -> to.
func CanTransition(from, to enums.ListingStatus) bool {
	for _, candidate := range listingTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

type statusWriter struct {
	repo Repository
	now  func() time.Time
}

// NewStatusWriter builds the shared listing status writer.
func NewStatusWriter(repo Repository) StatusWriter {
	return &statusWriter{repo: repo, now: time.Now}
}

func (w *statusWriter) TransitionListing(ctx context.Context, tx *gorm.DB, listing *models.Listing, to enums.ListingStatus) error {
	if !CanTransition(listing.Status, to) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("listing cannot move from %s to %s", listing.Status, to))
	}
	now := w.now().UTC()
	ok, err := w.repo.WithTx(tx).TransitionStatus(ctx, listing.ID, listing.Status, to, listing.Version, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing status")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "listing state changed").
			WithDetails(map[string]any{"listingId": listing.ID, "expectedVersion": listing.Version})
	}
	listing.Status = to
	listing.Version++
	listing.UpdatedAt = now
	if to.IsClosed() {
		listing.ClosedAt = &now
	}
	return nil
}

// NextBidFloor is the smallest amount the auction will accept next: the
// current highest bid, or the minimum price before any bid, plus the increment.
func NextBidFloor(listing *models.Listing) decimal.Decimal {
	current := decimal.Zero
	if listing.MinimumPrice != nil {
		current = *listing.MinimumPrice
	}
	if listing.HighestBid != nil {
		current = *listing.HighestBid
	}
	increment := decimal.NewFromInt(1)
	if listing.MinIncrement != nil && listing.MinIncrement.IsPositive() {
		increment = *listing.MinIncrement
	}
	return current.Add(increment)
}
