package requirements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/internal/listings"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type channelEngine struct {
	repo Repository
	now  func() time.Time
}

// NewChannelEngine returns the requirement channel engine for the listing
// router. Requirement listings are active as soon as the offer exists.
func NewChannelEngine(repo Repository) listings.ChannelEngine {
	return &channelEngine{repo: repo, now: time.Now}
}

func (e *channelEngine) Route(ctx context.Context, tx *gorm.DB, req listings.RouteRequest) error {
	if req.Terms.RequirementID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "requirement id is required")
	}
	quantity := req.Terms.OfferQuantity
	if quantity == nil || !quantity.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer quantity must be greater than zero")
	}

	repo := e.repo.WithTx(tx)
	requirement, err := loadRequirement(ctx, repo, *req.Terms.RequirementID)
	if err != nil {
		return err
	}
	if err := ensureAcceptingOffers(requirement, req.Now); err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(req.Batch.CropType), strings.TrimSpace(requirement.CropType)) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("batch crop %q does not match requirement crop %q", req.Batch.CropType, requirement.CropType))
	}

	remaining, err := remainingNeed(ctx, repo, requirement)
	if err != nil {
		return err
	}
	if quantity.GreaterThan(remaining) {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer quantity exceeds remaining need").
			WithDetails(map[string]any{"remaining": remaining.String(), "unit": requirement.Unit})
	}
	if available := req.Batch.Unit.Convert(req.Batch.Quantity, requirement.Unit); quantity.GreaterThan(available) {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer quantity exceeds batch quantity").
			WithDetails(map[string]any{"available": available.String(), "unit": requirement.Unit})
	}

	requirementID := requirement.ID
	req.Listing.RequirementID = &requirementID
	req.Listing.Status = enums.ListingStatusActive
	return nil
}

// CheckCancel allows a farmer to withdraw an offer the buyer has not decided.
func (e *channelEngine) CheckCancel(ctx context.Context, tx *gorm.DB, listing *models.Listing) error {
	offer, err := e.offerFor(ctx, tx, listing)
	if err != nil {
		return err
	}
	if offer.Status != enums.OfferStatusPending {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("offer is already %s", offer.Status))
	}
	return nil
}

// OnCancel rejects the withdrawn offer so buyers no longer see it pending.
func (e *channelEngine) OnCancel(ctx context.Context, tx *gorm.DB, listing *models.Listing) error {
	offer, err := e.offerFor(ctx, tx, listing)
	if err != nil {
		return err
	}
	ok, err := e.repo.WithTx(tx).DecideOffer(ctx, offer.ID, enums.OfferStatusRejected, e.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject withdrawn offer")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "offer state changed")
	}
	return nil
}

func (e *channelEngine) offerFor(ctx context.Context, tx *gorm.DB, listing *models.Listing) (*models.RequirementOffer, error) {
	offer, err := e.repo.WithTx(tx).FindOfferByListing(ctx, listing.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found for listing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return offer, nil
}

func loadRequirement(ctx context.Context, repo Repository, id uuid.UUID) (*models.Requirement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requirement id required")
	}
	return requirementResult(repo.FindRequirement(ctx, id))
}

// lockRequirement is loadRequirement with the row held for the rest of the
// transaction. Anything that reads remainingNeed and then accepts must use it.
func lockRequirement(ctx context.Context, repo Repository, id uuid.UUID) (*models.Requirement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requirement id required")
	}
	return requirementResult(repo.LockRequirement(ctx, id))
}

func requirementResult(requirement *models.Requirement, err error) (*models.Requirement, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "requirement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load requirement")
	}
	return requirement, nil
}

func ensureAcceptingOffers(requirement *models.Requirement, now time.Time) error {
	if requirement.Status != enums.RequirementStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("requirement is %s", requirement.Status))
	}
	if !now.Before(requirement.Deadline) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "requirement deadline has passed")
	}
	return nil
}

// remainingNeed is the requirement quantity minus accepted offer quantity.
// Pending offers do not reserve anything.
func remainingNeed(ctx context.Context, repo Repository, requirement *models.Requirement) (decimal.Decimal, error) {
	accepted, err := repo.AcceptedQuantity(ctx, requirement.ID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum accepted offers")
	}
	remaining := requirement.Quantity.Sub(accepted)
	if remaining.IsNegative() {
		return decimal.Zero, nil
	}
	return remaining, nil
}
