package requirements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/internal/listings"
	"github.com/kisanmandi/mandi-backend/internal/settlement"
	"github.com/kisanmandi/mandi-backend/pkg/config"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const expiryBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingRouter interface {
	CreateListingTx(ctx context.Context, tx *gorm.DB, input listings.CreateInput) (*models.Listing, error)
	GetTx(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) (*models.Listing, error)
}

// Service manages buyer requirements and the farmer offers made against them.
type Service interface {
	CreateRequirement(ctx context.Context, input CreateRequirementInput) (*models.Requirement, error)
	Get(ctx context.Context, requirementID uuid.UUID) (*RequirementView, error)
	ListOpen(ctx context.Context, params OpenParams) (*ListResult, error)
	ListByBuyer(ctx context.Context, params BuyerParams) (*ListResult, error)
	MarkFulfilled(ctx context.Context, requirementID, buyerID uuid.UUID) (*models.Requirement, error)
	ExpireDue(ctx context.Context, now time.Time) (int, error)
	SubmitOffer(ctx context.Context, input SubmitOfferInput) (*models.RequirementOffer, error)
	SetOfferStatus(ctx context.Context, input OfferStatusInput) (*OfferDecision, error)
	ListOffers(ctx context.Context, requirementID, buyerID uuid.UUID) ([]models.RequirementOffer, error)
	ListFarmerOffers(ctx context.Context, farmerID uuid.UUID) ([]models.RequirementOffer, error)
}

// CreateRequirementInput is a buyer's demand post.
type CreateRequirementInput struct {
	BuyerID     uuid.UUID
	CropType    string
	Quantity    decimal.Decimal
	Unit        enums.CropUnit
	TargetPrice *decimal.Decimal
	Deadline    time.Time
	Notes       *string
}

// RequirementView adds the accepted and remaining quantity to a requirement.
type RequirementView struct {
	models.Requirement
	AcceptedQuantity  decimal.Decimal `json:"accepted_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
}

// OpenParams filters requirements farmers can still respond to.
type OpenParams struct {
	CropType string
	Limit    int
	Cursor   string
}

// BuyerParams lists a buyer's own requirements.
type BuyerParams struct {
	BuyerID uuid.UUID
	Status  *enums.RequirementStatus
	Limit   int
	Cursor  string
}

// ListResult wraps a page of requirements.
type ListResult struct {
	Items  []models.Requirement `json:"items"`
	Cursor string               `json:"cursor"`
}

// SubmitOfferInput is a farmer's priced offer of one batch.
type SubmitOfferInput struct {
	RequirementID uuid.UUID
	BatchID       uuid.UUID
	FarmerID      uuid.UUID
	PricePerUnit  decimal.Decimal
	Quantity      decimal.Decimal
	AvailableDate *time.Time
	Message       *string
}

// OfferStatusInput is the buyer's decision on a pending offer.
type OfferStatusInput struct {
	OfferID uuid.UUID
	BuyerID uuid.UUID
	Status  enums.OfferStatus
}

// OfferDecision is the decided offer plus the settlement an acceptance created.
type OfferDecision struct {
	Offer       models.RequirementOffer `json:"offer"`
	Transaction *models.Transaction     `json:"transaction,omitempty"`
}

// ServiceParams configure the requirement engine.
type ServiceParams struct {
	Repo       Repository
	Listings   listingRouter
	Status     listings.StatusWriter
	Batches    batches.SaleStatusWriter
	Settlement settlement.Settler
	Tx         txRunner
	Outbox     outbox.Emitter
	Logger     *logger.Logger
	Config     config.RequirementConfig
}

type service struct {
	repo       Repository
	listings   listingRouter
	status     listings.StatusWriter
	batches    batches.SaleStatusWriter
	settlement settlement.Settler
	tx         txRunner
	outbox     outbox.Emitter
	logg       *logger.Logger
	cfg        config.RequirementConfig
	now        func() time.Time
}

// NewService wires the requirement offer engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "requirement repository required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listing router required")
	}
	if params.Status == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listing status writer required")
	}
	if params.Batches == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "batch sale status writer required")
	}
	if params.Settlement == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settlement ledger required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{
		repo:       params.Repo,
		listings:   params.Listings,
		status:     params.Status,
		batches:    params.Batches,
		settlement: params.Settlement,
		tx:         params.Tx,
		outbox:     params.Outbox,
		logg:       params.Logger,
		cfg:        params.Config,
		now:        time.Now,
	}, nil
}

func (s *service) CreateRequirement(ctx context.Context, input CreateRequirementInput) (*models.Requirement, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	now := s.now().UTC()
	crop := strings.TrimSpace(input.CropType)
	switch {
	case crop == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "crop type is required")
	case !input.Quantity.IsPositive():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	case !input.Unit.IsValid():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported unit %q", input.Unit))
	case input.TargetPrice != nil && !input.TargetPrice.IsPositive():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target price must be greater than zero")
	case !input.Deadline.After(now):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deadline must be in the future")
	}

	requirement := &models.Requirement{
		ID:          uuid.New(),
		BuyerID:     input.BuyerID,
		CropType:    crop,
		Quantity:    input.Quantity,
		Unit:        input.Unit,
		TargetPrice: input.TargetPrice,
		Deadline:    input.Deadline.UTC(),
		Notes:       input.Notes,
		Status:      enums.RequirementStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateRequirement(ctx, requirement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create requirement")
		}
		return s.emitRequirement(ctx, tx, enums.EventRequirementCreated, requirement)
	})
	if err != nil {
		return nil, err
	}
	return requirement, nil
}

func (s *service) Get(ctx context.Context, requirementID uuid.UUID) (*RequirementView, error) {
	requirement, err := loadRequirement(ctx, s.repo, requirementID)
	if err != nil {
		return nil, err
	}
	remaining, err := remainingNeed(ctx, s.repo, requirement)
	if err != nil {
		return nil, err
	}
	return &RequirementView{
		Requirement:       *requirement,
		AcceptedQuantity:  requirement.Quantity.Sub(remaining),
		RemainingQuantity: remaining,
	}, nil
}

func (s *service) ListOpen(ctx context.Context, params OpenParams) (*ListResult, error) {
	status := enums.RequirementStatusOpen
	now := s.now().UTC()
	return s.list(ctx, listRequirementsParams{
		Status:        &status,
		CropType:      params.CropType,
		DeadlineAfter: &now,
		Limit:         params.Limit,
	}, params.Cursor)
}

func (s *service) ListByBuyer(ctx context.Context, params BuyerParams) (*ListResult, error) {
	if params.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	buyer := params.BuyerID
	return s.list(ctx, listRequirementsParams{
		BuyerID: &buyer,
		Status:  params.Status,
		Limit:   params.Limit,
	}, params.Cursor)
}

func (s *service) list(ctx context.Context, query listRequirementsParams, rawCursor string) (*ListResult, error) {
	if rawCursor != "" {
		cursor, err := pagination.ParseCursor(rawCursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	rows, next, err := s.repo.ListRequirements(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requirements")
	}
	if rows == nil {
		rows = []models.Requirement{}
	}
	return &ListResult{Items: rows, Cursor: pagination.Encode(next)}, nil
}

func (s *service) MarkFulfilled(ctx context.Context, requirementID, buyerID uuid.UUID) (*models.Requirement, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var requirement *models.Requirement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := loadRequirement(ctx, repo, requirementID)
		if err != nil {
			return err
		}
		if current.BuyerID != buyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "requirement does not belong to buyer")
		}
		if err := s.moveRequirement(ctx, tx, current, enums.RequirementStatusFulfilled); err != nil {
			return err
		}
		requirement = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return requirement, nil
}

func (s *service) moveRequirement(ctx context.Context, tx *gorm.DB, requirement *models.Requirement, to enums.RequirementStatus) error {
	if requirement.Status != enums.RequirementStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("requirement is already %s", requirement.Status))
	}
	now := s.now().UTC()
	ok, err := s.repo.WithTx(tx).SetRequirementStatus(ctx, requirement.ID, enums.RequirementStatusOpen, to, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update requirement status")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "requirement state changed")
	}
	requirement.Status = to
	requirement.UpdatedAt = now

	eventType := enums.EventRequirementFulfilled
	if to == enums.RequirementStatusExpired {
		eventType = enums.EventRequirementExpired
	}
	return s.emitRequirement(ctx, tx, eventType, requirement)
}

// ExpireDue closes open requirements past their deadline and releases every
// pending offer on them: offer rejected, listing and batch unsold.
func (s *service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.DueToExpire(ctx, now.UTC(), expiryBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query expired requirements")
	}
	expired := 0
	var errs error
	for i := range due {
		requirement := due[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.moveRequirement(ctx, tx, &requirement, enums.RequirementStatusExpired); err != nil {
				return err
			}
			pending := enums.OfferStatusPending
			offers, err := s.repo.WithTx(tx).ListOffers(ctx, requirement.ID, &pending)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending offers")
			}
			for j := range offers {
				if err := s.closeOffer(ctx, tx, &offers[j], enums.OfferStatusRejected, nil); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			if pkgerrors.IsConflict(err) {
				logCtx := s.logg.WithFields(ctx, map[string]any{"requirement_id": requirement.ID.String(), "reason": err.Error()})
				s.logg.Warn(logCtx, "requirement expiry skipped")
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("expire %s: %w", requirement.ID, err))
			continue
		}
		expired++
	}
	return expired, errs
}

func (s *service) SubmitOffer(ctx context.Context, input SubmitOfferInput) (*models.RequirementOffer, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.PricePerUnit.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per unit must be greater than zero")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}

	var offer *models.RequirementOffer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		requirement, err := loadRequirement(ctx, repo, input.RequirementID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if err := ensureAcceptingOffers(requirement, now); err != nil {
			return err
		}

		requirementID := requirement.ID
		quantity := input.Quantity
		listing, err := s.listings.CreateListingTx(ctx, tx, listings.CreateInput{
			BatchID:  input.BatchID,
			FarmerID: input.FarmerID,
			Channel:  enums.SaleChannelRequirement,
			Terms:    listings.Terms{RequirementID: &requirementID, OfferQuantity: &quantity},
		})
		if err != nil {
			return err
		}

		var availableDate *time.Time
		if input.AvailableDate != nil {
			date := input.AvailableDate.UTC()
			availableDate = &date
		}
		offer = &models.RequirementOffer{
			ID:            uuid.New(),
			RequirementID: requirement.ID,
			BatchID:       listing.BatchID,
			ListingID:     listing.ID,
			FarmerID:      input.FarmerID,
			PricePerUnit:  input.PricePerUnit,
			Quantity:      input.Quantity,
			AvailableDate: availableDate,
			Message:       input.Message,
			Status:        enums.OfferStatusPending,
			CreatedAt:     now,
		}
		if err := repo.CreateOffer(ctx, offer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
		}
		return s.emitOffer(ctx, tx, enums.EventOfferSubmitted, offer)
	})
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) SetOfferStatus(ctx context.Context, input OfferStatusInput) (*OfferDecision, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Status != enums.OfferStatusAccepted && input.Status != enums.OfferStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be accepted or rejected")
	}

	var decision *OfferDecision
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		offer, err := loadOffer(ctx, repo, input.OfferID)
		if err != nil {
			return err
		}
		requirement, err := lockRequirement(ctx, repo, offer.RequirementID)
		if err != nil {
			return err
		}
		if requirement.BuyerID != input.BuyerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "requirement does not belong to buyer")
		}
		if offer.Status != enums.OfferStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("offer is already %s", offer.Status))
		}

		if input.Status == enums.OfferStatusRejected {
			if err := s.closeOffer(ctx, tx, offer, enums.OfferStatusRejected, &input.BuyerID); err != nil {
				return err
			}
			decision = &OfferDecision{Offer: *offer}
			return nil
		}

		if requirement.Status != enums.RequirementStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("requirement is %s", requirement.Status))
		}
		remaining, err := remainingNeed(ctx, repo, requirement)
		if err != nil {
			return err
		}
		if offer.Quantity.GreaterThan(remaining) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer exceeds remaining need").
				WithDetails(map[string]any{"remaining": remaining.String()})
		}
		if err := s.closeOffer(ctx, tx, offer, enums.OfferStatusAccepted, &input.BuyerID); err != nil {
			return err
		}
		settled, err := s.settlement.Settle(ctx, tx, settlement.SettleInput{
			SourceID:    offer.ID,
			SourceType:  enums.SettlementSourceRequirementOffer,
			Channel:     enums.LedgerChannelRequirement,
			PayerID:     requirement.BuyerID,
			PayeeID:     offer.FarmerID,
			Amount:      offer.PricePerUnit.Mul(offer.Quantity),
			Description: fmt.Sprintf("requirement offer for %s", requirement.CropType),
		})
		if err != nil {
			return err
		}
		decision = &OfferDecision{Offer: *offer, Transaction: &settled.Transaction}

		if s.cfg.CountBasedFulfillment && !offer.Quantity.LessThan(remaining) {
			if err := s.moveRequirement(ctx, tx, requirement, enums.RequirementStatusFulfilled); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decision, nil
}

// closeOffer decides a pending offer and closes its listing and batch:
// sold on acceptance, unsold otherwise.
func (s *service) closeOffer(ctx context.Context, tx *gorm.DB, offer *models.RequirementOffer, to enums.OfferStatus, actorID *uuid.UUID) error {
	now := s.now().UTC()
	ok, err := s.repo.WithTx(tx).DecideOffer(ctx, offer.ID, to, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offer status")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "offer state changed")
	}
	offer.Status = to
	offer.DecidedAt = &now

	listingStatus, saleStatus := enums.ListingStatusUnsold, enums.BatchSaleStatusUnsold
	if to == enums.OfferStatusAccepted {
		listingStatus, saleStatus = enums.ListingStatusSold, enums.BatchSaleStatusSold
	}
	listing, err := s.listings.GetTx(ctx, tx, offer.ListingID)
	if err != nil {
		return err
	}
	if err := s.status.TransitionListing(ctx, tx, listing, listingStatus); err != nil {
		return err
	}
	if err := s.batches.TransitionSaleStatus(ctx, tx, offer.BatchID, enums.BatchSaleStatusListed, saleStatus); err != nil {
		return err
	}

	event := offerEvent(enums.EventOfferDecided, offer)
	if actorID != nil {
		event.Actor = &outbox.ActorRef{UserID: *actorID, Role: enums.ActorRoleBuyer.String()}
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit offer event")
	}
	return nil
}

func (s *service) ListOffers(ctx context.Context, requirementID, buyerID uuid.UUID) ([]models.RequirementOffer, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	requirement, err := loadRequirement(ctx, s.repo, requirementID)
	if err != nil {
		return nil, err
	}
	if requirement.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "requirement does not belong to buyer")
	}
	offers, err := s.repo.ListOffers(ctx, requirementID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	if offers == nil {
		offers = []models.RequirementOffer{}
	}
	return offers, nil
}

func (s *service) ListFarmerOffers(ctx context.Context, farmerID uuid.UUID) ([]models.RequirementOffer, error) {
	if farmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	offers, err := s.repo.ListOffersByFarmer(ctx, farmerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	if offers == nil {
		offers = []models.RequirementOffer{}
	}
	return offers, nil
}

func loadOffer(ctx context.Context, repo Repository, id uuid.UUID) (*models.RequirementOffer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	offer, err := repo.FindOffer(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return offer, nil
}

func (s *service) emitRequirement(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, requirement *models.Requirement) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateRequirement,
		AggregateID:   requirement.ID,
		OccurredAt:    s.now().UTC(),
		Data: payloads.RequirementEvent{
			RequirementID: requirement.ID,
			BuyerID:       requirement.BuyerID,
			CropType:      requirement.CropType,
			Status:        requirement.Status,
		},
	}
	if eventType == enums.EventRequirementCreated || eventType == enums.EventRequirementFulfilled {
		event.Actor = &outbox.ActorRef{UserID: requirement.BuyerID, Role: enums.ActorRoleBuyer.String()}
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit requirement event")
	}
	return nil
}

func (s *service) emitOffer(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, offer *models.RequirementOffer) error {
	event := offerEvent(eventType, offer)
	event.Actor = &outbox.ActorRef{UserID: offer.FarmerID, Role: enums.ActorRoleFarmer.String()}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit offer event")
	}
	return nil
}

func offerEvent(eventType enums.OutboxEventType, offer *models.RequirementOffer) outbox.DomainEvent {
	occurred := offer.CreatedAt
	if offer.DecidedAt != nil {
		occurred = *offer.DecidedAt
	}
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateRequirementOffer,
		AggregateID:   offer.ID,
		OccurredAt:    occurred,
		Data: payloads.OfferEvent{
			OfferID:       offer.ID,
			RequirementID: offer.RequirementID,
			ListingID:     offer.ListingID,
			BatchID:       offer.BatchID,
			FarmerID:      offer.FarmerID,
			Status:        offer.Status,
		},
	}
}
