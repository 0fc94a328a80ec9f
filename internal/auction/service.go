package auction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/internal/listings"
	"github.com/kisanmandi/mandi-backend/internal/settlement"
	"github.com/kisanmandi/mandi-backend/pkg/config"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/logger"
	"github.com/kisanmandi/mandi-backend/pkg/metrics"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const dueBatchSize = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the marketplace auction engine. It is also the marketplace
// channel engine for the listing router.
type Service interface {
	listings.ChannelEngine
	Open(ctx context.Context, listingID uuid.UUID) (*models.Listing, error)
	PlaceBid(ctx context.Context, input PlaceBidInput) (*BidResult, error)
	Close(ctx context.Context, listingID uuid.UUID) (*CloseResult, error)
	ListBids(ctx context.Context, listingID uuid.UUID) ([]models.Bid, error)
	MyBids(ctx context.Context, bidderID uuid.UUID) ([]MyBid, error)
	OpenDue(ctx context.Context, now time.Time) (int, error)
	CloseDue(ctx context.Context, now time.Time) (int, error)
}

// PlaceBidInput is one bid attempt. ExpectedVersion, when set, must match
// the listing version the bidder last saw; a mismatch is a conflict even if
// the amount would still clear the new floor. The HTTP surface always sets it.
type PlaceBidInput struct {
	ListingID       uuid.UUID
	BidderID        uuid.UUID
	BidderRole      enums.ActorRole
	Amount          decimal.Decimal
	ExpectedVersion *int64
}

// BidResult describes an accepted bid.
type BidResult struct {
	Bid            models.Bid         `json:"bid"`
	ListingVersion int64              `json:"listing_version"`
	Status         enums.BidderStatus `json:"status"`
	NextMinimumBid decimal.Decimal    `json:"next_minimum_bid"`
}

// CloseResult is the outcome of closing an auction.
type CloseResult struct {
	Listing     models.Listing      `json:"listing"`
	Winner      *models.Bid         `json:"winner,omitempty"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// MyBid is one row of a bidder's dashboard: one per listing.
type MyBid struct {
	ListingID         uuid.UUID           `json:"listing_id"`
	BatchID           uuid.UUID           `json:"batch_id"`
	MyHighestBid      decimal.Decimal     `json:"my_highest_bid"`
	MyBidCount        int                 `json:"my_bid_count"`
	LastBidAt         time.Time           `json:"last_bid_at"`
	CurrentHighestBid *decimal.Decimal    `json:"current_highest_bid,omitempty"`
	ListingStatus     enums.ListingStatus `json:"listing_status"`
	EndsAt            *time.Time          `json:"ends_at,omitempty"`
	Status            enums.BidderStatus  `json:"status"`
}

// ServiceParams configure the auction engine.
type ServiceParams struct {
	Repo       Repository
	Batches    batches.SaleStatusWriter
	Listings   listings.StatusWriter
	Settlement settlement.Settler
	Tx         txRunner
	Outbox     outbox.Emitter
	Metrics    *metrics.MarketplaceMetrics
	Logger     *logger.Logger
	Config     config.AuctionConfig
}

type service struct {
	repo       Repository
	batches    batches.SaleStatusWriter
	listings   listings.StatusWriter
	settlement settlement.Settler
	tx         txRunner
	outbox     outbox.Emitter
	metrics    *metrics.MarketplaceMetrics
	logg       *logger.Logger
	cfg        config.AuctionConfig
	locks      *keyedMutex
	now        func() time.Time
}

// NewService wires the auction engine.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "auction repository required")
	}
	if params.Batches == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "batch sale status writer required")
	}
	if params.Listings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listing status writer required")
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
	cfg := params.Config
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = 72 * time.Hour
	}
	return &service{
		repo:       params.Repo,
		batches:    params.Batches,
		listings:   params.Listings,
		settlement: params.Settlement,
		tx:         params.Tx,
		outbox:     params.Outbox,
		metrics:    params.Metrics,
		logg:       params.Logger,
		cfg:        cfg,
		locks:      newKeyedMutex(),
		now:        time.Now,
	}, nil
}

// Route validates marketplace terms and decides whether the auction starts
// active or waits for its start time.
func (s *service) Route(_ context.Context, _ *gorm.DB, req listings.RouteRequest) error {
	terms := req.Terms
	if terms.MinimumPrice == nil || !terms.MinimumPrice.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum price must be greater than zero")
	}
	increment := s.cfg.Increment()
	if terms.MinIncrement != nil {
		if !terms.MinIncrement.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "minimum increment must be greater than zero")
		}
		increment = *terms.MinIncrement
	}

	startsAt := req.Now
	if terms.StartsAt != nil && terms.StartsAt.After(req.Now) {
		startsAt = terms.StartsAt.UTC()
	}
	endsAt := startsAt.Add(s.cfg.DefaultDuration)
	if terms.EndsAt != nil {
		endsAt = terms.EndsAt.UTC()
	}
	if !endsAt.After(startsAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "auction must end after it starts")
	}
	if s.cfg.MaxDuration > 0 && endsAt.Sub(startsAt) > s.cfg.MaxDuration {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("auction cannot run longer than %s", s.cfg.MaxDuration))
	}

	minimum := *terms.MinimumPrice
	listing := req.Listing
	listing.MinimumPrice = &minimum
	listing.MinIncrement = &increment
	listing.StartsAt = &startsAt
	listing.EndsAt = &endsAt
	listing.Status = enums.ListingStatusPending
	if !startsAt.After(req.Now) {
		listing.Status = enums.ListingStatusActive
	}
	return nil
}

// CheckCancel allows cancellation while pending, or while active with no
// accepted bid.
func (s *service) CheckCancel(_ context.Context, _ *gorm.DB, listing *models.Listing) error {
	switch listing.Status {
	case enums.ListingStatusPending:
		return nil
	case enums.ListingStatusActive:
		if listing.BidCount == 0 {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "auction already has bids")
	default:
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("auction is %s", listing.Status))
	}
}

func (s *service) OnCancel(context.Context, *gorm.DB, *models.Listing) error {
	return nil
}

func (s *service) Open(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	return s.open(ctx, listingID, s.now().UTC())
}

func (s *service) open(ctx context.Context, listingID uuid.UUID, now time.Time) (*models.Listing, error) {
	unlock := s.locks.Lock(listingID)
	defer unlock()

	var opened *models.Listing
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		listing, err := s.loadAuction(ctx, s.repo.WithTx(tx), listingID)
		if err != nil {
			return err
		}
		if listing.Status != enums.ListingStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("auction is %s, not pending", listing.Status))
		}
		if listing.StartsAt != nil && listing.StartsAt.After(now) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "auction has not reached its start time")
		}
		if err := s.listings.TransitionListing(ctx, tx, listing, enums.ListingStatusActive); err != nil {
			return err
		}
		opened = listing
		return s.emitAuction(ctx, tx, enums.EventAuctionOpened, listing, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return opened, nil
}

func (s *service) PlaceBid(ctx context.Context, input PlaceBidInput) (*BidResult, error) {
	result, err := s.placeBid(ctx, input)
	s.metrics.ObserveBid(bidOutcome(err))
	return result, err
}

func bidOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.BidAccepted
	case pkgerrors.IsValidation(err):
		return metrics.BidTooLow
	case pkgerrors.HasCode(err, pkgerrors.CodeConflict):
		return metrics.BidConflict
	default:
		return metrics.BidRejected
	}
}

func (s *service) placeBid(ctx context.Context, input PlaceBidInput) (*BidResult, error) {
	if input.BidderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.BidderRole != enums.ActorRoleBuyer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only buyers can bid")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bid amount must be greater than zero")
	}

	unlock := s.locks.Lock(input.ListingID)
	defer unlock()

	var result *BidResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listing, err := s.loadAuction(ctx, repo, input.ListingID)
		if err != nil {
			return err
		}
		if listing.FarmerID == input.BidderID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "farmers cannot bid on their own listing")
		}
		if listing.Status != enums.ListingStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("auction is %s, not active", listing.Status))
		}
		now := s.now().UTC()
		if listing.EndsAt != nil && !now.Before(*listing.EndsAt) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "auction has ended")
		}
		if input.ExpectedVersion != nil && *input.ExpectedVersion != listing.Version {
			return staleListing(listing)
		}

		floor := listings.NextBidFloor(listing)
		if input.Amount.LessThan(floor) {
			return pkgerrors.New(pkgerrors.CodeValidation, "bid too low").
				WithDetails(map[string]any{"minimumAcceptable": floor.String()})
		}

		bid := &models.Bid{
			ID:        uuid.New(),
			ListingID: listing.ID,
			BidderID:  input.BidderID,
			Amount:    input.Amount,
			Sequence:  int64(listing.BidCount) + 1,
			CreatedAt: now,
		}
		applied, err := repo.ApplyBid(ctx, listing, bid)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record bid")
		}
		if !applied {
			return staleListing(listing)
		}

		listing.HighestBid = &bid.Amount
		listing.HighestBidderID = &bid.BidderID
		listing.HighestBidAt = &bid.CreatedAt
		listing.BidCount++
		listing.Version++

		event := outbox.DomainEvent{
			EventType:     enums.EventBidPlaced,
			AggregateType: enums.AggregateListing,
			AggregateID:   listing.ID,
			Actor:         &outbox.ActorRef{UserID: input.BidderID, Role: input.BidderRole.String()},
			OccurredAt:    now,
			Data: payloads.BidPlacedEvent{
				ListingID: listing.ID,
				BidID:     bid.ID,
				BidderID:  bid.BidderID,
				Amount:    bid.Amount,
				Sequence:  bid.Sequence,
				Version:   listing.Version,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit bid event")
		}

		result = &BidResult{
			Bid:            *bid,
			ListingVersion: listing.Version,
			Status:         enums.BidderStatusWinning,
			NextMinimumBid: listings.NextBidFloor(listing),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithListingID(ctx, input.ListingID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"bid_id":   result.Bid.ID.String(),
		"amount":   result.Bid.Amount.String(),
		"sequence": result.Bid.Sequence,
	})
	s.logg.Info(logCtx, "bid accepted")
	return result, nil
}

func staleListing(listing *models.Listing) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "listing state changed").
		WithDetails(map[string]any{"currentVersion": listing.Version})
}

func (s *service) Close(ctx context.Context, listingID uuid.UUID) (*CloseResult, error) {
	return s.close(ctx, listingID, s.now().UTC())
}

func (s *service) close(ctx context.Context, listingID uuid.UUID, now time.Time) (*CloseResult, error) {
	unlock := s.locks.Lock(listingID)
	defer unlock()

	var result *CloseResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		listing, err := s.loadAuction(ctx, repo, listingID)
		if err != nil {
			return err
		}
		if listing.Status != enums.ListingStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("auction is %s, not active", listing.Status))
		}
		if listing.EndsAt != nil && now.Before(*listing.EndsAt) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "auction is still running")
		}

		bids, err := repo.ListBids(ctx, listing.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bids")
		}
		winner := SelectWinner(bids)
		result = &CloseResult{Winner: winner}

		if winner == nil {
			if err := s.listings.TransitionListing(ctx, tx, listing, enums.ListingStatusUnsold); err != nil {
				return err
			}
			if err := s.batches.TransitionSaleStatus(ctx, tx, listing.BatchID, enums.BatchSaleStatusListed, enums.BatchSaleStatusUnsold); err != nil {
				return err
			}
			result.Listing = *listing
			return s.emitAuction(ctx, tx, enums.EventAuctionClosed, listing, nil, nil)
		}

		if err := s.listings.TransitionListing(ctx, tx, listing, enums.ListingStatusSold); err != nil {
			return err
		}
		if err := s.batches.TransitionSaleStatus(ctx, tx, listing.BatchID, enums.BatchSaleStatusListed, enums.BatchSaleStatusSold); err != nil {
			return err
		}
		settled, err := s.settlement.Settle(ctx, tx, settlement.SettleInput{
			SourceID:    listing.ID,
			SourceType:  enums.SettlementSourceListing,
			Channel:     enums.LedgerChannelMarketplace,
			PayerID:     winner.BidderID,
			PayeeID:     listing.FarmerID,
			Amount:      winner.Amount,
			Description: "marketplace auction",
		})
		if err != nil {
			return err
		}
		result.Listing = *listing
		result.Transaction = &settled.Transaction
		return s.emitAuction(ctx, tx, enums.EventAuctionClosed, listing, winner, &settled.Transaction.ID)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAuctionClosed(result.Listing.Status.String())
	return result, nil
}

func (s *service) loadAuction(ctx context.Context, repo Repository, listingID uuid.UUID) (*models.Listing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := repo.FindListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.Channel != enums.SaleChannelMarketplace {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not a marketplace auction")
	}
	return listing, nil
}

func (s *service) ListBids(ctx context.Context, listingID uuid.UUID) ([]models.Bid, error) {
	if _, err := s.loadAuction(ctx, s.repo, listingID); err != nil {
		return nil, err
	}
	bids, err := s.repo.ListBids(ctx, listingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bids")
	}
	if bids == nil {
		bids = []models.Bid{}
	}
	return bids, nil
}

func (s *service) MyBids(ctx context.Context, bidderID uuid.UUID) ([]MyBid, error) {
	if bidderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	bids, err := s.repo.BidsByBidder(ctx, bidderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load bids")
	}

	rows := make(map[uuid.UUID]*MyBid)
	ids := make([]uuid.UUID, 0)
	for _, bid := range bids {
		row, ok := rows[bid.ListingID]
		if !ok {
			row = &MyBid{ListingID: bid.ListingID, MyHighestBid: bid.Amount, LastBidAt: bid.CreatedAt}
			rows[bid.ListingID] = row
			ids = append(ids, bid.ListingID)
		}
		row.MyBidCount++
		if bid.Amount.GreaterThan(row.MyHighestBid) {
			row.MyHighestBid = bid.Amount
		}
		if bid.CreatedAt.After(row.LastBidAt) {
			row.LastBidAt = bid.CreatedAt
		}
	}

	listingRows, err := s.repo.FindListings(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listings")
	}
	out := make([]MyBid, 0, len(listingRows))
	for _, listing := range listingRows {
		row := rows[listing.ID]
		if row == nil {
			continue
		}
		isHighest := listing.HighestBidderID != nil && *listing.HighestBidderID == bidderID
		row.BatchID = listing.BatchID
		row.CurrentHighestBid = listing.HighestBid
		row.ListingStatus = listing.Status
		row.EndsAt = listing.EndsAt
		row.Status = DeriveBidderStatus(listing.Status, isHighest)
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastBidAt.After(out[j].LastBidAt) })
	return out, nil
}

// OpenDue activates pending auctions whose start time has passed.
func (s *service) OpenDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.DueToOpen(ctx, now.UTC(), dueBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query auctions due to open")
	}
	opened := 0
	var errs error
	for _, listing := range due {
		if _, err := s.open(ctx, listing.ID, now.UTC()); err != nil {
			if pkgerrors.IsConflict(err) {
				s.logSkipped(ctx, listing.ID, "auction open skipped", err)
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("open %s: %w", listing.ID, err))
			continue
		}
		opened++
	}
	return opened, errs
}

// CloseDue settles or releases active auctions whose end time has passed.
func (s *service) CloseDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.DueToClose(ctx, now.UTC(), dueBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query auctions due to close")
	}
	closed := 0
	var errs error
	for _, listing := range due {
		if _, err := s.close(ctx, listing.ID, now.UTC()); err != nil {
			if pkgerrors.IsConflict(err) {
				s.logSkipped(ctx, listing.ID, "auction close skipped", err)
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("close %s: %w", listing.ID, err))
			continue
		}
		closed++
	}
	return closed, errs
}

func (s *service) logSkipped(ctx context.Context, listingID uuid.UUID, msg string, err error) {
	logCtx := s.logg.WithListingID(ctx, listingID.String())
	logCtx = s.logg.WithField(logCtx, "reason", err.Error())
	s.logg.Warn(logCtx, msg)
}

func (s *service) emitAuction(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, listing *models.Listing, winner *models.Bid, transactionID *uuid.UUID) error {
	data := payloads.AuctionEvent{
		ListingID:     listing.ID,
		BatchID:       listing.BatchID,
		Status:        listing.Status,
		TransactionID: transactionID,
	}
	if winner != nil {
		data.WinnerID = &winner.BidderID
		data.WinningBid = &winner.Amount
	}
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateListing,
		AggregateID:   listing.ID,
		OccurredAt:    s.now().UTC(),
		Data:          data,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit auction event")
	}
	return nil
}
