package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/pkg/db"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
	"github.com/kisanmandi/mandi-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type batchStore interface {
	batches.Reader
	batches.SaleStatusWriter
}

// Service routes batches into exactly one sale channel and serves the
// marketplace read-through.
type Service interface {
	CreateListing(ctx context.Context, input CreateInput) (*models.Listing, error)
	CreateListingTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Listing, error)
	CancelListing(ctx context.Context, listingID, actorID uuid.UUID) (*models.Listing, error)
	GetTx(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) (*models.Listing, error)
	ListMarketplace(ctx context.Context, params MarketplaceParams) (*ListResult, error)
	ListByFarmer(ctx context.Context, params FarmerParams) (*ListResult, error)
	Detail(ctx context.Context, listingID, viewerID uuid.UUID) (*ListingView, error)
}

// CreateInput asks the router to place a batch on a channel.
type CreateInput struct {
	BatchID  uuid.UUID
	FarmerID uuid.UUID
	Channel  enums.SaleChannel
	Terms    Terms
}

// MarketplaceParams filters the public marketplace.
type MarketplaceParams struct {
	CropType string
	Status   *enums.ListingStatus
	Limit    int
	Cursor   string
}

// FarmerParams lists a farmer's own listings across every channel.
type FarmerParams struct {
	FarmerID uuid.UUID
	Status   *enums.ListingStatus
	Limit    int
	Cursor   string
}

// BidSummary is the auction state shown with a listing.
type BidSummary struct {
	HighestBid      *decimal.Decimal `json:"highest_bid,omitempty"`
	HighestBidderID *uuid.UUID       `json:"highest_bidder_id,omitempty"`
	BidCount        int              `json:"bid_count"`
	NextMinimumBid  *decimal.Decimal `json:"next_minimum_bid,omitempty"`
}

// ListingView joins a listing with its batch and bid summary.
type ListingView struct {
	models.Listing
	Batch      *models.CropBatch `json:"batch,omitempty"`
	BidSummary BidSummary        `json:"bid_summary"`
}

// ListResult wraps listing views and the cursor for the next page.
type ListResult struct {
	Items  []ListingView `json:"items"`
	Cursor string        `json:"cursor"`
}

// ServiceParams configure the listing router.
type ServiceParams struct {
	Repo    Repository
	Batches batchStore
	Status  StatusWriter
	Tx      txRunner
	Outbox  outbox.Emitter
	Engines map[enums.SaleChannel]ChannelEngine
}

type service struct {
	repo    Repository
	batches batchStore
	status  StatusWriter
	tx      txRunner
	outbox  outbox.Emitter
	engines map[enums.SaleChannel]ChannelEngine
	now     func() time.Time
}

// NewService wires the listing router.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listing repository required")
	}
	if params.Batches == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "batch registry required")
	}
	if params.Status == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listing status writer required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	engines := make(map[enums.SaleChannel]ChannelEngine, len(params.Engines))
	for channel, engine := range params.Engines {
		if engine == nil {
			continue
		}
		engines[channel] = engine
	}
	return &service{
		repo:    params.Repo,
		batches: params.Batches,
		status:  params.Status,
		tx:      params.Tx,
		outbox:  params.Outbox,
		engines: engines,
		now:     time.Now,
	}, nil
}

func (s *service) CreateListing(ctx context.Context, input CreateInput) (*models.Listing, error) {
	var listing *models.Listing
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		listing, err = s.CreateListingTx(ctx, tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *service) CreateListingTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.Listing, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	engine, ok := s.engines[input.Channel]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported sale channel %q", input.Channel))
	}

	batch, err := s.batches.GetTx(ctx, tx, input.BatchID)
	if err != nil {
		return nil, err
	}
	if batch.FarmerID != input.FarmerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "batch does not belong to farmer")
	}
	if batch.SaleStatus != enums.BatchSaleStatusAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("batch is %s, not available", batch.SaleStatus)).
			WithDetails(map[string]any{"saleStatus": batch.SaleStatus})
	}
	repo := s.repo.WithTx(tx)
	if _, err := repo.FindOpenByBatch(ctx, batch.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "batch already has an open listing")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open listing")
	}

	now := s.now().UTC()
	listing := &models.Listing{
		ID:        uuid.New(),
		BatchID:   batch.ID,
		FarmerID:  batch.FarmerID,
		Channel:   input.Channel,
		Status:    enums.ListingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := engine.Route(ctx, tx, RouteRequest{Batch: batch, Listing: listing, Terms: input.Terms, Now: now}); err != nil {
		return nil, err
	}
	if !listing.Status.IsOpen() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "channel engine produced a closed listing")
	}

	if err := s.batches.TransitionSaleStatus(ctx, tx, batch.ID, enums.BatchSaleStatusAvailable, enums.BatchSaleStatusListed); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, listing); err != nil {
		if db.IsUniqueViolation(err, "ux_listings_open_batch") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "batch already has an open listing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	if err := s.emit(ctx, tx, enums.EventListingCreated, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *service) CancelListing(ctx context.Context, listingID, actorID uuid.UUID) (*models.Listing, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var listing *models.Listing
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		current, err := s.GetTx(ctx, tx, listingID)
		if err != nil {
			return err
		}
		if current.FarmerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to farmer")
		}
		if !current.Status.IsOpen() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("listing is already %s", current.Status))
		}
		engine, ok := s.engines[current.Channel]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("no engine for channel %q", current.Channel))
		}
		if err := engine.CheckCancel(ctx, tx, current); err != nil {
			return err
		}
		if err := s.status.TransitionListing(ctx, tx, current, enums.ListingStatusCancelled); err != nil {
			return err
		}
		if err := engine.OnCancel(ctx, tx, current); err != nil {
			return err
		}
		if err := s.batches.TransitionSaleStatus(ctx, tx, current.BatchID, enums.BatchSaleStatusListed, enums.BatchSaleStatusAvailable); err != nil {
			return err
		}
		listing = current
		return s.emit(ctx, tx, enums.EventListingCancelled, current)
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *service) GetTx(ctx context.Context, tx *gorm.DB, listingID uuid.UUID) (*models.Listing, error) {
	return s.load(ctx, s.repo.WithTx(tx), listingID)
}

func (s *service) load(ctx context.Context, repo Repository, listingID uuid.UUID) (*models.Listing, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	listing, err := repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

// ListMarketplace returns marketplace-channel listings only; MSP and
// requirement listings are never public.
func (s *service) ListMarketplace(ctx context.Context, params MarketplaceParams) (*ListResult, error) {
	statuses := []enums.ListingStatus{enums.ListingStatusPending, enums.ListingStatusActive}
	if params.Status != nil {
		statuses = []enums.ListingStatus{*params.Status}
	}
	query := listParams{
		Channels: []enums.SaleChannel{enums.SaleChannelMarketplace},
		Statuses: statuses,
		CropType: strings.TrimSpace(params.CropType),
		Limit:    params.Limit,
	}
	return s.list(ctx, query, params.Cursor)
}

func (s *service) ListByFarmer(ctx context.Context, params FarmerParams) (*ListResult, error) {
	if params.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	query := listParams{FarmerID: &params.FarmerID, Limit: params.Limit}
	if params.Status != nil {
		query.Statuses = []enums.ListingStatus{*params.Status}
	}
	return s.list(ctx, query, params.Cursor)
}

func (s *service) list(ctx context.Context, query listParams, rawCursor string) (*ListResult, error) {
	if rawCursor != "" {
		cursor, err := pagination.ParseCursor(rawCursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.BatchID)
	}
	batchRows, err := s.repo.FindBatches(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing batches")
	}
	byID := make(map[uuid.UUID]*models.CropBatch, len(batchRows))
	for i := range batchRows {
		byID[batchRows[i].ID] = &batchRows[i]
	}

	items := make([]ListingView, 0, len(rows))
	for _, row := range rows {
		items = append(items, buildView(row, byID[row.BatchID]))
	}
	return &ListResult{Items: items, Cursor: pagination.Encode(next)}, nil
}

// Detail shows marketplace listings to anyone. MSP and requirement listings
// are private to the farmer who routed them.
func (s *service) Detail(ctx context.Context, listingID, viewerID uuid.UUID) (*ListingView, error) {
	listing, err := s.load(ctx, s.repo, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Channel != enums.SaleChannelMarketplace && listing.FarmerID != viewerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	batchRows, err := s.repo.FindBatches(ctx, []uuid.UUID{listing.BatchID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing batch")
	}
	var batch *models.CropBatch
	if len(batchRows) == 1 {
		batch = &batchRows[0]
	}
	view := buildView(*listing, batch)
	return &view, nil
}

func buildView(listing models.Listing, batch *models.CropBatch) ListingView {
	view := ListingView{
		Listing: listing,
		Batch:   batch,
		BidSummary: BidSummary{
			HighestBid:      listing.HighestBid,
			HighestBidderID: listing.HighestBidderID,
			BidCount:        listing.BidCount,
		},
	}
	if listing.Channel == enums.SaleChannelMarketplace && listing.Status.IsOpen() {
		floor := NextBidFloor(&listing)
		view.BidSummary.NextMinimumBid = &floor
	}
	return view
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, listing *models.Listing) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateListing,
		AggregateID:   listing.ID,
		Actor:         &outbox.ActorRef{UserID: listing.FarmerID, Role: enums.ActorRoleFarmer.String()},
		OccurredAt:    s.now().UTC(),
		Data: payloads.ListingEvent{
			ListingID: listing.ID,
			BatchID:   listing.BatchID,
			FarmerID:  listing.FarmerID,
			Channel:   listing.Channel,
			Status:    listing.Status,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit listing event")
	}
	return nil
}
