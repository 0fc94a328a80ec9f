package listings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/pkg/db"
	"github.com/kisanmandi/mandi-backend/pkg/db/dbtest"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
)

type stubEngine struct {
	status    enums.ListingStatus
	cancelErr error
	cancelled []uuid.UUID
}

func (e *stubEngine) Route(_ context.Context, _ *gorm.DB, req RouteRequest) error {
	req.Listing.Status = e.status
	if req.Terms.MinimumPrice != nil {
		req.Listing.MinimumPrice = req.Terms.MinimumPrice
	}
	return nil
}

func (e *stubEngine) CheckCancel(context.Context, *gorm.DB, *models.Listing) error {
	return e.cancelErr
}

func (e *stubEngine) OnCancel(_ context.Context, _ *gorm.DB, listing *models.Listing) error {
	e.cancelled = append(e.cancelled, listing.ID)
	return nil
}

type fixture struct {
	svc         Service
	client      *db.Client
	marketplace *stubEngine
	msp         *stubEngine
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := dbtest.Open(t)
	emitter := outbox.NewService(outbox.NewRepository(client.DB()), nil)
	registry, err := batches.NewService(batches.NewRepository(client.DB()), client, emitter)
	require.NoError(t, err)
	repo := NewRepository(client.DB())
	marketplace := &stubEngine{status: enums.ListingStatusActive}
	msp := &stubEngine{status: enums.ListingStatusActive, cancelErr: pkgerrors.New(pkgerrors.CodeStateConflict, "msp listings cannot be cancelled")}
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Batches: registry,
		Status:  NewStatusWriter(repo),
		Tx:      client,
		Outbox:  emitter,
		Engines: map[enums.SaleChannel]ChannelEngine{
			enums.SaleChannelMarketplace: marketplace,
			enums.SaleChannelMSP:         msp,
		},
	})
	require.NoError(t, err)
	return fixture{svc: svc, client: client, marketplace: marketplace, msp: msp}
}

func marketplaceInput(batch *models.CropBatch) CreateInput {
	price := decimal.NewFromInt(100)
	return CreateInput{
		BatchID:  batch.ID,
		FarmerID: batch.FarmerID,
		Channel:  enums.SaleChannelMarketplace,
		Terms:    Terms{MinimumPrice: &price},
	}
}

func TestCreateListingEnforcesExclusivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch := dbtest.SeedBatch(t, f.client, uuid.New(), "wheat", decimal.NewFromInt(10), enums.CropUnitQuintal)

	listing, err := f.svc.CreateListing(ctx, marketplaceInput(batch))
	require.NoError(t, err)
	require.Equal(t, enums.ListingStatusActive, listing.Status)
	require.Equal(t, enums.BatchSaleStatusListed, dbtest.ReloadBatch(t, f.client, batch.ID).SaleStatus)

	_, err = f.svc.CreateListing(ctx, marketplaceInput(batch))
	require.True(t, pkgerrors.IsConflict(err))

	mspInput := marketplaceInput(batch)
	mspInput.Channel = enums.SaleChannelMSP
	_, err = f.svc.CreateListing(ctx, mspInput)
	require.True(t, pkgerrors.IsConflict(err), "a listed batch cannot enter a second channel")

	require.EqualValues(t, 1, dbtest.CountRows(t, f.client, &models.Listing{}, "batch_id = ?", batch.ID))
}

func TestCreateListingGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch := dbtest.SeedBatch(t, f.client, uuid.New(), "wheat", decimal.NewFromInt(10), enums.CropUnitQuintal)

	input := marketplaceInput(batch)
	input.FarmerID = uuid.New()
	_, err := f.svc.CreateListing(ctx, input)
	require.True(t, pkgerrors.IsForbidden(err))

	input = marketplaceInput(batch)
	input.BatchID = uuid.New()
	_, err = f.svc.CreateListing(ctx, input)
	require.True(t, pkgerrors.IsNotFound(err))

	input = marketplaceInput(batch)
	input.Channel = enums.SaleChannelRequirement
	_, err = f.svc.CreateListing(ctx, input)
	require.True(t, pkgerrors.IsValidation(err), "no engine registered for requirement in this fixture")
	require.Equal(t, enums.BatchSaleStatusAvailable, dbtest.ReloadBatch(t, f.client, batch.ID).SaleStatus)
}

func TestCancelListingReleasesBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	farmer := uuid.New()
	batch := dbtest.SeedBatch(t, f.client, farmer, "wheat", decimal.NewFromInt(10), enums.CropUnitQuintal)
	listing, err := f.svc.CreateListing(ctx, marketplaceInput(batch))
	require.NoError(t, err)

	_, err = f.svc.CancelListing(ctx, listing.ID, uuid.New())
	require.True(t, pkgerrors.IsForbidden(err))

	cancelled, err := f.svc.CancelListing(ctx, listing.ID, farmer)
	require.NoError(t, err)
	require.Equal(t, enums.ListingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.ClosedAt)
	require.Equal(t, []uuid.UUID{listing.ID}, f.marketplace.cancelled)
	require.Equal(t, enums.BatchSaleStatusAvailable, dbtest.ReloadBatch(t, f.client, batch.ID).SaleStatus)

	_, err = f.svc.CancelListing(ctx, listing.ID, farmer)
	require.True(t, pkgerrors.IsConflict(err))

	relisted, err := f.svc.CreateListing(ctx, marketplaceInput(batch))
	require.NoError(t, err, "a cancelled listing frees the batch for a fresh listing")
	require.NotEqual(t, listing.ID, relisted.ID)
}

func TestCancelListingRespectsEngine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	farmer := uuid.New()
	batch := dbtest.SeedBatch(t, f.client, farmer, "paddy", decimal.NewFromInt(10), enums.CropUnitQuintal)
	input := marketplaceInput(batch)
	input.Channel = enums.SaleChannelMSP
	listing, err := f.svc.CreateListing(ctx, input)
	require.NoError(t, err)

	_, err = f.svc.CancelListing(ctx, listing.ID, farmer)
	require.True(t, pkgerrors.IsConflict(err))
	require.Equal(t, enums.ListingStatusActive, dbtest.ReloadListing(t, f.client, listing.ID).Status)
}

func TestMarketplaceExcludesOtherChannels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	farmer := uuid.New()
	wheat := dbtest.SeedBatch(t, f.client, farmer, "wheat", decimal.NewFromInt(10), enums.CropUnitQuintal)
	rice := dbtest.SeedBatch(t, f.client, farmer, "rice", decimal.NewFromInt(10), enums.CropUnitQuintal)
	paddy := dbtest.SeedBatch(t, f.client, farmer, "paddy", decimal.NewFromInt(10), enums.CropUnitQuintal)

	_, err := f.svc.CreateListing(ctx, marketplaceInput(wheat))
	require.NoError(t, err)
	_, err = f.svc.CreateListing(ctx, marketplaceInput(rice))
	require.NoError(t, err)
	mspInput := marketplaceInput(paddy)
	mspInput.Channel = enums.SaleChannelMSP
	_, err = f.svc.CreateListing(ctx, mspInput)
	require.NoError(t, err)

	all, err := f.svc.ListMarketplace(ctx, MarketplaceParams{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	for _, item := range all.Items {
		require.Equal(t, enums.SaleChannelMarketplace, item.Channel)
		require.NotNil(t, item.Batch)
		require.NotNil(t, item.BidSummary.NextMinimumBid)
		require.True(t, item.BidSummary.NextMinimumBid.Equal(decimal.NewFromInt(101)))
	}

	filtered, err := f.svc.ListMarketplace(ctx, MarketplaceParams{CropType: "rice"})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, rice.ID, filtered.Items[0].BatchID)

	mine, err := f.svc.ListByFarmer(ctx, FarmerParams{FarmerID: farmer})
	require.NoError(t, err)
	require.Len(t, mine.Items, 3)
}

func TestDetailIncludesBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch := dbtest.SeedBatch(t, f.client, uuid.New(), "wheat", decimal.NewFromInt(10), enums.CropUnitQuintal)
	listing, err := f.svc.CreateListing(ctx, marketplaceInput(batch))
	require.NoError(t, err)

	view, err := f.svc.Detail(ctx, listing.ID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, batch.ID, view.Batch.ID)
	require.Equal(t, 0, view.BidSummary.BidCount)

	_, err = f.svc.Detail(ctx, uuid.New(), uuid.New())
	require.True(t, pkgerrors.IsNotFound(err))
}

func TestDetailHidesMSPListingsFromOtherCallers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	farmer := uuid.New()
	batch := dbtest.SeedBatch(t, f.client, farmer, "paddy", decimal.NewFromInt(10), enums.CropUnitQuintal)
	input := marketplaceInput(batch)
	input.Channel = enums.SaleChannelMSP
	listing, err := f.svc.CreateListing(ctx, input)
	require.NoError(t, err)

	_, err = f.svc.Detail(ctx, listing.ID, uuid.New())
	require.True(t, pkgerrors.IsNotFound(err), "msp submissions are not public")

	view, err := f.svc.Detail(ctx, listing.ID, farmer)
	require.NoError(t, err)
	require.Equal(t, enums.SaleChannelMSP, view.Channel)
}

func TestNextBidFloor(t *testing.T) {
	minimum := decimal.NewFromInt(100)
	increment := decimal.NewFromInt(5)
	listing := &models.Listing{MinimumPrice: &minimum}
	require.True(t, NextBidFloor(listing).Equal(decimal.NewFromInt(101)), "default increment is one unit")

	listing.MinIncrement = &increment
	highest := decimal.NewFromInt(120)
	listing.HighestBid = &highest
	require.True(t, NextBidFloor(listing).Equal(decimal.NewFromInt(125)))
}
