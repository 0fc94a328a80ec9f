package msp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kisanmandi/mandi-backend/internal/batches"
	"github.com/kisanmandi/mandi-backend/internal/listings"
	"github.com/kisanmandi/mandi-backend/internal/settlement"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"github.com/kisanmandi/mandi-backend/pkg/outbox"
	"github.com/kisanmandi/mandi-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const historyLimit = 20

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type listingRouter interface {
	CreateListingTx(ctx context.Context, tx *gorm.DB, input listings.CreateInput) (*models.Listing, error)
}

// Service publishes procurement rates and buys batches at them.
type Service interface {
	PublishRate(ctx context.Context, input PublishRateInput) (*models.MSPRate, error)
	GetRate(ctx context.Context, cropType string) (*models.MSPRate, error)
	RateHistory(ctx context.Context, cropType string) ([]models.MSPRate, error)
	Submit(ctx context.Context, input SubmitInput) (*Procurement, error)
}

// PublishRateInput is an officer's rate announcement. EffectiveFrom defaults to now.
type PublishRateInput struct {
	OfficerID     uuid.UUID
	Role          enums.ActorRole
	CropType      string
	Unit          enums.CropUnit
	Rate          decimal.Decimal
	Season        *string
	EffectiveFrom *time.Time
}

// SubmitInput sells a farmer's batch to the procurement agency.
type SubmitInput struct {
	BatchID  uuid.UUID
	FarmerID uuid.UUID
}

// Procurement is a completed MSP sale.
type Procurement struct {
	Listing     models.Listing     `json:"listing"`
	Rate        models.MSPRate     `json:"rate"`
	Transaction models.Transaction `json:"transaction"`
}

// ServiceParams configure the MSP gate.
type ServiceParams struct {
	Repo       Repository
	Batches    batches.Reader
	Listings   listingRouter
	Status     listings.StatusWriter
	Sales      batches.SaleStatusWriter
	Settlement settlement.Settler
	Tx         txRunner
	Outbox     outbox.Emitter
}

type service struct {
	repo       Repository
	batches    batches.Reader
	listings   listingRouter
	status     listings.StatusWriter
	sales      batches.SaleStatusWriter
	settlement settlement.Settler
	tx         txRunner
	outbox     outbox.Emitter
	now        func() time.Time
}

// NewService wires the MSP procurement gate.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "msp repository required")
	case params.Batches == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "batch reader required")
	case params.Listings == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listing router required")
	case params.Status == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "listing status writer required")
	case params.Sales == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "batch sale status writer required")
	case params.Settlement == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "settlement ledger required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case params.Outbox == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox emitter required")
	}
	return &service{
		repo:       params.Repo,
		batches:    params.Batches,
		listings:   params.Listings,
		status:     params.Status,
		sales:      params.Sales,
		settlement: params.Settlement,
		tx:         params.Tx,
		outbox:     params.Outbox,
		now:        time.Now,
	}, nil
}

func canPublish(role enums.ActorRole) bool {
	return role == enums.ActorRoleOfficer || role == enums.ActorRoleAdmin
}

func (s *service) PublishRate(ctx context.Context, input PublishRateInput) (*models.MSPRate, error) {
	if input.OfficerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !canPublish(input.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only procurement officers can publish rates")
	}
	crop := strings.TrimSpace(input.CropType)
	switch {
	case crop == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "crop type is required")
	case !input.Unit.IsValid():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported unit %q", input.Unit))
	case !input.Rate.IsPositive():
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be greater than zero")
	}

	now := s.now().UTC()
	effective := now
	if input.EffectiveFrom != nil && !input.EffectiveFrom.IsZero() {
		effective = input.EffectiveFrom.UTC()
	}
	rate := &models.MSPRate{
		ID:            uuid.New(),
		CropType:      crop,
		Unit:          input.Unit,
		Rate:          input.Rate,
		Season:        input.Season,
		PublishedBy:   input.OfficerID,
		EffectiveFrom: effective,
		PublishedAt:   now,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, rate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create msp rate")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventMSPRatePublished,
			AggregateType: enums.AggregateMSPRate,
			AggregateID:   rate.ID,
			Actor:         &outbox.ActorRef{UserID: input.OfficerID, Role: input.Role.String()},
			OccurredAt:    now,
			Data: payloads.MSPRatePublishedEvent{
				RateID:        rate.ID,
				CropType:      rate.CropType,
				Unit:          rate.Unit,
				Rate:          rate.Rate,
				EffectiveFrom: rate.EffectiveFrom,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit msp rate event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *service) GetRate(ctx context.Context, cropType string) (*models.MSPRate, error) {
	if strings.TrimSpace(cropType) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "crop type is required")
	}
	return latestRate(ctx, s.repo, cropType, s.now().UTC())
}

func (s *service) RateHistory(ctx context.Context, cropType string) ([]models.MSPRate, error) {
	if strings.TrimSpace(cropType) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "crop type is required")
	}
	rows, err := s.repo.History(ctx, cropType, historyLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load msp rate history")
	}
	if rows == nil {
		rows = []models.MSPRate{}
	}
	return rows, nil
}

// Submit sells the whole batch at the rate in effect: listing and batch go
// straight to sold and the agency's payment is recorded, all in one transaction.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*Procurement, error) {
	if input.FarmerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	var result *Procurement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		batch, err := s.batches.GetTx(ctx, tx, input.BatchID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		rate, err := latestRate(ctx, s.repo.WithTx(tx), batch.CropType, now)
		if err != nil {
			return err
		}

		listing, err := s.listings.CreateListingTx(ctx, tx, listings.CreateInput{
			BatchID:  batch.ID,
			FarmerID: input.FarmerID,
			Channel:  enums.SaleChannelMSP,
		})
		if err != nil {
			return err
		}
		if err := s.status.TransitionListing(ctx, tx, listing, enums.ListingStatusSold); err != nil {
			return err
		}
		if err := s.sales.TransitionSaleStatus(ctx, tx, batch.ID, enums.BatchSaleStatusListed, enums.BatchSaleStatusSold); err != nil {
			return err
		}

		price := rate.Rate
		if listing.MSPRate != nil {
			price = *listing.MSPRate
		}
		amount := price.Mul(batch.Unit.Convert(batch.Quantity, rate.Unit)).Round(2)
		settled, err := s.settlement.Settle(ctx, tx, settlement.SettleInput{
			SourceID:    listing.ID,
			SourceType:  enums.SettlementSourceListing,
			Channel:     enums.LedgerChannelMSP,
			PayerID:     rate.PublishedBy,
			PayeeID:     batch.FarmerID,
			Amount:      amount,
			Description: fmt.Sprintf("msp procurement of %s", batch.CropType),
		})
		if err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventMSPProcured,
			AggregateType: enums.AggregateListing,
			AggregateID:   listing.ID,
			Actor:         &outbox.ActorRef{UserID: input.FarmerID, Role: enums.ActorRoleFarmer.String()},
			OccurredAt:    now,
			Data: payloads.MSPProcuredEvent{
				ListingID:     listing.ID,
				BatchID:       batch.ID,
				FarmerID:      batch.FarmerID,
				Rate:          price,
				Amount:        amount,
				TransactionID: settled.Transaction.ID,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit msp procurement event")
		}
		result = &Procurement{Listing: *listing, Rate: *rate, Transaction: settled.Transaction}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
