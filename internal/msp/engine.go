package msp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kisanmandi/mandi-backend/internal/listings"
	"github.com/kisanmandi/mandi-backend/pkg/db/models"
	"github.com/kisanmandi/mandi-backend/pkg/enums"
	pkgerrors "github.com/kisanmandi/mandi-backend/pkg/errors"
	"gorm.io/gorm"
)

type channelEngine struct {
	repo Repository
}

// NewChannelEngine returns the MSP channel engine for the listing router.
func NewChannelEngine(repo Repository) listings.ChannelEngine {
	return &channelEngine{repo: repo}
}

// Route snapshots the rate in effect for the batch's crop onto the listing.
func (e *channelEngine) Route(ctx context.Context, tx *gorm.DB, req listings.RouteRequest) error {
	rate, err := latestRate(ctx, e.repo.WithTx(tx), req.Batch.CropType, req.Now)
	if err != nil {
		return err
	}
	snapshot := rate.Rate
	req.Listing.MSPRate = &snapshot
	req.Listing.Status = enums.ListingStatusActive
	return nil
}

func (e *channelEngine) CheckCancel(_ context.Context, _ *gorm.DB, listing *models.Listing) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("msp listing %s cannot be cancelled", listing.ID))
}

func (e *channelEngine) OnCancel(context.Context, *gorm.DB, *models.Listing) error {
	return nil
}

func latestRate(ctx context.Context, repo Repository, cropType string, asOf time.Time) (*models.MSPRate, error) {
	rate, err := repo.Latest(ctx, cropType, asOf)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no msp rate published for %s", cropType))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load msp rate")
	}
	return rate, nil
}
