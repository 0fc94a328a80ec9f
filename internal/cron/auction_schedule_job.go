package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/logger"
	"go.uber.org/multierr"
)

type auctionScheduler interface {
	OpenDue(ctx context.Context, now time.Time) (int, error)
	CloseDue(ctx context.Context, now time.Time) (int, error)
}

// AuctionScheduleJobParams configures the auction open/close sweep.
type AuctionScheduleJobParams struct {
	Logger   *logger.Logger
	Auctions auctionScheduler
}

// NewAuctionScheduleJob activates pending auctions whose start time has come
// and closes active auctions whose end time has passed.
func NewAuctionScheduleJob(params AuctionScheduleJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Auctions == nil {
		return nil, fmt.Errorf("auction service required")
	}
	return &auctionScheduleJob{
		logg:     params.Logger,
		auctions: params.Auctions,
		now:      time.Now,
	}, nil
}

type auctionScheduleJob struct {
	logg     *logger.Logger
	auctions auctionScheduler
	now      func() time.Time
}

func (j *auctionScheduleJob) Name() string { return "auction-schedule" }

func (j *auctionScheduleJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	// Open before close so a window that elapsed between ticks closes now.
	opened, openErr := j.auctions.OpenDue(ctx, now)
	closed, closeErr := j.auctions.CloseDue(ctx, now)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"opened": opened,
		"closed": closed,
		"as_of":  now,
	})
	j.logg.Info(logCtx, "auction schedule sweep complete")

	var errs error
	if openErr != nil {
		errs = multierr.Append(errs, fmt.Errorf("open due auctions: %w", openErr))
	}
	if closeErr != nil {
		errs = multierr.Append(errs, fmt.Errorf("close due auctions: %w", closeErr))
	}
	return errs
}
