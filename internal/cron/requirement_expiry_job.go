package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/kisanmandi/mandi-backend/pkg/logger"
)

type requirementExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// RequirementExpiryJobParams configures the requirement deadline sweep.
type RequirementExpiryJobParams struct {
	Logger       *logger.Logger
	Requirements requirementExpirer
}

// NewRequirementExpiryJob expires open requirements past their deadline.
func NewRequirementExpiryJob(params RequirementExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Requirements == nil {
		return nil, fmt.Errorf("requirement service required")
	}
	return &requirementExpiryJob{
		logg:         params.Logger,
		requirements: params.Requirements,
		now:          time.Now,
	}, nil
}

type requirementExpiryJob struct {
	logg         *logger.Logger
	requirements requirementExpirer
	now          func() time.Time
}

func (j *requirementExpiryJob) Name() string { return "requirement-expiry" }

func (j *requirementExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	expired, err := j.requirements.ExpireDue(ctx, now)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"expired": expired,
		"as_of":   now,
	})
	if err != nil {
		return fmt.Errorf("expire requirements: %w", err)
	}
	j.logg.Info(logCtx, "requirement expiry sweep complete")
	return nil
}
