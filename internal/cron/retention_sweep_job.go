package cron

import (
	"context"
	"fmt"

	"github.com/vouchlyhq/vouchly-backend/internal/testimonials"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

type retentionSweeper interface {
	Sweep(ctx context.Context) (testimonials.SweepResult, error)
}

// RetentionSweepJobParams configure the scheduled retention sweep.
type RetentionSweepJobParams struct {
	Logger  *logger.Logger
	Sweeper retentionSweeper
}

// NewRetentionSweepJob wraps the retention sweeper as a cron job.
func NewRetentionSweepJob(params RetentionSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("sweeper required")
	}
	return &retentionSweepJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
	}, nil
}

type retentionSweepJob struct {
	logg    *logger.Logger
	sweeper retentionSweeper
}

func (j *retentionSweepJob) Name() string { return "retention-sweep" }

func (j *retentionSweepJob) Run(ctx context.Context) error {
	result, err := j.sweeper.Sweep(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"pending_expired": result.PendingExpired,
		"deleted_expired": result.DeletedExpired,
	})
	j.logg.Info(logCtx, "retention sweep cycle finished")
	return err
}
