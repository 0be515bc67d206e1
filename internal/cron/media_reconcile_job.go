package cron

import (
	"context"
	"fmt"

	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

type mediaReconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// MediaReconcileJobParams configure the failed-destroy retry job.
type MediaReconcileJobParams struct {
	Logger     *logger.Logger
	Reconciler mediaReconciler
}

// NewMediaReconcileJob wraps the media reconciler as a cron job. It retries
// remote destroys for soft-deleted rows whose media is still live.
func NewMediaReconcileJob(params MediaReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	return &mediaReconcileJob{
		logg:       params.Logger,
		reconciler: params.Reconciler,
	}, nil
}

type mediaReconcileJob struct {
	logg       *logger.Logger
	reconciler mediaReconciler
}

func (j *mediaReconcileJob) Name() string { return "media-reconcile" }

func (j *mediaReconcileJob) Run(ctx context.Context) error {
	cleaned, err := j.reconciler.Reconcile(ctx)
	logCtx := j.logg.WithField(ctx, "cleaned", cleaned)
	j.logg.Info(logCtx, "media reconcile cycle finished")
	return err
}
