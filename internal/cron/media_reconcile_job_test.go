package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

type fakeReconciler struct {
	cleaned int
	err     error
	runs    int
}

func (f *fakeReconciler) Reconcile(ctx context.Context) (int, error) {
	f.runs++
	return f.cleaned, f.err
}

func TestMediaReconcileJobRunsReconciler(t *testing.T) {
	t.Parallel()

	reconciler := &fakeReconciler{cleaned: 3}
	job, err := NewMediaReconcileJob(MediaReconcileJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Reconciler: reconciler,
	})
	if err != nil {
		t.Fatalf("NewMediaReconcileJob: %v", err)
	}
	if job.Name() != "media-reconcile" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reconciler.runs != 1 {
		t.Fatalf("expected one reconcile, got %d", reconciler.runs)
	}
}

func TestMediaReconcileJobSurfacesErrors(t *testing.T) {
	t.Parallel()

	job, err := NewMediaReconcileJob(MediaReconcileJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Reconciler: &fakeReconciler{err: errors.New("provider down")},
	})
	if err != nil {
		t.Fatalf("NewMediaReconcileJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
