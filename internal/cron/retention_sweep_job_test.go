package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vouchlyhq/vouchly-backend/internal/testimonials"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

type fakeSweeper struct {
	result testimonials.SweepResult
	err    error
	runs   int
}

func (f *fakeSweeper) Sweep(ctx context.Context) (testimonials.SweepResult, error) {
	f.runs++
	return f.result, f.err
}

func TestRetentionSweepJobRunsSweeper(t *testing.T) {
	t.Parallel()

	sweeper := &fakeSweeper{result: testimonials.SweepResult{
		PendingExpired: 2,
		DeletedExpired: 1,
		ProcessedAt:    time.Now(),
	}}
	job, err := NewRetentionSweepJob(RetentionSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: sweeper,
	})
	if err != nil {
		t.Fatalf("NewRetentionSweepJob: %v", err)
	}
	if job.Name() != "retention-sweep" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.runs != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.runs)
	}
}

func TestRetentionSweepJobSurfacesErrors(t *testing.T) {
	t.Parallel()

	sweeper := &fakeSweeper{err: errors.New("db down")}
	job, err := NewRetentionSweepJob(RetentionSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: sweeper,
	})
	if err != nil {
		t.Fatalf("NewRetentionSweepJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
