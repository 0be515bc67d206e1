package testimonials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

func newTestReconciler(t *testing.T, repo Repository, media MediaDestroyer, emitter *fakeOutbox, now time.Time) *Reconciler {
	t.Helper()
	reconciler, err := NewReconciler(ReconcilerParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		DB:     fakeTxRunner{},
		Repo:   repo,
		Media:  media,
		Outbox: emitter,
	})
	if err != nil {
		t.Fatalf("NewReconciler: %v", err)
	}
	reconciler.now = func() time.Time { return now }
	return reconciler
}

func TestReconcileRetriesFailedDestroys(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	deletedAt := now.Add(-24 * time.Hour)
	row := &models.Testimonial{
		ID:           uuid.New(),
		Status:       enums.TestimonialStatusDeleted,
		CloudinaryID: strptr("clips/orphan"),
		DeletedAt:    &deletedAt,
		MediaDeleted: false,
	}
	repo := newFakeRepo(row)
	media := &fakeMedia{}
	emitter := &fakeOutbox{}
	reconciler := newTestReconciler(t, repo, media, emitter, now)

	cleaned, err := reconciler.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if cleaned != 1 {
		t.Fatalf("expected 1 cleaned got %d", cleaned)
	}
	if !row.MediaDeleted {
		t.Fatal("row must be marked media_deleted after a successful retry")
	}
	if row.MediaDeleteFailedAt != nil {
		t.Fatal("failure stamp must clear after success")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventTestimonialMediaPurged {
		t.Fatalf("expected a media purged event, got %+v", emitter.events)
	}
}

func TestReconcileKeepsFailingRowsQueued(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	row := &models.Testimonial{
		ID:           uuid.New(),
		Status:       enums.TestimonialStatusDeleted,
		CloudinaryID: strptr("clips/stubborn"),
		MediaDeleted: false,
	}
	repo := newFakeRepo(row)
	media := &fakeMedia{failFor: map[string]error{"clips/stubborn": errors.New("still down")}}
	reconciler := newTestReconciler(t, repo, media, &fakeOutbox{}, now)

	cleaned, err := reconciler.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if cleaned != 0 {
		t.Fatalf("expected 0 cleaned got %d", cleaned)
	}
	if row.MediaDeleted {
		t.Fatal("failed retry must leave the row queued")
	}
	if row.MediaDeleteFailedAt == nil || !row.MediaDeleteFailedAt.Equal(now) {
		t.Fatalf("expected failure stamp %s got %v", now, row.MediaDeleteFailedAt)
	}
}

func TestReconcileDropsUnresolvableRows(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	row := &models.Testimonial{
		ID:           uuid.New(),
		Status:       enums.TestimonialStatusDeleted,
		VideoURL:     "https://example.com/not-a-delivery-url",
		MediaDeleted: false,
	}
	repo := newFakeRepo(row)
	media := &fakeMedia{}
	reconciler := newTestReconciler(t, repo, media, &fakeOutbox{}, now)

	cleaned, err := reconciler.Reconcile(context.Background())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if cleaned != 1 {
		t.Fatalf("expected 1 cleaned got %d", cleaned)
	}
	if len(media.destroyed) != 0 {
		t.Fatalf("no destroy possible for unresolvable rows, got %v", media.destroyed)
	}
	if !row.MediaDeleted {
		t.Fatal("unresolvable rows must stop re-queuing")
	}
}
