package testimonials

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

func newTestSweeper(t *testing.T, repo Repository, media MediaDestroyer, emitter *fakeOutbox, now time.Time) *Sweeper {
	t.Helper()
	sweeper, err := NewSweeper(SweeperParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		DB:     fakeTxRunner{},
		Repo:   repo,
		Media:  media,
		Outbox: emitter,
		Policy: NewPolicy(testWindows()),
	})
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	sweeper.now = func() time.Time { return now }
	return sweeper
}

func strptr(s string) *string { return &s }

func TestSweepExpiresPendingAndReviewed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	stalePendingID := uuid.New()
	expiredApproved := now.Add(-24 * time.Hour)
	rows := []*models.Testimonial{
		{
			ID:         stalePendingID,
			Status:     enums.TestimonialStatusPending,
			VideoURL:   "https://res.cloudinary.com/demo/video/upload/v10/clips/stale.mp4",
			RecordedAt: now.Add(-11 * 24 * time.Hour),
		},
		{
			ID:           uuid.New(),
			Status:       enums.TestimonialStatusApproved,
			CloudinaryID: strptr("clips/approved"),
			RecordedAt:   now.Add(-20 * 24 * time.Hour),
			ExpiresAt:    &expiredApproved,
		},
		{
			ID:         uuid.New(),
			Status:     enums.TestimonialStatusPending,
			RecordedAt: now.Add(-24 * time.Hour),
		},
	}
	repo := newFakeRepo(rows...)
	media := &fakeMedia{}
	emitter := &fakeOutbox{}
	sweeper := newTestSweeper(t, repo, media, emitter, now)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.PendingExpired != 1 || result.DeletedExpired != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(media.destroyed) != 2 {
		t.Fatalf("expected 2 destroys got %v", media.destroyed)
	}
	for _, row := range rows[:2] {
		if row.Status != enums.TestimonialStatusDeleted {
			t.Fatalf("expected row %s deleted, got %s", row.ID, row.Status)
		}
		if row.DeletedAt == nil || !row.DeletedAt.Equal(now) {
			t.Fatalf("expected deleted_at %s got %v", now, row.DeletedAt)
		}
		if !row.MediaDeleted {
			t.Fatalf("expected media_deleted for %s", row.ID)
		}
	}
	if rows[2].Status != enums.TestimonialStatusPending {
		t.Fatal("fresh pending row must be untouched")
	}

	var sawExpired, sawDeleted bool
	for _, event := range emitter.events {
		switch event.EventType {
		case enums.EventTestimonialExpired:
			sawExpired = true
			if event.AggregateID != stalePendingID {
				t.Fatalf("expired event for wrong row: %s", event.AggregateID)
			}
		case enums.EventTestimonialDeleted:
			sawDeleted = true
		}
	}
	if !sawExpired || !sawDeleted {
		t.Fatalf("expected expired and deleted events, got %+v", emitter.events)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	row := &models.Testimonial{
		ID:         uuid.New(),
		Status:     enums.TestimonialStatusPending,
		RecordedAt: now.Add(-12 * 24 * time.Hour),
	}
	repo := newFakeRepo(row)
	media := &fakeMedia{}
	sweeper := newTestSweeper(t, repo, media, &fakeOutbox{}, now)

	first, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("first Sweep: %v", err)
	}
	if first.PendingExpired != 1 {
		t.Fatalf("expected one pending sweep, got %+v", first)
	}

	second, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if second.PendingExpired != 0 || second.DeletedExpired != 0 {
		t.Fatalf("second pass must process nothing, got %+v", second)
	}
}

func TestSweepIsolatesDestroyFailures(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	failing := &models.Testimonial{
		ID:           uuid.New(),
		Status:       enums.TestimonialStatusPending,
		CloudinaryID: strptr("clips/poison"),
		RecordedAt:   now.Add(-15 * 24 * time.Hour),
	}
	healthy := &models.Testimonial{
		ID:           uuid.New(),
		Status:       enums.TestimonialStatusPending,
		CloudinaryID: strptr("clips/fine"),
		RecordedAt:   now.Add(-15 * 24 * time.Hour),
	}
	repo := newFakeRepo(failing, healthy)
	media := &fakeMedia{failFor: map[string]error{"clips/poison": errors.New("provider down")}}
	emitter := &fakeOutbox{}
	sweeper := newTestSweeper(t, repo, media, emitter, now)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.PendingExpired != 2 {
		t.Fatalf("both rows must still be swept, got %+v", result)
	}
	if result.MediaDeleteFailures != 1 {
		t.Fatalf("expected one media failure, got %+v", result)
	}
	if failing.Status != enums.TestimonialStatusDeleted {
		t.Fatal("row with failed destroy must still be soft-deleted")
	}
	if failing.MediaDeleted {
		t.Fatal("failed destroy must leave media_deleted false for reconciliation")
	}
	if failing.MediaDeleteFailedAt == nil {
		t.Fatal("failed destroy must stamp media_delete_failed_at")
	}
	if !healthy.MediaDeleted {
		t.Fatal("healthy row must be fully cleaned")
	}

	var sawPurgeFailed bool
	for _, event := range emitter.events {
		if event.EventType == enums.EventTestimonialPurgeFailed {
			sawPurgeFailed = true
		}
	}
	if !sawPurgeFailed {
		t.Fatal("expected a purge failure event")
	}
}

func TestSweepHandlesUnresolvableMediaID(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	row := &models.Testimonial{
		ID:         uuid.New(),
		Status:     enums.TestimonialStatusPending,
		VideoURL:   "https://res.cloudinary.com/demo/video/upload/v1/noextension",
		RecordedAt: now.Add(-11 * 24 * time.Hour),
	}
	repo := newFakeRepo(row)
	media := &fakeMedia{}
	sweeper := newTestSweeper(t, repo, media, &fakeOutbox{}, now)

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.PendingExpired != 1 {
		t.Fatalf("row must still be swept, got %+v", result)
	}
	if len(media.destroyed) != 0 {
		t.Fatalf("no destroy should be attempted, got %v", media.destroyed)
	}
	if row.Status != enums.TestimonialStatusDeleted {
		t.Fatal("row must be soft-deleted despite unresolvable media id")
	}
}

func TestSweepSkipsRowsLostToReviewers(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	row := &models.Testimonial{
		ID:         uuid.New(),
		Status:     enums.TestimonialStatusPending,
		RecordedAt: now.Add(-11 * 24 * time.Hour),
	}
	repo := newFakeRepo(row)
	// Simulate a reviewer winning after the candidate query.
	repo.rows[row.ID].Status = enums.TestimonialStatusApproved
	approvedExpiry := now.Add(15 * 24 * time.Hour)
	repo.rows[row.ID].ExpiresAt = &approvedExpiry

	media := &fakeMedia{}
	emitter := &fakeOutbox{}
	sweeper, err := NewSweeper(SweeperParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		DB:     fakeTxRunner{},
		Repo:   stalePendingRepo{repo, *row},
		Media:  media,
		Outbox: emitter,
		Policy: NewPolicy(testWindows()),
	})
	if err != nil {
		t.Fatalf("NewSweeper: %v", err)
	}
	sweeper.now = func() time.Time { return now }

	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if result.PendingExpired != 0 {
		t.Fatalf("lost race must not count as swept, got %+v", result)
	}
	if repo.rows[row.ID].Status != enums.TestimonialStatusApproved {
		t.Fatal("reviewer's write must survive")
	}
	if len(emitter.events) != 0 {
		t.Fatal("no events for rows the sweep lost")
	}
}

// stalePendingRepo serves a stale pending snapshot from the candidate query
// while the backing store already holds the reviewer's newer status.
type stalePendingRepo struct {
	*fakeRepo
	stale models.Testimonial
}

func (s stalePendingRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s stalePendingRepo) FindPendingExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Testimonial, error) {
	return []models.Testimonial{s.stale}, nil
}

func (s stalePendingRepo) FindReviewedExpired(ctx context.Context, now time.Time, limit int) ([]models.Testimonial, error) {
	return nil, nil
}
