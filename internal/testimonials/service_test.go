package testimonials

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	pkgerrors "github.com/vouchlyhq/vouchly-backend/pkg/errors"
)

func newTestService(t *testing.T, repo Repository, emitter *fakeOutbox, now time.Time) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, emitter, NewPolicy(testWindows()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.(*service).now = func() time.Time { return now }
	return svc
}

func TestReviewApproveStampsExpiry(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	row := &models.Testimonial{
		ID:         uuid.New(),
		Status:     enums.TestimonialStatusPending,
		VideoURL:   "https://res.cloudinary.com/demo/video/upload/v1/clips/t1.mp4",
		RecordedAt: now.Add(-5 * 24 * time.Hour),
	}
	repo := newFakeRepo(row)
	emitter := &fakeOutbox{}
	svc := newTestService(t, repo, emitter, now)

	outcome, err := svc.Review(context.Background(), ReviewInput{
		TestimonialID: row.ID,
		Action:        enums.ReviewActionApprove,
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if outcome.Status != enums.TestimonialStatusApproved {
		t.Fatalf("expected approved got %s", outcome.Status)
	}
	if want := now.Add(15 * 24 * time.Hour); !outcome.ExpiresAt.Equal(want) {
		t.Fatalf("expected expires at %s got %s", want, outcome.ExpiresAt)
	}
	if row.ApprovedAt == nil || !row.ApprovedAt.Equal(now) {
		t.Fatalf("expected approved_at stamped at %s got %v", now, row.ApprovedAt)
	}
	if row.RejectedAt != nil {
		t.Fatal("rejected_at must stay unset on approval")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventTestimonialApproved {
		t.Fatalf("expected one approved event, got %+v", emitter.events)
	}
}

func TestReviewRejectUsesShorterWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	row := &models.Testimonial{
		ID:         uuid.New(),
		Status:     enums.TestimonialStatusPending,
		RecordedAt: now.Add(-2 * 24 * time.Hour),
	}
	repo := newFakeRepo(row)
	emitter := &fakeOutbox{}
	svc := newTestService(t, repo, emitter, now)

	outcome, err := svc.Review(context.Background(), ReviewInput{
		TestimonialID: row.ID,
		Action:        enums.ReviewActionReject,
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if want := now.Add(3 * 24 * time.Hour); !outcome.ExpiresAt.Equal(want) {
		t.Fatalf("expected expires at %s got %s", want, outcome.ExpiresAt)
	}
	if row.RejectedAt == nil || !row.RejectedAt.Equal(now) {
		t.Fatalf("expected rejected_at stamped, got %v", row.RejectedAt)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventTestimonialRejected {
		t.Fatalf("expected one rejected event, got %+v", emitter.events)
	}
}

func TestReviewRejectsInvalidAction(t *testing.T) {
	t.Parallel()

	row := &models.Testimonial{ID: uuid.New(), Status: enums.TestimonialStatusPending}
	repo := newFakeRepo(row)
	svc := newTestService(t, repo, &fakeOutbox{}, time.Now())

	_, err := svc.Review(context.Background(), ReviewInput{
		TestimonialID: row.ID,
		Action:        enums.ReviewAction("delete"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if row.Status != enums.TestimonialStatusPending {
		t.Fatal("invalid action must not change state")
	}
}

func TestReviewNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeRepo(), &fakeOutbox{}, time.Now())

	_, err := svc.Review(context.Background(), ReviewInput{
		TestimonialID: uuid.New(),
		Action:        enums.ReviewActionApprove,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestReviewAlreadyDecided(t *testing.T) {
	t.Parallel()

	row := &models.Testimonial{ID: uuid.New(), Status: enums.TestimonialStatusApproved}
	repo := newFakeRepo(row)
	svc := newTestService(t, repo, &fakeOutbox{}, time.Now())

	_, err := svc.Review(context.Background(), ReviewInput{
		TestimonialID: row.ID,
		Action:        enums.ReviewActionReject,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if row.Status != enums.TestimonialStatusApproved {
		t.Fatal("status must not move backward")
	}
}

// raceRepo reports a clean read but zero rows on write, as when a concurrent
// sweep wins between the load and the conditional update.
type raceRepo struct {
	*fakeRepo
}

func (r raceRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r raceRepo) UpdateWhereStatus(ctx context.Context, id uuid.UUID, allowed []enums.TestimonialStatus, updates map[string]any) (int64, error) {
	return 0, nil
}

func TestReviewLosesRaceCleanly(t *testing.T) {
	t.Parallel()

	row := &models.Testimonial{ID: uuid.New(), Status: enums.TestimonialStatusPending}
	repo := raceRepo{newFakeRepo(row)}
	emitter := &fakeOutbox{}
	svc := newTestService(t, repo, emitter, time.Now())

	_, err := svc.Review(context.Background(), ReviewInput{
		TestimonialID: row.ID,
		Action:        enums.ReviewActionApprove,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatal("losing writer must not emit events")
	}
}
