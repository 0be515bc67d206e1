package testimonials

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	"github.com/vouchlyhq/vouchly-backend/pkg/outbox"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// fakeRepo keeps rows in memory and honors the status guard the way the real
// repository does, so conditional-update races can be simulated.
type fakeRepo struct {
	rows map[uuid.UUID]*models.Testimonial

	findErr   error
	updateErr error

	updatedIDs    []uuid.UUID
	mediaMarkIDs  []uuid.UUID
	pendingCutoff time.Time
}

func newFakeRepo(rows ...*models.Testimonial) *fakeRepo {
	repo := &fakeRepo{rows: map[uuid.UUID]*models.Testimonial{}}
	for _, row := range rows {
		repo.rows[row.ID] = row
	}
	return repo
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, testimonial *models.Testimonial) (*models.Testimonial, error) {
	f.rows[testimonial.ID] = testimonial
	return testimonial, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRepo) UpdateWhereStatus(ctx context.Context, id uuid.UUID, allowed []enums.TestimonialStatus, updates map[string]any) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	row, ok := f.rows[id]
	if !ok {
		return 0, nil
	}
	permitted := false
	for _, status := range allowed {
		if row.Status == status {
			permitted = true
			break
		}
	}
	if !permitted {
		return 0, nil
	}
	applyUpdates(row, updates)
	f.updatedIDs = append(f.updatedIDs, id)
	return 1, nil
}

func applyUpdates(row *models.Testimonial, updates map[string]any) {
	for key, value := range updates {
		switch key {
		case "status":
			row.Status = value.(enums.TestimonialStatus)
		case "expires_at":
			t := value.(time.Time)
			row.ExpiresAt = &t
		case "approved_at":
			t := value.(time.Time)
			row.ApprovedAt = &t
		case "rejected_at":
			t := value.(time.Time)
			row.RejectedAt = &t
		case "deleted_at":
			t := value.(time.Time)
			row.DeletedAt = &t
		case "media_deleted":
			row.MediaDeleted = value.(bool)
		case "media_delete_failed_at":
			t := value.(time.Time)
			row.MediaDeleteFailedAt = &t
		}
	}
}

func (f *fakeRepo) FindPendingExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Testimonial, error) {
	f.pendingCutoff = cutoff
	var out []models.Testimonial
	for _, row := range f.rows {
		if row.Status == enums.TestimonialStatusPending && row.RecordedAt.Before(cutoff) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindReviewedExpired(ctx context.Context, now time.Time, limit int) ([]models.Testimonial, error) {
	var out []models.Testimonial
	for _, row := range f.rows {
		switch row.Status {
		case enums.TestimonialStatusApproved, enums.TestimonialStatusRejected:
			if row.ExpiresAt != nil && row.ExpiresAt.Before(now) {
				out = append(out, *row)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) FindFailedMediaDeletes(ctx context.Context, limit int) ([]models.Testimonial, error) {
	var out []models.Testimonial
	for _, row := range f.rows {
		if row.Status == enums.TestimonialStatusDeleted && !row.MediaDeleted {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkMediaDeleted(ctx context.Context, id uuid.UUID, deletedOK bool, failedAt *time.Time) error {
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.MediaDeleted = deletedOK
	row.MediaDeleteFailedAt = failedAt
	f.mediaMarkIDs = append(f.mediaMarkIDs, id)
	return nil
}

type fakeOutbox struct {
	events []outbox.DomainEvent
	err    error
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeMedia struct {
	destroyed []string
	failFor   map[string]error
}

func (f *fakeMedia) Destroy(ctx context.Context, publicID string) error {
	if err, ok := f.failFor[publicID]; ok {
		return err
	}
	f.destroyed = append(f.destroyed, publicID)
	return nil
}
