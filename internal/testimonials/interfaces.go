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

// Repository defines persistence operations for the testimonials table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, testimonial *models.Testimonial) (*models.Testimonial, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error)
	UpdateWhereStatus(ctx context.Context, id uuid.UUID, allowed []enums.TestimonialStatus, updates map[string]any) (int64, error)
	FindPendingExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Testimonial, error)
	FindReviewedExpired(ctx context.Context, now time.Time, limit int) ([]models.Testimonial, error)
	FindFailedMediaDeletes(ctx context.Context, limit int) ([]models.Testimonial, error)
	MarkMediaDeleted(ctx context.Context, id uuid.UUID, deletedOK bool, failedAt *time.Time) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// MediaDestroyer removes a remote media object by its provider public id.
type MediaDestroyer interface {
	Destroy(ctx context.Context, publicID string) error
}
