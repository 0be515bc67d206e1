package testimonials

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a testimonials repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, testimonial *models.Testimonial) (*models.Testimonial, error) {
	if err := r.db.WithContext(ctx).Create(testimonial).Error; err != nil {
		return nil, err
	}
	return testimonial, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	var testimonial models.Testimonial
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&testimonial).Error
	if err != nil {
		return nil, err
	}
	return &testimonial, nil
}

// UpdateWhereStatus applies updates only when the row is still in one of the
// allowed statuses. Losing writers see zero rows affected.
func (r *repository) UpdateWhereStatus(ctx context.Context, id uuid.UUID, allowed []enums.TestimonialStatus, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Testimonial{}).
		Where("id = ? AND status IN ?", id, allowed).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) FindPendingExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Testimonial, error) {
	var rows []models.Testimonial
	query := r.db.WithContext(ctx).
		Where("status = ? AND recorded_at < ?", enums.TestimonialStatusPending, cutoff).
		Order("recorded_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindReviewedExpired(ctx context.Context, now time.Time, limit int) ([]models.Testimonial, error) {
	var rows []models.Testimonial
	query := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
			[]enums.TestimonialStatus{enums.TestimonialStatusApproved, enums.TestimonialStatusRejected}, now).
		Order("expires_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindFailedMediaDeletes returns soft-deleted rows whose remote media is
// still awaiting cleanup.
func (r *repository) FindFailedMediaDeletes(ctx context.Context, limit int) ([]models.Testimonial, error) {
	var rows []models.Testimonial
	query := r.db.WithContext(ctx).
		Where("status = ? AND media_deleted = ?", enums.TestimonialStatusDeleted, false).
		Order("deleted_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) MarkMediaDeleted(ctx context.Context, id uuid.UUID, deletedOK bool, failedAt *time.Time) error {
	updates := map[string]any{
		"media_deleted":          deletedOK,
		"media_delete_failed_at": failedAt,
	}
	return r.db.WithContext(ctx).
		Model(&models.Testimonial{}).
		Where("id = ?", id).
		Updates(updates).Error
}
