package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
)

// Testimonial is a recorded customer video moving through the review and
// retention lifecycle. Rows are never hard-deleted; the deleted status is a
// soft delete and terminal.
type Testimonial struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Status       enums.TestimonialStatus `gorm:"column:status;type:testimonial_status;not null;default:'pending'"`
	VideoURL     string                  `gorm:"column:video_url;not null"`
	CloudinaryID *string                 `gorm:"column:cloudinary_id"`

	RecordedAt time.Time  `gorm:"column:recorded_at;not null"`
	ApprovedAt *time.Time `gorm:"column:approved_at"`
	RejectedAt *time.Time `gorm:"column:rejected_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at"`

	// ExpiresAt is reused across states: set on approval/rejection, unset
	// while pending (pending expiry derives from recorded_at).
	ExpiresAt *time.Time `gorm:"column:expires_at"`

	// MediaDeleted tracks physical cleanup separately from the logical
	// deleted status so failed destroys can be retried.
	MediaDeleted        bool       `gorm:"column:media_deleted;not null;default:false"`
	MediaDeleteFailedAt *time.Time `gorm:"column:media_delete_failed_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
