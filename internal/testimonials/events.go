package testimonials

import (
	"time"

	"github.com/google/uuid"

	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
)

// ReviewedEvent is emitted when a reviewer approves or rejects a testimonial.
type ReviewedEvent struct {
	TestimonialID uuid.UUID               `json:"testimonialId"`
	Action        enums.ReviewAction      `json:"action"`
	Status        enums.TestimonialStatus `json:"status"`
	DecidedAt     time.Time               `json:"decidedAt"`
	ExpiresAt     time.Time               `json:"expiresAt"`
}

// DeletedEvent is emitted when the retention sweep soft-deletes a row.
type DeletedEvent struct {
	TestimonialID uuid.UUID               `json:"testimonialId"`
	FromStatus    enums.TestimonialStatus `json:"fromStatus"`
	DeletedAt     time.Time               `json:"deletedAt"`
	MediaDeleted  bool                    `json:"mediaDeleted"`
}

// MediaPurgedEvent is emitted when a previously failed remote destroy
// eventually succeeds.
type MediaPurgedEvent struct {
	TestimonialID uuid.UUID `json:"testimonialId"`
	PublicID      string    `json:"publicId"`
	PurgedAt      time.Time `json:"purgedAt"`
}

// MediaPurgeFailedEvent is emitted when a remote destroy attempt fails and
// the row is soft-deleted anyway.
type MediaPurgeFailedEvent struct {
	TestimonialID uuid.UUID `json:"testimonialId"`
	PublicID      string    `json:"publicId"`
	FailedAt      time.Time `json:"failedAt"`
	Reason        string    `json:"reason"`
}
