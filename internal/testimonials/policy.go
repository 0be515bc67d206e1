package testimonials

import (
	"fmt"
	"time"

	"github.com/vouchlyhq/vouchly-backend/pkg/config"
	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
)

// Policy computes lifecycle transitions and expiry eligibility. It is pure:
// callers supply the clock and persist the result themselves.
type Policy struct {
	windows config.RetentionConfig
}

// NewPolicy builds a policy from the configured retention windows.
func NewPolicy(windows config.RetentionConfig) Policy {
	return Policy{windows: windows}
}

// Decision is the outcome of a review action.
type Decision struct {
	Status    enums.TestimonialStatus
	DecidedAt time.Time
	ExpiresAt time.Time
}

// Decide maps a review action onto the resulting status and expiry. It does
// not check the row's current status; conditional persistence handles that.
func (p Policy) Decide(action enums.ReviewAction, now time.Time) (Decision, error) {
	now = now.UTC()
	switch action {
	case enums.ReviewActionApprove:
		return Decision{
			Status:    enums.TestimonialStatusApproved,
			DecidedAt: now,
			ExpiresAt: now.Add(p.windows.ApprovedRetention()),
		}, nil
	case enums.ReviewActionReject:
		return Decision{
			Status:    enums.TestimonialStatusRejected,
			DecidedAt: now,
			ExpiresAt: now.Add(p.windows.RejectedRetention()),
		}, nil
	default:
		return Decision{}, fmt.Errorf("invalid review action %q", action)
	}
}

// PendingDeadline returns the instant a never-reviewed testimonial becomes
// sweep-eligible.
func (p Policy) PendingDeadline(recordedAt time.Time) time.Time {
	return recordedAt.Add(p.windows.PendingTimeout())
}

// IsExpired reports whether the row is eligible for the retention sweep at
// the given instant. Deleted rows are terminal and never eligible.
func (p Policy) IsExpired(t models.Testimonial, now time.Time) bool {
	switch t.Status {
	case enums.TestimonialStatusPending:
		return now.After(p.PendingDeadline(t.RecordedAt))
	case enums.TestimonialStatusApproved, enums.TestimonialStatusRejected:
		return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
	default:
		return false
	}
}
