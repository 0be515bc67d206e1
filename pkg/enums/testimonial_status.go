package enums

import "fmt"

// TestimonialStatus describes the lifecycle state of a recorded testimonial.
type TestimonialStatus string

const (
	TestimonialStatusPending  TestimonialStatus = "pending"
	TestimonialStatusApproved TestimonialStatus = "approved"
	TestimonialStatusRejected TestimonialStatus = "rejected"
	TestimonialStatusDeleted  TestimonialStatus = "deleted"
)

var validTestimonialStatuses = []TestimonialStatus{
	TestimonialStatusPending,
	TestimonialStatusApproved,
	TestimonialStatusRejected,
	TestimonialStatusDeleted,
}

// String returns the literal string for the status.
func (s TestimonialStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is known.
func (s TestimonialStatus) IsValid() bool {
	for _, candidate := range validTestimonialStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s TestimonialStatus) IsTerminal() bool {
	return s == TestimonialStatusDeleted
}

// ParseTestimonialStatus converts raw input into a TestimonialStatus.
func ParseTestimonialStatus(value string) (TestimonialStatus, error) {
	for _, candidate := range validTestimonialStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid testimonial status %q", value)
}
