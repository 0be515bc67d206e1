package enums

import "fmt"

// ReviewAction is the closed vocabulary of decisions a reviewer can take on a
// pending testimonial.
type ReviewAction string

const (
	ReviewActionApprove ReviewAction = "approve"
	ReviewActionReject  ReviewAction = "reject"
)

var validReviewActions = []ReviewAction{
	ReviewActionApprove,
	ReviewActionReject,
}

// String returns the literal string for the action.
func (a ReviewAction) String() string {
	return string(a)
}

// IsValid reports whether the action is known.
func (a ReviewAction) IsValid() bool {
	for _, candidate := range validReviewActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseReviewAction converts raw input into a ReviewAction.
func ParseReviewAction(value string) (ReviewAction, error) {
	for _, candidate := range validReviewActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid review action %q", value)
}
