package testimonials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	pkgerrors "github.com/vouchlyhq/vouchly-backend/pkg/errors"
	"github.com/vouchlyhq/vouchly-backend/pkg/outbox"
)

// Service defines testimonial operations beyond repository reads.
type Service interface {
	Review(ctx context.Context, input ReviewInput) (*ReviewOutcome, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Testimonial, error)
}

// ReviewInput captures the data required to decide a pending testimonial.
type ReviewInput struct {
	TestimonialID uuid.UUID
	Action        enums.ReviewAction
}

// ReviewOutcome reports the state the row moved to.
type ReviewOutcome struct {
	TestimonialID uuid.UUID
	Status        enums.TestimonialStatus
	DecidedAt     time.Time
	ExpiresAt     time.Time
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxEmitter
	policy Policy
	now    func() time.Time
}

// NewService builds a testimonial service with the required dependencies.
func NewService(repo Repository, tx txRunner, emitter outboxEmitter, policy Policy) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("testimonials repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: emitter,
		policy: policy,
		now:    time.Now,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "testimonial id required")
	}
	testimonial, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "testimonial not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load testimonial")
	}
	return testimonial, nil
}

// Review applies an approve/reject decision. The status write is conditional
// on the row still being pending, so a concurrent sweep or second reviewer
// loses cleanly instead of overwriting state.
func (s *service) Review(ctx context.Context, input ReviewInput) (*ReviewOutcome, error) {
	if input.TestimonialID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "testimonial id required")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid review action %q", input.Action))
	}

	decision, err := s.policy.Decide(input.Action, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decide review action")
	}

	var outcome *ReviewOutcome
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByID(ctx, input.TestimonialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "testimonial not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load testimonial")
		}
		if current.Status != enums.TestimonialStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("testimonial is %s, only pending testimonials can be reviewed", current.Status))
		}

		updates := map[string]any{
			"status":     decision.Status,
			"expires_at": decision.ExpiresAt,
		}
		switch decision.Status {
		case enums.TestimonialStatusApproved:
			updates["approved_at"] = decision.DecidedAt
		case enums.TestimonialStatusRejected:
			updates["rejected_at"] = decision.DecidedAt
		}

		rows, err := repo.UpdateWhereStatus(ctx, input.TestimonialID,
			[]enums.TestimonialStatus{enums.TestimonialStatusPending}, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist review decision")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "testimonial was modified concurrently")
		}

		eventType := enums.EventTestimonialApproved
		if decision.Status == enums.TestimonialStatusRejected {
			eventType = enums.EventTestimonialRejected
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateTestimonial,
			AggregateID:   input.TestimonialID,
			Version:       1,
			OccurredAt:    decision.DecidedAt,
			Data: ReviewedEvent{
				TestimonialID: input.TestimonialID,
				Action:        input.Action,
				Status:        decision.Status,
				DecidedAt:     decision.DecidedAt,
				ExpiresAt:     decision.ExpiresAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue review event")
		}

		outcome = &ReviewOutcome{
			TestimonialID: input.TestimonialID,
			Status:        decision.Status,
			DecidedAt:     decision.DecidedAt,
			ExpiresAt:     decision.ExpiresAt,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return outcome, nil
}
