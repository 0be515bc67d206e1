package testimonials

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/vouchlyhq/vouchly-backend/pkg/cloudinary"
	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
	"github.com/vouchlyhq/vouchly-backend/pkg/metrics"
	"github.com/vouchlyhq/vouchly-backend/pkg/outbox"
)

const (
	bucketPending  = "pending"
	bucketReviewed = "reviewed"
)

// SweepResult reports one sweep pass for observability.
type SweepResult struct {
	PendingExpired      int
	DeletedExpired      int
	MediaDeleteFailures int
	ProcessedAt         time.Time
}

// SweeperParams configure the retention sweeper.
type SweeperParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Repo      Repository
	Media     MediaDestroyer
	Outbox    outboxEmitter
	Policy    Policy
	Metrics   *metrics.SweepMetrics
	BatchSize int
}

// Sweeper soft-deletes expired testimonials after purging their remote media.
// Each candidate is an independent unit of work; one bad row never blocks the
// rest of the batch.
type Sweeper struct {
	logg      *logger.Logger
	db        txRunner
	repo      Repository
	media     MediaDestroyer
	outbox    outboxEmitter
	policy    Policy
	metrics   *metrics.SweepMetrics
	batchSize int
	now       func() time.Time
}

// NewSweeper builds a retention sweeper.
func NewSweeper(params SweeperParams) (*Sweeper, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("testimonials repository required")
	}
	if params.Media == nil {
		return nil, fmt.Errorf("media destroyer required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Sweeper{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repo,
		media:     params.Media,
		outbox:    params.Outbox,
		policy:    params.Policy,
		metrics:   params.Metrics,
		batchSize: params.BatchSize,
		now:       time.Now,
	}, nil
}

// Sweep runs one retention pass. Row-level failures are aggregated into the
// returned error but never abort the remaining candidates; the counts in
// SweepResult reflect what actually transitioned.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()
	result := SweepResult{ProcessedAt: now}
	var errs []error

	pendingCutoff := now.Add(-s.policy.windows.PendingTimeout())
	pending, err := s.repo.FindPendingExpired(ctx, pendingCutoff, s.batchSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("query expired pending testimonials: %w", err))
	} else {
		for _, row := range pending {
			if !s.policy.IsExpired(row, now) {
				continue
			}
			if err := s.sweepRow(ctx, row, now, bucketPending, &result); err != nil {
				errs = append(errs, err)
			}
		}
	}

	reviewed, err := s.repo.FindReviewedExpired(ctx, now, s.batchSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("query expired reviewed testimonials: %w", err))
	} else {
		for _, row := range reviewed {
			if !s.policy.IsExpired(row, now) {
				continue
			}
			if err := s.sweepRow(ctx, row, now, bucketReviewed, &result); err != nil {
				errs = append(errs, err)
			}
		}
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"pending_expired":       result.PendingExpired,
		"deleted_expired":       result.DeletedExpired,
		"media_delete_failures": result.MediaDeleteFailures,
	})
	s.logg.Info(logCtx, "retention sweep complete")
	return result, multierr.Combine(errs...)
}

func (s *Sweeper) sweepRow(ctx context.Context, row models.Testimonial, now time.Time, bucket string, result *SweepResult) error {
	rowCtx := s.logg.WithTestimonialID(ctx, row.ID.String())

	publicID, destroyErr := s.destroyMedia(rowCtx, row)
	mediaDeleted := destroyErr == nil
	if destroyErr != nil {
		s.logg.Error(rowCtx, "remote media destroy failed, deleting row anyway", destroyErr)
		s.metrics.IncDestroyFailure()
		result.MediaDeleteFailures++
	}

	updates := map[string]any{
		"status":        enums.TestimonialStatusDeleted,
		"deleted_at":    now,
		"media_deleted": mediaDeleted,
	}
	if !mediaDeleted {
		updates["media_delete_failed_at"] = now
	}

	allowed := []enums.TestimonialStatus{enums.TestimonialStatusPending}
	if bucket == bucketReviewed {
		allowed = []enums.TestimonialStatus{enums.TestimonialStatusApproved, enums.TestimonialStatusRejected}
	}

	swept := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.UpdateWhereStatus(ctx, row.ID, allowed, updates)
		if err != nil {
			return fmt.Errorf("mark testimonial %s deleted: %w", row.ID, err)
		}
		if rows == 0 {
			// A reviewer or a concurrent sweep got there first.
			return nil
		}
		swept = true

		eventType := enums.EventTestimonialDeleted
		if bucket == bucketPending {
			eventType = enums.EventTestimonialExpired
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateTestimonial,
			AggregateID:   row.ID,
			Version:       1,
			OccurredAt:    now,
			Data: DeletedEvent{
				TestimonialID: row.ID,
				FromStatus:    row.Status,
				DeletedAt:     now,
				MediaDeleted:  mediaDeleted,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return fmt.Errorf("queue deletion event for %s: %w", row.ID, err)
		}

		if !mediaDeleted {
			failEvent := outbox.DomainEvent{
				EventType:     enums.EventTestimonialPurgeFailed,
				AggregateType: enums.AggregateTestimonial,
				AggregateID:   row.ID,
				Version:       1,
				OccurredAt:    now,
				Data: MediaPurgeFailedEvent{
					TestimonialID: row.ID,
					PublicID:      publicID,
					FailedAt:      now,
					Reason:        destroyErr.Error(),
				},
			}
			if err := s.outbox.Emit(ctx, tx, failEvent); err != nil {
				return fmt.Errorf("queue purge failure event for %s: %w", row.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.IncRowFailure()
		return err
	}
	if !swept {
		return nil
	}

	s.metrics.IncProcessed(bucket)
	if bucket == bucketPending {
		result.PendingExpired++
	} else {
		result.DeletedExpired++
	}
	return nil
}

// destroyMedia resolves the remote object id and asks the provider to delete
// it. An unresolvable id is logged and skipped; the row still gets deleted
// with its media marked gone, since nothing remote remains addressable.
func (s *Sweeper) destroyMedia(ctx context.Context, row models.Testimonial) (string, error) {
	publicID, ok := resolvePublicID(row)
	if !ok {
		s.logg.Warn(ctx, "no resolvable media id, skipping remote destroy")
		return "", nil
	}
	if err := s.media.Destroy(ctx, publicID); err != nil {
		return publicID, err
	}
	return publicID, nil
}

func resolvePublicID(row models.Testimonial) (string, bool) {
	if row.CloudinaryID != nil && *row.CloudinaryID != "" {
		return *row.CloudinaryID, true
	}
	publicID, err := cloudinary.ExtractPublicID(row.VideoURL)
	if err != nil {
		return "", false
	}
	return publicID, true
}
