package testimonials

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
	"github.com/vouchlyhq/vouchly-backend/pkg/outbox"
)

// ReconcilerParams configure the media reconciler.
type ReconcilerParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Repo      Repository
	Media     MediaDestroyer
	Outbox    outboxEmitter
	BatchSize int
}

// Reconciler re-attempts remote media destroys for rows that were
// soft-deleted while the provider call failed. It closes the gap between
// logical deletion and physical cleanup.
type Reconciler struct {
	logg      *logger.Logger
	db        txRunner
	repo      Repository
	media     MediaDestroyer
	outbox    outboxEmitter
	batchSize int
	now       func() time.Time
}

// NewReconciler builds a media reconciler.
func NewReconciler(params ReconcilerParams) (*Reconciler, error) {
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
	return &Reconciler{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repo,
		media:     params.Media,
		outbox:    params.Outbox,
		batchSize: params.BatchSize,
		now:       time.Now,
	}, nil
}

// Reconcile retries the destroy for every deleted row still carrying media.
// Returns how many rows were cleaned up this pass.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	rows, err := r.repo.FindFailedMediaDeletes(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("query failed media deletes: %w", err)
	}

	cleaned := 0
	var errs []error
	for _, row := range rows {
		ok, err := r.reconcileRow(ctx, row)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			cleaned++
		}
	}

	logCtx := r.logg.WithFields(ctx, map[string]any{
		"candidates": len(rows),
		"cleaned":    cleaned,
	})
	r.logg.Info(logCtx, "media reconcile pass complete")
	return cleaned, multierr.Combine(errs...)
}

func (r *Reconciler) reconcileRow(ctx context.Context, row models.Testimonial) (bool, error) {
	rowCtx := r.logg.WithTestimonialID(ctx, row.ID.String())

	publicID, resolvable := resolvePublicID(row)
	if !resolvable {
		// Nothing addressable remains; stop re-queuing the row.
		r.logg.Warn(rowCtx, "no resolvable media id, marking reconciled")
		if err := r.repo.MarkMediaDeleted(ctx, row.ID, true, nil); err != nil {
			return false, fmt.Errorf("mark %s reconciled: %w", row.ID, err)
		}
		return true, nil
	}

	if err := r.media.Destroy(rowCtx, publicID); err != nil {
		r.logg.Error(rowCtx, "media destroy retry failed", err)
		failedAt := r.now().UTC()
		if markErr := r.repo.MarkMediaDeleted(ctx, row.ID, false, &failedAt); markErr != nil {
			return false, fmt.Errorf("record retry failure for %s: %w", row.ID, markErr)
		}
		return false, nil
	}

	purgedAt := r.now().UTC()
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := r.repo.WithTx(tx)
		if err := repo.MarkMediaDeleted(ctx, row.ID, true, nil); err != nil {
			return fmt.Errorf("mark %s media deleted: %w", row.ID, err)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventTestimonialMediaPurged,
			AggregateType: enums.AggregateTestimonial,
			AggregateID:   row.ID,
			Version:       1,
			OccurredAt:    purgedAt,
			Data: MediaPurgedEvent{
				TestimonialID: row.ID,
				PublicID:      publicID,
				PurgedAt:      purgedAt,
			},
		}
		return r.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
