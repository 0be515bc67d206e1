package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/vouchlyhq/vouchly-backend/api/responses"
	"github.com/vouchlyhq/vouchly-backend/internal/testimonials"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

type sweepRunner interface {
	Sweep(ctx context.Context) (testimonials.SweepResult, error)
}

type sweepResponse struct {
	PendingExpired      int       `json:"pendingExpired"`
	DeletedExpired      int       `json:"deletedExpired"`
	MediaDeleteFailures int       `json:"mediaDeleteFailures"`
	ProcessedAt         time.Time `json:"processedAt"`
}

// TriggerSweep runs one retention pass on demand. Row-level failures are
// already isolated inside the sweep; they are logged here but the call still
// reports the counts that did land.
func TriggerSweep(sweeper sweepRunner, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := sweeper.Sweep(ctx)
		if err != nil {
			logg.Error(ctx, "sweep finished with row failures", err)
		}

		responses.WriteSuccess(w, sweepResponse{
			PendingExpired:      result.PendingExpired,
			DeletedExpired:      result.DeletedExpired,
			MediaDeleteFailures: result.MediaDeleteFailures,
			ProcessedAt:         result.ProcessedAt,
		})
	}
}
