package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vouchlyhq/vouchly-backend/api/responses"
	"github.com/vouchlyhq/vouchly-backend/api/validators"
	"github.com/vouchlyhq/vouchly-backend/internal/testimonials"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	pkgerrors "github.com/vouchlyhq/vouchly-backend/pkg/errors"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

type reviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

type reviewResponse struct {
	TestimonialID string    `json:"testimonialId"`
	Status        string    `json:"status"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type testimonialResponse struct {
	TestimonialID string     `json:"testimonialId"`
	Status        string     `json:"status"`
	VideoURL      string     `json:"videoUrl"`
	RecordedAt    time.Time  `json:"recordedAt"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	RejectedAt    *time.Time `json:"rejectedAt,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// GetTestimonial returns the current lifecycle state of a testimonial.
func GetTestimonial(svc testimonials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawID := chi.URLParam(r, "testimonialId")
		testimonialID, err := uuid.Parse(rawID)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid testimonial id"))
			return
		}
		ctx = logg.WithTestimonialID(ctx, testimonialID.String())

		testimonial, err := svc.Get(ctx, testimonialID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, testimonialResponse{
			TestimonialID: testimonial.ID.String(),
			Status:        testimonial.Status.String(),
			VideoURL:      testimonial.VideoURL,
			RecordedAt:    testimonial.RecordedAt,
			ApprovedAt:    testimonial.ApprovedAt,
			RejectedAt:    testimonial.RejectedAt,
			ExpiresAt:     testimonial.ExpiresAt,
		})
	}
}

// ReviewTestimonial decides a pending testimonial.
func ReviewTestimonial(svc testimonials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawID := chi.URLParam(r, "testimonialId")
		testimonialID, err := uuid.Parse(rawID)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "invalid testimonial id"))
			return
		}
		ctx = logg.WithTestimonialID(ctx, testimonialID.String())

		var req reviewRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		action, err := enums.ParseReviewAction(req.Action)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid review action"))
			return
		}

		outcome, err := svc.Review(ctx, testimonials.ReviewInput{
			TestimonialID: testimonialID,
			Action:        action,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, reviewResponse{
			TestimonialID: outcome.TestimonialID.String(),
			Status:        outcome.Status.String(),
			ExpiresAt:     outcome.ExpiresAt,
		})
	}
}
