package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vouchlyhq/vouchly-backend/api/controllers"
	"github.com/vouchlyhq/vouchly-backend/api/middleware"
	"github.com/vouchlyhq/vouchly-backend/internal/testimonials"
	"github.com/vouchlyhq/vouchly-backend/pkg/config"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type sweepRunner interface {
	Sweep(ctx context.Context) (testimonials.SweepResult, error)
}

type rateStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// NewRouter assembles the HTTP surface served by the api binary.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP pinger,
	cacheP pinger,
	rateLimiter rateStore,
	testimonialService testimonials.Service,
	sweeper sweepRunner,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	reviewPolicy := middleware.NewRateLimitPolicy(
		"review",
		cfg.RateLimit.ReviewWindow,
		cfg.RateLimit.ReviewIPLimit,
	)

	r.Route("/api/v1/testimonials", func(r chi.Router) {
		r.Get("/{testimonialId}", controllers.GetTestimonial(testimonialService, logg))
		r.With(middleware.RateLimit(reviewPolicy, rateLimiter, logg)).
			Post("/{testimonialId}/review", controllers.ReviewTestimonial(testimonialService, logg))
	})

	r.Route("/api/internal/v1/retention", func(r chi.Router) {
		r.With(middleware.SweepSecret(logg, cfg.Sweep.Secret)).
			Post("/sweep", controllers.TriggerSweep(sweeper, logg))
	})

	return r
}
