package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/vouchlyhq/vouchly-backend/internal/testimonials"
	"github.com/vouchlyhq/vouchly-backend/pkg/config"
	"github.com/vouchlyhq/vouchly-backend/pkg/db/models"
	"github.com/vouchlyhq/vouchly-backend/pkg/enums"
	pkgerrors "github.com/vouchlyhq/vouchly-backend/pkg/errors"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
)

type stubService struct{}

func (stubService) Review(ctx context.Context, input testimonials.ReviewInput) (*testimonials.ReviewOutcome, error) {
	return &testimonials.ReviewOutcome{
		TestimonialID: input.TestimonialID,
		Status:        enums.TestimonialStatusApproved,
	}, nil
}

func (stubService) Get(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "testimonial not found")
}

type stubSweeper struct{}

func (stubSweeper) Sweep(ctx context.Context) (testimonials.SweepResult, error) {
	return testimonials.SweepResult{}, nil
}

func newTestRouter(t *testing.T, sweepSecret string) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = config.AppEnvDev
	cfg.Sweep.Secret = sweepSecret
	logg := logger.New(logger.Options{ServiceName: "router-test"})
	return NewRouter(cfg, logg, nil, nil, nil, stubService{}, stubSweeper{})
}

func TestRouterHealthLive(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRouterReviewRoute(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, "")
	body := strings.NewReader(`{"action":"approve"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/testimonials/"+uuid.NewString()+"/review", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouterSweepRequiresSecretWhenConfigured(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, "hush")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/internal/v1/retention/sweep", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/internal/v1/retention/sweep", nil)
	req.Header.Set("X-Sweep-Secret", "hush")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with secret, got %d", rec.Code)
	}
}
