package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vouchlyhq/vouchly-backend/api/routes"
	"github.com/vouchlyhq/vouchly-backend/internal/testimonials"
	"github.com/vouchlyhq/vouchly-backend/pkg/cloudinary"
	"github.com/vouchlyhq/vouchly-backend/pkg/config"
	"github.com/vouchlyhq/vouchly-backend/pkg/db"
	"github.com/vouchlyhq/vouchly-backend/pkg/logger"
	"github.com/vouchlyhq/vouchly-backend/pkg/metrics"
	"github.com/vouchlyhq/vouchly-backend/pkg/migrate"
	"github.com/vouchlyhq/vouchly-backend/pkg/outbox"
	"github.com/vouchlyhq/vouchly-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cloudinaryClient, err := cloudinary.NewClient(cfg.Cloudinary)
	if err != nil {
		logg.Error(context.Background(), "failed to create cloudinary client", err)
		os.Exit(1)
	}

	testimonialRepo := testimonials.NewRepository(dbClient.DB())
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	policy := testimonials.NewPolicy(cfg.Retention)

	testimonialService, err := testimonials.NewService(testimonialRepo, dbClient, outboxService, policy)
	if err != nil {
		logg.Error(context.Background(), "failed to create testimonial service", err)
		os.Exit(1)
	}

	sweeper, err := testimonials.NewSweeper(testimonials.SweeperParams{
		Logger:    logg,
		DB:        dbClient,
		Repo:      testimonialRepo,
		Media:     cloudinaryClient,
		Outbox:    outboxService,
		Policy:    policy,
		Metrics:   metrics.NewSweepMetrics(prometheus.DefaultRegisterer),
		BatchSize: cfg.Sweep.BatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create retention sweeper", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, redisClient, testimonialService, sweeper),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
