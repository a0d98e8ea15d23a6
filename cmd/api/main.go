package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/fundraise-go/internal/api/handlers"
	"github.com/linskybing/fundraise-go/internal/api/middleware"
	"github.com/linskybing/fundraise-go/internal/api/routes"
	"github.com/linskybing/fundraise-go/internal/application"
	"github.com/linskybing/fundraise-go/internal/config"
	"github.com/linskybing/fundraise-go/internal/config/db"
	"github.com/linskybing/fundraise-go/internal/cron"
	"github.com/linskybing/fundraise-go/internal/media"
	"github.com/linskybing/fundraise-go/internal/metrics"
	"github.com/linskybing/fundraise-go/internal/picker"
	"github.com/linskybing/fundraise-go/internal/repository"
	"github.com/linskybing/fundraise-go/pkg/logger"
)

func main() {
	// Load configuration from environment variables, .env and CONFIG_FILE
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Initialize JWT signing key
	middleware.Init(cfg.JwtSecret, cfg.Issuer)

	// Initialize database connection and schema
	if err := db.Init(cfg.DB); err != nil {
		logger.WithError(err).Fatal("Failed to init database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	uploader, err := media.New(ctx, cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to init media uploader")
	}
	stage, err := picker.NewStage(cfg.Staging.Dir, cfg.Staging.MaxBytes, cfg.Staging.MaxPixels)
	if err != nil {
		logger.WithError(err).Fatal("Failed to init staging area")
	}

	repos := repository.NewRepositories(db.DB)
	services := application.New(repos, uploader, application.Options{
		KYCRoute: cfg.KYCVerifyRoute,
		IdleTTL:  cfg.Screen.IdleTTL,
		DiscardImg: func(uri string) {
			if err := stage.Remove(uri); err != nil {
				logger.WithError(err).WithField("uri", uri).Warn("Failed to remove staged image")
			}
		},
	})

	// Start background tasks
	scheduler, err := cron.Start(&cron.Jobs{
		Screens:       services.Screens,
		Fundraise:     services.Fundraise,
		Stage:         stage,
		StagingTTL:    cfg.Staging.TTL,
		RetentionDays: cfg.AuditRetentionDays,
	}, cfg.Screen.SweepSchedule)
	if err != nil {
		logger.WithError(err).Fatal("Failed to schedule background tasks")
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())

	routes.RegisterRoutes(router, handlers.New(services, stage, router, cfg.AllowedOrigins))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Infof("Starting API server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start")
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutdown signal")

	<-scheduler.Stop().Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}
