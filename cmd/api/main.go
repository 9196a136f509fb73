package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/apptly/booking-api/config"
	appointmentHandler "github.com/apptly/booking-api/internal/handler/appointment"
	availabilityHandler "github.com/apptly/booking-api/internal/handler/availability"
	healthHandler "github.com/apptly/booking-api/internal/handler/health"
	"github.com/apptly/booking-api/internal/middleware"
	"github.com/apptly/booking-api/internal/repository/postgres"
	"github.com/apptly/booking-api/internal/router"
	availabilityService "github.com/apptly/booking-api/internal/service/availability"
	bookingService "github.com/apptly/booking-api/internal/service/booking"
	notificationService "github.com/apptly/booking-api/internal/service/notification"
	"github.com/apptly/booking-api/pkg/logger"
	"github.com/apptly/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	branchRepo := postgres.NewBranchRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	resourceRepo := postgres.NewResourceRepository(db)
	seriesRepo := postgres.NewSeriesRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Services
	availabilitySvc := availabilityService.NewService(
		appointmentRepo, branchRepo, scheduleRepo, serviceRepo,
		availabilityService.Config{
			Granularity:  cfg.Booking.Granularity(),
			CacheTTL:     cfg.Cache.TTL,
			CacheCleanup: cfg.Cache.Cleanup,
		})
	notificationSvc := notificationService.NewService(outboxRepo, appLogger)
	bookingSvc := bookingService.NewService(
		appointmentRepo, staffRepo, clientRepo, serviceRepo, resourceRepo, seriesRepo,
		availabilitySvc, notificationSvc,
		bookingService.Policy{
			MinimumNotice:   cfg.Booking.MinimumNotice(),
			MaxAdvance:      cfg.Booking.MaxAdvance(),
			CancelNotice:    cfg.Booking.CancelNotice(),
			ConflictRetries: cfg.Booking.ConflictRetries,
		},
		appLogger)

	m := metrics.NewMetrics("booking_api", "")

	// HTTP surface
	auth := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	r := router.NewRouter(
		appLogger.Zerolog(),
		m,
		auth,
		healthHandler.NewHandler(db),
		availabilityHandler.NewHandler(availabilitySvc),
		appointmentHandler.NewHandler(bookingSvc),
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimitRPS:     cfg.RateLimit.RequestsPerSecond,
			RateLimitBurst:   cfg.RateLimit.Burst,
		})
	r.Setup()

	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
}
