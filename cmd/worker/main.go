package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/apptly/booking-api/config"
	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/internal/repository/postgres"
	"github.com/apptly/booking-api/internal/worker"
	"github.com/apptly/booking-api/pkg/logger"
	"github.com/apptly/booking-api/pkg/messaging/redis"
	"github.com/apptly/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var emailCfg worker.EmailConfig
	if err := envconfig.Process("", &emailCfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load email configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL: cfg.Redis.URL,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create broker")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	clientRepo := postgres.NewClientRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		},
		appLogger,
		metrics.NewMetrics("booking_worker", ""),
	)

	consumer := worker.NewEmailConsumer(broker, emailCfg, appLogger,
		func(ctx context.Context, event *model.AppointmentEvent) (string, error) {
			client, err := clientRepo.Get(ctx, event.ClientID)
			if err != nil {
				return "", err
			}
			return client.Email, nil
		})

	startHealthServer(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		processor.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := consumer.Start(ctx); err != nil {
			appLogger.Error(err, "email consumer stopped")
		}
	}()
	wg.Wait()
}

func startHealthServer(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Error(err, "health server failed")
			os.Exit(1)
		}
	}()
}
