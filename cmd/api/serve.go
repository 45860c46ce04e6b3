package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"coaching-payments/internal/client"
	"coaching-payments/internal/events"
	"coaching-payments/internal/repository"
	"coaching-payments/internal/server"
	"coaching-payments/internal/service"
	"coaching-payments/internal/validation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the outbox relay",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()
	cfg, log := a.cfg, a.logger

	if err := cfg.ValidateGateway(); err != nil {
		return err
	}
	if err := cfg.ValidateAdmin(); err != nil {
		return err
	}
	if err := client.Migrate(a.db); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	liqpayClient, err := client.NewLiqpayClient(&cfg.Liqpay)
	if err != nil {
		return err
	}
	if cfg.Liqpay.Sandbox {
		log.Warn("liqpay sandbox mode enabled")
	}

	courseRepo := repository.NewCourseRepository(a.db)
	rdb, err := client.InitRedisClient(ctx, cfg.Redis)
	if err != nil {
		// the catalogue still works without the cache
		log.Warn("redis unavailable, course cache disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		courseRepo = repository.NewCachedCourseRepository(courseRepo, rdb, cfg.Redis.CourseTTL, log)
		log.Info("course cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	outboxRepo := repository.NewOutboxRepository(a.db)
	validator := validation.New()

	paymentService := service.NewPaymentService(
		a.db, liqpayClient,
		courseRepo,
		repository.NewPaymentRepository(a.db),
		repository.NewCourseAccessRepository(a.db),
		outboxRepo,
		validator,
		service.PaymentServiceConfig{
			BaseURL:        cfg.BaseURL,
			AccessValidity: cfg.AccessValidity,
			EventsTopic:    cfg.Kafka.Topic,
		},
		log,
	)
	authService := service.NewAuthService(repository.NewAdminUserRepository(a.db), validator, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)

	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, log)
		log.Info("publishing access events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		publisher = events.NewLogPublisher(log)
		log.Warn("KAFKA_BROKERS not set, access events are only logged")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("close publisher", zap.Error(err))
		}
	}()

	relay := events.NewRelay(outboxRepo, publisher, cfg.Kafka.RelayInterval, cfg.Kafka.RelayBatch, log)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(ctx)
	}()

	srv := server.NewServer(a.db, server.Services{
		Payment: paymentService,
		Course:  service.NewCourseService(courseRepo),
		Contact: service.NewContactService(repository.NewContactRepository(a.db), validator, log),
		Auth:    authService,
	}, cfg.RateLimit, log)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("signal received, starting graceful shutdown")
	case err = <-serveErr:
		log.Error("HTTP server error", zap.Error(err))
		stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("HTTP server shutdown error", zap.Error(shutdownErr))
	}
	<-relayDone

	log.Info("server stopped")
	return err
}
