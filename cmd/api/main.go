package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/doula-crm/internal/config"
	"github.com/xavierca1/doula-crm/internal/infra/cache"
	"github.com/xavierca1/doula-crm/internal/infra/database"
	"github.com/xavierca1/doula-crm/internal/infra/http/handlers"
	"github.com/xavierca1/doula-crm/internal/infra/http/middleware"
	"github.com/xavierca1/doula-crm/internal/infra/mail"
	"github.com/xavierca1/doula-crm/internal/infra/queue"
	"github.com/xavierca1/doula-crm/internal/infra/worker"
	"github.com/xavierca1/doula-crm/internal/logging"
	"github.com/xavierca1/doula-crm/internal/usecase"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if err := middleware.InitSentry(cfg.SentryDSN, cfg.AppEnv); err != nil {
		logger.WithError(err).Warn("sentry disabled")
	}
	defer middleware.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.NewDBConnection(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	leadRepo := database.NewLeadRepository(db)
	accountRepo := database.NewAccountRepository(db)
	contactRepo := database.NewContactRepository(db)
	opportunityRepo := database.NewOpportunityRepository(db)
	outboxRepo := database.NewOutboxRepository(db)
	txManager := database.NewTxManager(db)

	// 2. Optional collaborators
	var redisClient *redis.Client
	var searchCache usecase.AccountSearchCache
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, account search cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
			searchCache = cache.NewAccountSearchCache(redisClient, cfg.AccountSearchCacheTTL)
		}
	} else {
		logger.Warn("REDIS_URL not set, account search cache disabled")
	}

	var rabbit *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, outbox events stay pending")
			rabbit = nil
		} else {
			defer rabbit.Close()
		}
	} else {
		logger.Warn("RABBITMQ_URL not set, outbox events stay pending")
	}

	// 3. Background workers
	if rabbit != nil {
		relay := worker.NewOutboxRelay(outboxRepo, txManager, queue.NewProducer(rabbit.Ch), cfg.OutboxRelayInterval, logger.WithField("module", "outbox_relay"))
		relay.RecordResult = middleware.RecordOutboxPublish
		go relay.Start(ctx)

		if cfg.NotificationWorkerEnabled && cfg.MailEnabled() {
			startNotificationWorker(ctx, cfg, rabbit, redisClient, logger)
		} else {
			logger.Warn("conversion notifications disabled")
		}
	}

	// 4. Use cases
	searchUC := usecase.NewSearchAccountsUseCase(accountRepo, searchCache, logger.WithField("module", "account_search"))
	searchUC.RecordSource = middleware.RecordAccountSearch
	previewUC := usecase.NewGetConversionPreviewUseCase(leadRepo)
	convertUC := usecase.NewConvertLeadUseCase(
		leadRepo,
		accountRepo,
		contactRepo,
		opportunityRepo,
		outboxRepo,
		txManager,
		searchCache,
		logger.WithField("module", "lead_conversion"),
	)
	captureUC := usecase.NewCaptureLeadUseCase(leadRepo, logger.WithField("module", "lead_capture"))

	// 5. Handlers
	searchLimiter := handlers.NewRateLimiter(cfg.SearchRateLimitPerMinute, 10)
	leadLimiter := handlers.NewRateLimiter(10, 3)
	go sweepLimiters(ctx, searchLimiter, leadLimiter)

	var rabbitConn *amqp.Connection
	if rabbit != nil {
		rabbitConn = rabbit.Conn
	}
	router := newRouter(routes{
		Conversion: handlers.NewConversionHandler(searchUC, previewUC, convertUC, searchLimiter, logger),
		Lead:       handlers.NewLeadHandler(captureUC, leadLimiter, logger),
		Health:     handlers.NewHealthHandler(db, rabbitConn, redisClient),
	}, cfg.CORSAllowedOrigins, logger)

	// 6. Server
	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.APIPort).Info("crm api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func startNotificationWorker(ctx context.Context, cfg *config.Config, rabbit *queue.RabbitMQ, redisClient *redis.Client, logger *logrus.Logger) {
	ch, err := rabbit.Conn.Channel()
	if err != nil {
		logger.WithError(err).Error("could not open consumer channel, conversion notifications disabled")
		return
	}

	sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom, cfg.ConversionNotifyEmail)

	var dedup queue.Deduplicator
	if redisClient != nil {
		dedup = cache.NewDeliveryDedup(redisClient, 24*time.Hour)
	}

	w := queue.NewWorker(ch, sender, dedup, logger.WithField("module", "notifications"))
	go func() {
		if err := w.Start(ctx, queue.QueueName); err != nil {
			logger.WithError(err).Error("notification worker exited")
		}
	}()
}

func sweepLimiters(ctx context.Context, limiters ...*handlers.RateLimiter) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, l := range limiters {
				l.Cleanup(30 * time.Minute)
			}
		}
	}
}
