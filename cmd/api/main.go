package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/careloop/clinic-platform/cmd/mainconfig"
	"github.com/careloop/clinic-platform/internal/api/router"
	"github.com/careloop/clinic-platform/internal/appointments"
	"github.com/careloop/clinic-platform/internal/auth"
	"github.com/careloop/clinic-platform/internal/clinic"
	appconfig "github.com/careloop/clinic-platform/internal/config"
	"github.com/careloop/clinic-platform/internal/hospitals"
	"github.com/careloop/clinic-platform/internal/messaging"
	"github.com/careloop/clinic-platform/internal/notifications"
	"github.com/careloop/clinic-platform/internal/notify"
	"github.com/careloop/clinic-platform/internal/observability/metrics"
	"github.com/careloop/clinic-platform/internal/profiles"
	"github.com/careloop/clinic-platform/internal/records"
	"github.com/careloop/clinic-platform/pkg/logging"
)

func main() {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	// Notification pipeline: queue, publisher, dispatcher.
	var queuePublisher *notifications.Publisher
	var dispatcher *notifications.Dispatcher
	feedRepo := notifications.NewPostgresRepository(pool)

	profileService := profiles.NewService(profiles.NewPostgresRepository(pool), profiles.NewCache(redisClient), logger)
	resolver := &profileResolver{profiles: profileService}

	var emailSender notify.EmailSender
	switch cfg.EmailProvider {
	case "ses":
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender != nil {
			emailSender = sender
		}
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender != nil {
			emailSender = sender
		}
	}

	if cfg.UseMemoryQueue || cfg.NotificationQueueURL == "" {
		queue := notifications.NewMemoryQueue(0)
		queuePublisher = notifications.NewMemoryPublisher(queue, logger)
		dispatcher = notifications.NewDispatcher(queue, feedRepo, resolver, emailSender, logger)
	} else {
		queue := notifications.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.NotificationQueueURL)
		queuePublisher = notifications.NewSQSPublisher(queue, logger)
		dispatcher = notifications.NewDispatcher(queue, feedRepo, resolver, emailSender, logger)
	}
	workers := cfg.WorkerCount
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go dispatcher.Run(ctx)
	}

	apptMetrics := metrics.NewAppointmentMetrics(nil)
	appointmentService := appointments.NewService(
		appointments.NewPostgresRepository(pool), profileService, queuePublisher, apptMetrics, logger)

	hub := messaging.NewHub(redisClient, logger)
	go hub.Run(ctx)
	messagingService := messaging.NewService(
		messaging.NewPostgresRepository(pool), hub, &profileDirectory{profiles: profileService}, logger)

	objectStore := records.NewObjectStore(s3.NewFromConfig(awsCfg), cfg.RecordsBucket)
	recordService := records.NewService(records.NewPostgresRepository(pool), objectStore, logger)

	authService := auth.NewService(auth.NewPostgresRepository(pool), cfg.JWTSecret, cfg.TokenTTL, logger)

	overpass := hospitals.NewClient(logger,
		hospitals.WithEndpoint(cfg.OverpassBaseURL),
		hospitals.WithTimeout(cfg.OverpassTimeout))

	dashboardRepo := clinic.NewDashboardRepository(openReportingDB(cfg, logger))

	routerCfg := &router.Config{
		Logger:               logger,
		AuthHandler:          auth.NewHandler(authService, logger),
		AppointmentsHandler:  appointments.NewHandler(appointmentService, logger),
		ProfilesHandler:      profiles.NewHandler(profileService, logger),
		MessagingHandler:     messaging.NewHandler(messagingService, logger),
		RecordsHandler:       records.NewHandler(recordService, logger),
		HospitalsHandler:     hospitals.NewHandler(overpass, logger),
		NotificationsHandler: notifications.NewHandler(feedRepo, logger),
		DashboardHandler:     clinic.NewDashboardHandler(dashboardRepo, logger),
		SessionSecret:        cfg.JWTSecret,
		MetricsHandler:       promhttp.Handler(),
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		RateLimitPerSecond:   cfg.RateLimitRPS,
		RateLimitBurst:       cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
