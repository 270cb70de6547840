package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/carebridge-health/telecare-platform/internal/api/router"
	"github.com/carebridge-health/telecare-platform/internal/appointments"
	"github.com/carebridge-health/telecare-platform/internal/assistant"
	appconfig "github.com/carebridge-health/telecare-platform/internal/config"
	"github.com/carebridge-health/telecare-platform/internal/delivery"
	"github.com/carebridge-health/telecare-platform/internal/doctors"
	"github.com/carebridge-health/telecare-platform/internal/events"
	httpmiddleware "github.com/carebridge-health/telecare-platform/internal/http/middleware"
	"github.com/carebridge-health/telecare-platform/internal/notifications"
	"github.com/carebridge-health/telecare-platform/internal/notify"
	"github.com/carebridge-health/telecare-platform/internal/observability/metrics"
	"github.com/carebridge-health/telecare-platform/internal/patients"
	"github.com/carebridge-health/telecare-platform/internal/payments"
	"github.com/carebridge-health/telecare-platform/internal/prescriptions"
	"github.com/carebridge-health/telecare-platform/internal/realtime"
	"github.com/carebridge-health/telecare-platform/internal/vitals"
	"github.com/carebridge-health/telecare-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting telecare-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// The notifications and delivery repositories use database/sql.
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	// Change bus: redis when configured, in-process otherwise.
	var bus realtime.Bus
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
		bus = realtime.NewRedisBus(redisClient, logger)
	} else {
		logger.Info("no redis configured, using in-process change bus")
		bus = realtime.NewMemoryBus()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	bookingMetrics := metrics.NewBookingMetrics(registry)
	realtimeMetrics := metrics.NewRealtimeMetrics(registry)

	authority := httpmiddleware.NewTokenAuthority(cfg.JWTSecret)
	if authority == nil {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	// Payment gateway.
	var orderClient appointments.OrderClient
	var verifier appointments.SignatureVerifier
	switch {
	case cfg.AllowFakePayments:
		logger.Info("fake payments enabled")
		orderClient = payments.NewFakeOrderClient(logger)
		verifier = payments.NoopVerifier{}
	case cfg.RazorpayKeyID != "":
		rzp, err := payments.NewRazorpayOrderClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)
		if err != nil {
			logger.Error("failed to create razorpay client", "error", err)
			os.Exit(1)
		}
		orderClient = rzp
		verifier = payments.NewHMACVerifier(cfg.RazorpayKeySecret)
	default:
		logger.Info("no payment gateway configured, only zero-fee bookings will succeed")
	}

	// Repositories.
	doctorRepo := doctors.NewRepository(pool)
	patientRepo := patients.NewRepository(pool)
	appointmentRepo := appointments.NewRepository(pool)
	vitalsRepo := vitals.NewRepository(pool)
	prescriptionRepo := prescriptions.NewRepository(pool)
	notificationRepo := notifications.NewRepository(sqlDB)
	deliveryRepo := delivery.NewRepository(sqlDB)
	outboxStore := events.NewOutboxStore(pool)

	// Email.
	var mailer notify.EmailSender
	if sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sender != nil {
		mailer = sender
	} else {
		mailer = notify.NewStubEmailSender(logger)
	}

	// Outbox fan-out: notification rows, realtime pings, email.
	notificationSvc := notifications.NewService(notificationRepo, bus, mailer, patientRepo, logger)
	deliverer := events.NewDeliverer(outboxStore, notificationSvc, logger).
		WithBatchSize(int32(cfg.OutboxBatchSize)).
		WithInterval(cfg.OutboxPollInterval)
	go deliverer.Start(ctx)

	// Appointment lifecycle coordinator.
	appointmentSvc := appointments.NewService(appointmentRepo, doctorRepo, orderClient,
		verifier, bus, outboxStore, bookingMetrics, logger)

	// Realtime hub.
	hub := realtime.NewHub(bus, authority, realtimeMetrics, logger)
	go func() {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("realtime hub stopped", "error", err)
		}
	}()

	// Assistant (optional).
	var assistantHandler *assistant.Handler
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		assistantHandler = assistant.NewHandler(assistant.NewService(gemini, logger), logger)
	}

	routerCfg := &router.Config{
		Logger:               logger,
		Authority:            authority,
		AppointmentsHandler:  appointments.NewHandler(appointmentSvc, logger),
		DoctorsHandler:       doctors.NewHandler(doctorRepo, logger),
		PatientsHandler:      patients.NewHandler(patientRepo, logger),
		VitalsHandler:        vitals.NewHandler(vitalsRepo, bus, logger),
		PrescriptionsHandler: prescriptions.NewHandler(prescriptionRepo, bus, logger),
		NotificationsHandler: notifications.NewHandler(notificationRepo, logger),
		DeliveryHandler:      delivery.NewHandler(deliveryRepo, bus, logger),
		AssistantHandler:     assistantHandler,
		RealtimeHub:          hub,
		MetricsHandler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
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

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
