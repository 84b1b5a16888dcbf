package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/careloop/hospital-chatbot/internal/api/router"
	"github.com/careloop/hospital-chatbot/internal/chatbot"
	appconfig "github.com/careloop/hospital-chatbot/internal/config"
	"github.com/careloop/hospital-chatbot/internal/directory"
	"github.com/careloop/hospital-chatbot/internal/observability/metrics"
	"github.com/careloop/hospital-chatbot/internal/scheduling"
	"github.com/careloop/hospital-chatbot/internal/transcript"
	"github.com/careloop/hospital-chatbot/internal/webchat"
	"github.com/careloop/hospital-chatbot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital-chatbot API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	convMetrics := metrics.NewConversationMetrics(registry)

	// Transcript storage: Redis when configured, in-memory otherwise.
	var transcripts transcript.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Error("redis ping failed", "addr", cfg.RedisAddr, "error", err)
			cancel()
			os.Exit(1)
		}
		cancel()
		transcripts = transcript.NewRedisStore(client, cfg.TranscriptTTL, nil)
		logger.Info("transcript store: redis", "addr", cfg.RedisAddr)
	} else {
		transcripts = transcript.NewMemoryStore()
		logger.Info("transcript store: in-memory")
	}

	// Hospital directory: remote API when configured, seeded
	// in-memory otherwise.
	var (
		patients chatbot.PatientDirectory
		clinics  chatbot.ClinicDirectory
		doctors  chatbot.DoctorDirectory
	)
	if cfg.DirectoryBaseURL != "" {
		dir := directory.NewHTTPDirectory(cfg.DirectoryBaseURL, cfg.CollaboratorTimeout, logger)
		patients, clinics, doctors = dir.Patients(), dir.Clinics(), dir.Doctors()
		logger.Info("directory: remote", "base_url", cfg.DirectoryBaseURL)
	} else {
		dir := directory.NewInMemoryDirectory()
		patients, clinics, doctors = dir.Patients(), dir.Clinics(), dir.Doctors()
		logger.Info("directory: in-memory")
	}

	ledger := scheduling.NewInMemoryLedger()
	planner := scheduling.NewPlanner(ledger)
	coordinator := scheduling.NewCoordinator(ledger, logger)
	cancellation := scheduling.NewCancellationFlow(ledger)

	engine, err := chatbot.NewEngine(chatbot.Deps{
		Sessions:     chatbot.NewMemorySessionStore(),
		Patients:     patients,
		Clinics:      clinics,
		Doctors:      doctors,
		Planner:      planner,
		Booking:      coordinator,
		Cancellation: cancellation,
		Transcripts:  transcripts,
		Metrics:      convMetrics,
		Logger:       logger,
		CallTimeout:  cfg.CollaboratorTimeout,
	})
	if err != nil {
		logger.Error("engine init failed", "error", err)
		os.Exit(1)
	}

	chatbotHandler := chatbot.NewHandler(engine, transcripts, logger)
	webchatHandler := webchat.NewHandler(engine, transcripts, webchat.WidgetJS, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		ChatbotHandler:     chatbotHandler,
		WebchatHandler:     webchatHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MessageRate:        5,
		MessageBurst:       20,
	})

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

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
