package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carevox/callgateway/internal/callgateway/adapters/telephony"
	"github.com/carevox/callgateway/internal/callgateway/app"
	"github.com/carevox/callgateway/internal/callgateway/auth"
	"github.com/carevox/callgateway/internal/callgateway/directory"
	"github.com/carevox/callgateway/internal/callgateway/middleware"
	pgrepo "github.com/carevox/callgateway/internal/callgateway/repository/postgres"
	httptransport "github.com/carevox/callgateway/internal/callgateway/transport/http"
	"github.com/carevox/callgateway/internal/platform/config"
	"github.com/carevox/callgateway/internal/platform/database"
	"github.com/carevox/callgateway/internal/platform/logger"
	"github.com/carevox/callgateway/internal/platform/messagebroker"
)

const serviceName = "callgateway_service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Call gateway service starting...", "port", cfg.ServerPort)

	dbPool, err := database.NewDBPool(context.Background(), cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Connected to PostgreSQL database")

	natsClient, err := messagebroker.NewNATSClient(cfg.NATSUrl, serviceName, appLogger)
	if err != nil {
		// Booking and call events are best effort; the gateway still
		// answers calls without the broker.
		appLogger.Error("Failed to connect to NATS, events will not be published", "error", err)
	} else {
		defer natsClient.Close()
		appLogger.Info("Connected to NATS")
	}
	var publisher messagebroker.Publisher
	if natsClient != nil {
		publisher = natsClient
	}

	// Repositories.
	tenantRepo := pgrepo.NewPgTenantRepository(dbPool, appLogger)
	providerRepo := pgrepo.NewPgProviderRepository(dbPool, appLogger)
	bookingRepo := pgrepo.NewPgBookingRepository(dbPool, appLogger)
	blockedTimeRepo := pgrepo.NewPgBlockedTimeRepository(dbPool, appLogger)
	callLogRepo := pgrepo.NewPgCallLogRepository(dbPool, appLogger)

	// Domain services.
	dir := directory.New(tenantRepo, providerRepo, appLogger)
	verifier := auth.NewSignatureVerifier(cfg.PlatformWebhookSecret)
	availability := app.NewAvailabilityService(bookingRepo, blockedTimeRepo, appLogger)
	resolver := app.NewInboundResolver(dir, cfg.MasterAgentID, appLogger)
	mediator := app.NewToolCallMediator(verifier, dir, bookingRepo, availability, publisher, appLogger)
	dispatcher := telephony.NewPlatformDispatcher(appLogger, cfg.PlatformAPIBaseURL, cfg.PlatformAPIKey, nil)
	initiator := app.NewOutboundInitiator(dir, dispatcher, cfg.MasterAgentID, appLogger)
	callLogProcessor := app.NewCallLogProcessor(dir, callLogRepo, publisher, appLogger)

	// Handlers.
	validate := validator.New()
	inboundHandler := httptransport.NewInboundHandler(resolver, verifier, appLogger, validate)
	toolCallHandler := httptransport.NewToolCallHandler(mediator, appLogger)
	callEventsHandler := httptransport.NewCallEventsHandler(callLogProcessor, verifier, appLogger, validate)
	outboundHandler := httptransport.NewOutboundHandler(initiator, appLogger, validate)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "Call gateway service is healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Platform webhooks, authenticated by signature, not JWT.
	r.Route("/webhooks", func(webhookRouter chi.Router) {
		inboundHandler.RegisterRoutes(webhookRouter)
		toolCallHandler.RegisterRoutes(webhookRouter)
		callEventsHandler.RegisterRoutes(webhookRouter)
	})

	// Operator API (protected).
	authMW := middleware.JWTAuthMiddleware(cfg.JWTAccessSecret, appLogger)
	r.Route("/api/v1", func(v1Router chi.Router) {
		v1Router.Use(authMW)
		outboundHandler.RegisterRoutes(v1Router)
	})

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.ServerPort), Handler: r}
	appLogger.Info(fmt.Sprintf("Call gateway server listening on port %d", cfg.ServerPort))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan
	appLogger.Info("Shutdown signal received, shutting down HTTP server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	} else {
		appLogger.Info("HTTP server shut down gracefully.")
	}
	appLogger.Info("Call gateway service shut down.")
}
