// Package main is the entry point for the suggestion gateway.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/capitalize-ai/gift-suggester/internal/config"
	"github.com/capitalize-ai/gift-suggester/internal/handler"
	"github.com/capitalize-ai/gift-suggester/internal/middleware"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
	"github.com/capitalize-ai/gift-suggester/pkg/tracing"
)

const serviceName = "gift-gateway"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting gateway", zap.String("version", cfg.ServiceVersion))

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, serviceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	gatewayHandler, err := handler.NewGatewayHandler(handler.GatewayConfig{
		UpstreamBaseURL:  cfg.UpstreamBaseURL,
		MaxMessageLength: cfg.MaxMessageLength,
	}, log)
	if err != nil {
		log.Error("invalid gateway configuration", zap.Error(err))
		os.Exit(1)
	}
	healthHandler := handler.NewHealthHandler(gatewayHandler)

	log.Info("relaying suggestions",
		zap.String("upstream", gatewayHandler.UpstreamURL()),
		zap.Int("max_message_length", cfg.MaxMessageLength),
	)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.OTelHTTP(serviceName))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/suggest", gatewayHandler.Suggest)

	serve(log, &http.Server{
		Addr:         ":" + cfg.GatewayPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	})
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.Environment == "development" {
		return logger.NewDevelopment()
	}
	return logger.New(cfg.LogLevel)
}

func serve(log *logger.Logger, server *http.Server) {
	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
