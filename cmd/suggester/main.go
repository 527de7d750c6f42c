// Package main runs the gift suggestion service the gateway relays to.
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
	"github.com/capitalize-ai/gift-suggester/internal/llm"
	"github.com/capitalize-ai/gift-suggester/internal/middleware"
	"github.com/capitalize-ai/gift-suggester/internal/service"
	"github.com/capitalize-ai/gift-suggester/pkg/logger"
	"github.com/capitalize-ai/gift-suggester/pkg/tracing"
)

const serviceName = "gift-suggester"

func main() {
	cfg := config.Load()

	var (
		log *logger.Logger
		err error
	)
	if cfg.Environment == "development" {
		log, err = logger.NewDevelopment()
	} else {
		log, err = logger.New(cfg.LogLevel)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting suggestion service", zap.String("provider", cfg.LLMProvider), zap.String("model", cfg.ModelName))

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, serviceName, cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Initialize LLM client. The service still starts without one and
	// answers 503 until a key is configured.
	var llmClient llm.Client
	if key := cfg.LLMAPIKey(); key == "" {
		log.Warn("no API key for LLM provider, suggestions disabled", zap.String("provider", cfg.LLMProvider))
	} else {
		c, err := llm.NewClient(llm.Provider(cfg.LLMProvider), llm.Options{
			APIKey:  key,
			BaseURL: cfg.OpenRouterBaseURL,
		})
		if err != nil {
			log.Warn("failed to create LLM client, suggestions disabled", zap.Error(err))
		} else {
			llmClient = c
		}
	}

	suggestionSvc := service.NewSuggestionService(llmClient, cfg.ModelName, log)
	suggestHandler := handler.NewSuggestHandler(suggestionSvc, cfg.CORSOrigins, log)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.OTelHTTP(serviceName))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", suggestHandler.Health)
		r.Post("/suggest-gift", suggestHandler.Suggest)
	})

	server := &http.Server{
		Addr:         ":" + cfg.SuggesterPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
