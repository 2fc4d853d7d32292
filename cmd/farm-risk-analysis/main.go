package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agri-intel/farm-risk-analysis/internal/analysis"
	httpapi "github.com/agri-intel/farm-risk-analysis/internal/api/http"
	"github.com/agri-intel/farm-risk-analysis/internal/config"
	"github.com/agri-intel/farm-risk-analysis/internal/environment"
	"github.com/agri-intel/farm-risk-analysis/internal/environment/providers"
	"github.com/agri-intel/farm-risk-analysis/internal/precedent"
	"github.com/agri-intel/farm-risk-analysis/internal/synthesis"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls; the OpenAI client gets
	// its own so the completion timeout is not capped by the provider one.
	providerClient := &http.Client{Timeout: cfg.HTTPTimeout}
	openaiClient := &http.Client{Timeout: cfg.LLMTimeout}

	// Precedent store (pre-populated and indexed externally).
	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("invalid postgres configuration: %v", err)
	}
	defer pool.Close()
	store := precedent.NewPostgresStore(pool)

	// Environmental data: weather by place name, satellite by coordinates.
	fetcher := environment.NewFetcher(
		providers.NewOpenWeatherProvider(providerClient, cfg.OpenWeatherAPIKey),
		providers.NewSatelliteProvider(providerClient, cfg.SatelliteAPIURL, cfg.SatelliteAPIKey),
		providers.NewGoogleGeocoder(cfg.GeocoderAPIKey),
	)

	// Precedent retrieval via embeddings + similarity search.
	embedder := precedent.NewOpenAIEmbedder(openaiClient, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIEmbedModel)
	retriever := precedent.NewRetriever(embedder, store, cfg.PrecedentTopK, cfg.MinSimilarity)

	// Synthesis via the chat completions endpoint.
	llm := synthesis.NewOpenAIChatClient(openaiClient, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIChatModel)
	synthesizer := synthesis.NewSynthesizer(llm, cfg.LLMTimeout)

	// Orchestrator coordinating the whole pipeline.
	service := analysis.NewService(fetcher, retriever, synthesizer, cfg.RequestDeadline)

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "farm-risk-analysis",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.RequestDeadline + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendOrigin,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Accept,Authorization,Content-Type",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Agri-Intel analysis service is running",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, store)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
