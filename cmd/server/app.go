package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pawelm/fiszki-api/internal/api"
	"github.com/pawelm/fiszki-api/internal/api/middleware"
	"github.com/pawelm/fiszki-api/internal/config"
	"github.com/pawelm/fiszki-api/internal/generation"
	"github.com/pawelm/fiszki-api/internal/platform/openrouter"
	"github.com/pawelm/fiszki-api/internal/platform/postgres"
	"github.com/pawelm/fiszki-api/internal/review"
	"github.com/pawelm/fiszki-api/internal/service"
	"github.com/pawelm/fiszki-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

// application holds the wired dependency graph so Run and cleanup can
// manage them together.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	router http.Handler
}

// newApplication wires every layer: stores, provider client,
// orchestrator, review registry, services, handlers, and the router.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	// Stores
	userStore := postgres.NewUserStore(db, logger)
	flashcardStore := postgres.NewFlashcardStore(db, logger)
	generationStore := postgres.NewGenerationStore(db, logger)
	generationLogStore := postgres.NewGenerationLogStore(db, logger)

	// Provider client, locked to the flashcard proposal schema.
	chatClient, err := openrouter.NewClient(openrouter.Config{
		APIKey:         cfg.LLM.OpenRouterAPIKey,
		Endpoint:       cfg.LLM.Endpoint,
		Model:          cfg.LLM.Model,
		SystemMessage:  generation.SystemPrompt,
		ResponseFormat: generation.ProposalsResponseFormat(),
		MaxAttempts:    cfg.LLM.MaxAttempts,
		RetryDelay:     time.Duration(cfg.LLM.RetryDelayMs) * time.Millisecond,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenRouter client: %w", err)
	}
	logger.Info("OpenRouter client initialized", slog.String("model", cfg.LLM.Model))

	orchestrator, err := generation.NewOrchestrator(
		chatClient, generationStore, generationLogStore, cfg.LLM.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation orchestrator: %w", err)
	}

	// Services
	userService, err := service.NewUserService(
		userStore, auth.NewBcryptHasher(bcrypt.DefaultCost), auth.NewBcryptVerifier(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	flashcardService, err := service.NewFlashcardService(db, flashcardStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}
	generationService, err := service.NewGenerationService(generationStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	// Review flow
	sessions := review.NewRegistry()
	gateway := review.NewGateway(flashcardService)

	app.router = api.NewRouter(api.Handlers{
		Auth:       api.NewAuthHandler(userService, jwtService),
		Generation: api.NewGenerationHandler(orchestrator, generationService, sessions),
		Review:     api.NewReviewHandler(sessions, gateway),
		Flashcard:  api.NewFlashcardHandler(flashcardService),
	}, middleware.NewAuthMiddleware(jwtService), logger)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	return app.startHTTPServer(ctx, app.router)
}

// cleanup releases application resources on shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection",
				slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
