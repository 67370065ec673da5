package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocabclash/internal/config"
	"vocabclash/internal/database"
	"vocabclash/internal/game"
	"vocabclash/internal/handlers"
	"vocabclash/internal/remote"
	"vocabclash/internal/repository"
	"vocabclash/internal/security"
	"vocabclash/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	logger.Info("database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	playerRepo := repository.NewPlayerRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	stateRepo := repository.NewSessionStateRepository(db)

	var source service.TemplateSource = templateRepo
	if cfg.TemplateSource == "http" {
		if cfg.TemplateBaseURL == "" {
			log.Fatalf("TEMPLATE_BASE_URL is required when TEMPLATE_SOURCE=http")
		}
		source = remote.NewTemplateClient(cfg.TemplateBaseURL, cfg.TemplateAPIKey, &http.Client{}, logger)
		logger.Info("reading templates over HTTP", "base_url", cfg.TemplateBaseURL)
	}

	pool := game.DefaultWordPool()
	if cfg.WordPoolPath != "" {
		pool, err = game.LoadWordPool(cfg.WordPoolPath)
		if err != nil {
			log.Fatalf("Failed to load word pool: %v", err)
		}
	}
	logger.Info("word pool loaded", "words", pool.Len())

	tokens, err := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("Failed to create token issuer (is JWT_SECRET set?): %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mailer service.SummaryMailer
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		logger.Warn("completion emails disabled", "error", err)
	} else if emailService.IsEnabled() {
		mailer = emailService
	}

	// Initialize services
	reconciler := service.NewReconciler(source, pool, nil, service.ReconcilerConfig{
		FetchTimeout:  cfg.TemplateFetchTimeout,
		FetchAttempts: cfg.TemplateFetchTries,
		FetchBackoff:  cfg.TemplateFetchBackoff,
		SessionTTL:    cfg.SessionTTL,
	}, logger)
	sink := service.NewAutosaver(cfg.AutosaveQueueSize, logger, service.WithWriteTimeout(10*time.Second))
	gameService := service.NewGameService(reconciler, sink, stateRepo, playerRepo, source, mailer, cfg.SessionTTL, logger)
	authService := service.NewAuthService(playerRepo, tokens)
	templateService := service.NewTemplateService(templateRepo, nil, logger)

	// Initialize handlers
	limiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(authService, limiter, logger)
	handler := handlers.Routes(
		middleware,
		handlers.NewAuthHandler(authService),
		handlers.NewGameHandler(gameService, templateService, logger),
		cfg.AudioDir,
	)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session pruning
	if cfg.PruneInterval > 0 && cfg.SessionTTL > 0 {
		go gameService.RunPruner(ctx, cfg.PruneInterval)
	}

	go func() {
		logger.Info("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown incomplete", "error", err)
	}

	// Pending autosaves reach the database before it is closed.
	if err := sink.Close(); err != nil {
		logger.Warn("autosave drain incomplete", "error", err)
	}
	gameService.Wait()
	limiter.Stop()
}
