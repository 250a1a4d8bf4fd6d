package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cotafacil/cota-engine/pkg/auth"
	"github.com/cotafacil/cota-engine/pkg/config"
	"github.com/cotafacil/cota-engine/pkg/database"
	"github.com/cotafacil/cota-engine/pkg/handlers"
	"github.com/cotafacil/cota-engine/pkg/llm"
	"github.com/cotafacil/cota-engine/pkg/logging"
	"github.com/cotafacil/cota-engine/pkg/middleware"
	"github.com/cotafacil/cota-engine/pkg/repositories"
	"github.com/cotafacil/cota-engine/pkg/services"
	"github.com/cotafacil/cota-engine/pkg/webhook"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("ai_provider", cfg.AI.Provider))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.ConnectionString(), cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Repositories
	municipalityRepo := repositories.NewMunicipalityRepository(db)
	userRepo := repositories.NewUserRepository(db)
	quotationRepo := repositories.NewQuotationRepository(db)
	accessLogRepo := repositories.NewAccessLogRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)

	// AI clients and enrichment services
	llmClient, err := llm.NewClient(&cfg.AI, logger)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}
	aiTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	analyzer := services.NewPriceAnalyzer(llmClient, aiTimeout, logger)
	reports := services.NewReportGenerator(llmClient, aiTimeout, logger)

	// Webhook dispatch
	dispatcher := webhook.NewDispatcher(&cfg.Webhook, logger)

	// Services
	tokens := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	authService := auth.NewService(userRepo, tokens, logger)
	municipalityService := services.NewMunicipalityService(municipalityRepo, logger)
	userService := services.NewUserService(userRepo, logger)
	quotationService := services.NewQuotationService(
		quotationRepo, municipalityRepo, notificationRepo,
		analyzer, reports, dispatcher, logger)
	auditService := services.NewAuditService(accessLogRepo, notificationRepo, logger)

	// Middleware
	authMw := auth.NewMiddleware(authService, logger)
	audit := middleware.NewAccessLogger(auditService, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewWebhookHandler(logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, logger).RegisterRoutes(mux, authMw, audit)
	handlers.NewMunicipalityHandler(municipalityService, logger).RegisterRoutes(mux, authMw, audit)
	handlers.NewUserHandler(userService, logger).RegisterRoutes(mux, authMw, audit)
	handlers.NewQuotationHandler(quotationService, logger).RegisterRoutes(mux, authMw, audit)
	handlers.NewAuditHandler(auditService, logger).RegisterRoutes(mux, authMw, audit)

	server := &http.Server{
		Addr:    cfg.BindAddr + ":" + cfg.Port,
		Handler: middleware.RequestLogger(logger)(mux),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting cota-engine",
		zap.String("addr", server.Addr),
		zap.String("version", cfg.Version))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
