package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"codescrybe/internal/config"
	"codescrybe/internal/domain/services/llm"
	"codescrybe/internal/handler"
	"codescrybe/internal/markdown"
	"codescrybe/internal/middleware"
	"codescrybe/internal/repository/postgres"
	"codescrybe/internal/service"
	servicellm "codescrybe/internal/service/llm"
	"codescrybe/internal/service/llm/providers/anthropic"
	"codescrybe/internal/service/llm/providers/lorem"
	"codescrybe/internal/service/pipeline"
	"codescrybe/internal/service/pipeline/chunker"
	"codescrybe/internal/service/rag"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create stores
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	repoStore := postgres.NewRepositoryStore(repoConfig)
	messageStore := postgres.NewMessageStore(repoConfig)
	featureStore := postgres.NewFeatureStore(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Setup LLM providers. The lorem provider always registers last so
	// keyless development still gets answers.
	var providers []llm.Provider
	if cfg.AnthropicAPIKey != "" {
		anthropicProvider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			log.Fatalf("Failed to create anthropic provider: %v", err)
		}
		providers = append(providers, anthropicProvider)
		logger.Info("anthropic provider registered")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, falling back to lorem provider")
	}
	providers = append(providers, lorem.NewProvider())
	registry := servicellm.NewRegistry(providers...)

	model := cfg.PreferredModel
	if cfg.AnthropicAPIKey == "" {
		model = "lorem-dev"
	}
	if err := registry.Validate(); err != nil {
		log.Fatalf("Invalid provider registry: %v", err)
	}

	// Analysis pipeline
	cloner := pipeline.NewCloner(cfg.CloneDir, cfg.GitHubAPI, logger)
	parser, err := chunker.NewParser(logger)
	if err != nil {
		log.Fatalf("Failed to load language registry: %v", err)
	}
	extractor := pipeline.NewExtractor(registry, model, logger)
	analysisPipeline := pipeline.New(repoStore, featureStore, txManager, cloner, parser, extractor, logger)

	// Services
	ragService := rag.NewService(featureStore, registry, model, logger)
	repoService := service.NewRepositoryService(repoStore, featureStore, cloner, analysisPipeline, logger)
	chatService := service.NewChatService(
		repoStore, messageStore, txManager, ragService,
		markdown.NewFormatter(logger), markdown.NewRenderer(), logger,
	)

	logger.Info("services initialized", "model", model)

	// Handlers and routes (Go 1.22+ method patterns)
	mux := handler.Routes(
		handler.NewRepositoryHandler(repoService, logger),
		handler.NewChatHandler(chatService, logger),
		handler.NewHealthHandler(pool),
	)

	// Middleware chain: CORS → Recovery → Routes
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)
	h = cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	}).Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
