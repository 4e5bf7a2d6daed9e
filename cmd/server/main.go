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

	"merry/internal/auth"
	"merry/internal/config"
	"merry/internal/handler"
	"merry/internal/llm"
	"merry/internal/middleware"
	"merry/internal/repository/postgres"
	"merry/internal/search"
	"merry/internal/service"
	"merry/internal/service/intent"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
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

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.SupabaseJWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.SupabaseDBURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create table names and run schema migration
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Setup AI collaborators
	llmClient, err := llm.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL)
	if err != nil {
		log.Fatalf("Failed to setup LLM client: %v", err)
	}

	var searchClient search.Client
	switch cfg.SearchProvider {
	case "brave":
		searchClient = search.NewBraveClient(cfg.BraveAPIKey)
	default:
		searchClient = search.NewTavilyClient(cfg.TavilyAPIKey)
	}
	logger.Info("search provider initialized", "provider", cfg.SearchProvider)

	// Intent parsing settings (embedded)
	intentSettings, err := intent.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load intent settings: %v", err)
	}

	// Auth provider proxy
	authClient := auth.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseKey)

	// Create services
	userService := service.NewUserService(userRepo, logger)
	docService := service.NewDocumentService(docRepo, versionRepo, txManager, logger)
	intentService := intent.NewIntentService(llmClient, searchClient, userService, intentSettings, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, logger)
	exportHandler := handler.NewExportHandler(docService, logger)
	aiHandler := handler.NewAIHandler(intentService, logger)
	authHandler := handler.NewAuthHandler(authClient, userService, logger)

	logger.Info("services initialized", "model", llmClient.ModelName())

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Auth routes
	mux.HandleFunc("POST /api/auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	// AI routes
	mux.HandleFunc("POST /api/ai/parse-intent", aiHandler.ParseIntent)
	mux.HandleFunc("POST /api/ai/rewrite", aiHandler.Rewrite)
	mux.HandleFunc("POST /api/ai/suggest-columns", aiHandler.SuggestColumns)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("PUT /api/documents/{id}", docHandler.UpdateDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.DeleteDocument)

	// Version routes
	mux.HandleFunc("GET /api/documents/{id}/versions", docHandler.GetVersions)
	mux.HandleFunc("GET /api/documents/{id}/versions/{version}", docHandler.GetVersion)

	// Export routes
	mux.HandleFunc("GET /api/documents/{id}/export/{format}", exportHandler.ExportDocument)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Logging → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier, logger)(root)
	root = middleware.RequestLogger(logger)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // Generation requests wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
