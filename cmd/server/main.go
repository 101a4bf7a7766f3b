package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"clouddrive/internal/auth"
	"clouddrive/internal/config"
	"clouddrive/internal/domain/services"
	"clouddrive/internal/handler"
	"clouddrive/internal/middleware"
	"clouddrive/internal/plans"
	"clouddrive/internal/repository/memory"
	"clouddrive/internal/repository/postgres"
	postgresDrive "clouddrive/internal/repository/postgres/drive"
	serviceDrive "clouddrive/internal/service/drive"
	"clouddrive/internal/service/objectstore"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// devUserID owns every request on the memory backend when no JWKS URL is set
const devUserID = "00000000-0000-0000-0000-000000000001"

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"storage_backend", cfg.StorageBackend,
	)

	ctx := context.Background()

	// Storage backend
	var repos *serviceDrive.Repositories
	switch cfg.StorageBackend {
	case config.BackendMemory:
		store := memory.NewStore()
		repos = &serviceDrive.Repositories{
			Items:     memory.NewItemRepository(store),
			Versions:  memory.NewVersionRepository(store),
			Links:     memory.NewLinkRepository(store),
			Plans:     memory.NewPlanRepository(store),
			Rules:     memory.NewRuleRepository(store),
			TxManager: memory.NewTransactionManager(store),
		}
		logger.Warn("in-memory storage: data is lost on restart")

	case config.BackendPostgres:
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()
		logger.Info("database connected", "max_conns", pool.Config().MaxConns)

		tables := postgres.NewTableNames(cfg.TablePrefix)
		if err := postgres.EnsureSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: tables,
			Logger: logger,
		}
		repos = &serviceDrive.Repositories{
			Items:     postgresDrive.NewItemRepository(repoConfig),
			Versions:  postgresDrive.NewVersionRepository(repoConfig),
			Links:     postgresDrive.NewLinkRepository(repoConfig),
			Plans:     postgresDrive.NewPlanRepository(repoConfig),
			Rules:     postgresDrive.NewRuleRepository(repoConfig),
			TxManager: postgres.NewTransactionManager(pool, logger),
		}

	default:
		log.Fatalf("Unknown STORAGE_BACKEND %q (want postgres or memory)", cfg.StorageBackend)
	}

	// Plan catalog
	catalog, err := plans.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load plan catalog: %v", err)
	}
	logger.Info("plan catalog loaded", "default", catalog.Default().Type, "tiers", len(catalog.Tiers()))

	limits := serviceDrive.Limits{
		MaxCascadeNodes: cfg.MaxCascadeNodes,
		MaxTreeDepth:    cfg.MaxTreeDepth,
	}
	svcs := serviceDrive.SetupServices(repos, catalog, serviceDrive.SystemClock, limits, logger)

	// Purged objects
	var deleter services.ObjectDeleter
	if cfg.PurgeWebhookURL != "" {
		deleter = objectstore.NewWebhookDeleter(cfg.PurgeWebhookURL, logger)
		logger.Info("purge webhook enabled", "url", cfg.PurgeWebhookURL)
	} else {
		deleter = objectstore.NewLogDeleter(logger)
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, &handler.Handlers{
		Items:     handler.NewItemHandler(svcs.Items, logger),
		Lifecycle: handler.NewLifecycleHandler(svcs.Lifecycle, deleter, logger),
		Files:     handler.NewFileHandler(svcs.Items, svcs.Versions, svcs.Automation, logger),
		Shares:    handler.NewShareHandler(svcs.Sharing, logger),
		Rules:     handler.NewRuleHandler(svcs.Automation, logger),
		Quota:     handler.NewQuotaHandler(svcs.Quota, logger),
	})

	// Build middleware chain
	var h http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	switch {
	case cfg.JWKSURL != "":
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, cfg.AuthAudience, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	case cfg.StorageBackend == config.BackendMemory && !cfg.IsProd():
		logger.Warn("DEV MODE: all requests run as a fixed user (NEVER use in production!)", "user_id", devUserID)
		h = middleware.StaticUserMiddleware(devUserID)(h)
	default:
		log.Fatalf("AUTH_JWKS_URL is required")
	}
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
