package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giveup-backend/internal/auth"
	"giveup-backend/internal/config"
	"giveup-backend/internal/handlers"
	"giveup-backend/internal/metrics"
	"giveup-backend/internal/middleware"
	"giveup-backend/internal/notify"
	"giveup-backend/internal/repository"
	"giveup-backend/internal/services"
	"giveup-backend/internal/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log)

	// Run migrations
	if *migrateOnly || cfg.Database.AutoMigrate {
		if err := repository.Migrate(cfg.Database.DSN()); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		if *migrateOnly {
			return
		}
	}

	ctx := context.Background()

	// Connect to database
	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Connect to blob storage
	blobs, err := storage.NewS3Store(ctx, cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create blob store")
	}
	if err := blobs.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.AWS.S3Bucket).Msg("Blob store is not reachable")
	}

	// Session revocation store
	var revocations auth.RevocationStore
	if cfg.Redis.Addr != "" {
		redisRevocations, err := auth.NewRedisRevocations(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer redisRevocations.Close()
		revocations = redisRevocations
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	} else {
		revocations = auth.NewMemoryRevocations()
		log.Warn().Msg("Redis not configured; sign-outs are kept in memory")
	}

	// Identity provider
	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create identity verifier")
	}
	provider := auth.NewProvider(verifier, auth.NewSessionTokens(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL), revocations)

	// Push notifications
	var pusher services.Pusher = notify.Noop{}
	if cfg.APNs.PushEnabled() {
		apnsPusher, err := notify.NewAPNsPusher(cfg.APNs)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create APNs client")
		}
		pusher = apnsPusher
		log.Info().Str("topic", cfg.APNs.Topic).Bool("production", cfg.APNs.Production).Msg("Push notifications enabled")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo)
	itemService := services.NewItemService(itemRepo, userRepo, blobs, appMetrics, cfg.Uploads.MaxImageBytes)
	requestService := services.NewRequestService(itemRepo, userRepo, pusher)
	wsHub := services.NewWSHub(appMetrics)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	sessionHandler := handlers.NewSessionHandler(provider, userService)
	userHandler := handlers.NewUserHandler(userService)
	itemHandler := handlers.NewItemHandler(itemService, requestService, cfg.Uploads.MaxImageBytes)
	wsHandler := handlers.NewWebSocketHandler(wsHub, provider, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(appMetrics))
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/healthz", healthHandler.Health)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/session", sessionHandler.SignIn)
		r.Get("/items", itemHandler.ListItems)
		r.Get("/items/{id}", itemHandler.GetItem)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(provider))
			r.Get("/session", sessionHandler.GetSession)
			r.Delete("/session", sessionHandler.SignOut)
			r.Post("/items", itemHandler.CreateItem)
			r.Post("/items/{id}/given", itemHandler.MarkGiven)
			r.Delete("/items/{id}", itemHandler.DeleteItem)
			r.Post("/items/{id}/request", itemHandler.RequestItem)
			r.Get("/me", userHandler.GetMe)
			r.Patch("/me", userHandler.UpdateMe)
			r.Put("/me/push-token", userHandler.PutPushToken)
			r.Get("/me/items", itemHandler.MyItems)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown
	wsHub.CloseAll()

	// Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
