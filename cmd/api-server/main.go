package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"libraryhub/database"
	"libraryhub/internal/ai"
	"libraryhub/internal/config"
	"libraryhub/internal/microservices/http-api/handler"
	"libraryhub/internal/microservices/http-api/repository"
	"libraryhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// memoryCacheSize bounds the in-process summary cache used without redis.
const memoryCacheSize = 1024

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("could not get sql.DB: %v", err)
	}
	defer sqlDB.Close()

	// 3. Summary generator
	var cache ai.Cache
	if rdb := database.ConnectRedis(cfg, logger); rdb != nil {
		defer rdb.Close()
		cache = ai.NewRedisCache(rdb, cfg.CacheExpiry())
	} else {
		cache = ai.NewMemoryCache(memoryCacheSize, cfg.CacheExpiry())
	}

	var completer ai.Completer
	if cfg.AIEnabled() {
		completer = ai.NewOpenAICompleter(ai.OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			BaseURL:   cfg.OpenAIBaseURL,
			Model:     cfg.OpenAIModel,
			RateLimit: cfg.AIRateLimit,
			RateBurst: cfg.AIRateBurst,
		})
	} else {
		logger.Warn("OPENAI_API_KEY not set, summaries use the fallback generator")
	}
	generator := ai.NewGenerator(completer,
		ai.WithCache(cache),
		ai.WithTimeout(cfg.AITimeout),
		ai.WithLogger(logger),
	)

	// 4. Ledger
	ledger := service.NewLedgerService(
		repository.NewBookRepository(db),
		repository.NewProfileRepository(db),
	)

	// 5. Setup Gin
	r := handler.NewRouter(handler.RouterDeps{
		Auth:       service.NewAuthService(cfg.JWTSecret),
		Ledger:     ledger,
		Summarizer: generator,
		DB:         sqlDB,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server_starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server_shutting_down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
