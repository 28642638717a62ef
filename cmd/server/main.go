package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projecthub/projecthub-api/internal/config"
	"github.com/projecthub/projecthub-api/internal/database"
	"github.com/projecthub/projecthub-api/internal/handlers"
	"github.com/projecthub/projecthub-api/internal/notify"
	"github.com/projecthub/projecthub-api/internal/ratelimit"
	"github.com/projecthub/projecthub-api/internal/repository"
	"github.com/projecthub/projecthub-api/internal/services"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.App.GinMode)
	logger := newLogger(cfg.App)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(db, logger); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Rate limiting is optional; without Redis every request is let through
	var limiter *ratelimit.Limiter
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, rate limiting will fail open", slog.String("error", err.Error()))
		}
		limiter = ratelimit.New(rdb, logger, "projecthub:ratelimit", cfg.RateLimit.Rate, cfg.RateLimit.Burst)
	}

	notifier, closeNotifier := newNotifier(cfg, logger)

	// Initialize AI service
	var generator services.TaskGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(cfg.OpenAIAPIKey)
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tokens := services.NewTokenService(cfg.Auth.JWTSecret)

	authService := services.NewAuthService(userRepo, tokens, notifier, cfg, logger)
	projectService := services.NewProjectService(projectRepo, userRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, generator)

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:     handlers.NewAuthHandler(authService, cfg, logger),
		Projects: handlers.NewProjectHandler(projectService, logger),
		Tasks:    handlers.NewTaskHandler(taskService, logger),
		Tokens:   tokens,
		Users:    userRepo,
		Limiter:  limiter,
		Logger:   logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api server listening", slog.String("addr", cfg.App.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	if err := closeNotifier(); err != nil {
		logger.Error("close notifier failed", slog.String("error", err.Error()))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("close redis failed", slog.String("error", err.Error()))
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("close database failed", slog.String("error", err.Error()))
		}
	}
}

func newLogger(cfg config.AppConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.GinMode == gin.ReleaseMode {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newNotifier picks the notification transport. Kafka hands every channel to
// the downstream mail/sms workers; otherwise email goes over SMTP when
// configured and phone codes are only logged.
func newNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, func() error) {
	if cfg.Kafka.Enabled() {
		kn := notify.NewKafkaNotifier(cfg.Kafka, logger)
		logger.Info("notifications published to kafka", slog.String("topic", cfg.Kafka.Topic))
		return kn, kn.Close
	}

	router := &notify.Router{
		Email: notify.NewLogNotifier(logger),
		Phone: notify.NewLogNotifier(logger),
	}
	if cfg.Mail.Enabled() {
		router.Email = notify.NewEmailNotifier(cfg.Mail, logger)
	}
	return router, func() error { return nil }
}
