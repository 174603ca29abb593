package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/reelcraft/script-generation-go/internal/analyzer"
	"github.com/reelcraft/script-generation-go/internal/config"
	"github.com/reelcraft/script-generation-go/internal/db"
	"github.com/reelcraft/script-generation-go/internal/db/repository"
	"github.com/reelcraft/script-generation-go/internal/events"
	"github.com/reelcraft/script-generation-go/internal/generator"
	"github.com/reelcraft/script-generation-go/internal/handler"
	"github.com/reelcraft/script-generation-go/internal/intelligence"
	"github.com/reelcraft/script-generation-go/internal/llm"
	"github.com/reelcraft/script-generation-go/internal/middleware"
	"github.com/reelcraft/script-generation-go/internal/service"
	"github.com/reelcraft/script-generation-go/internal/transcript"
	"github.com/reelcraft/script-generation-go/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	logger.Log.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	userRepo := repository.NewUserRepository(pool)
	recordRepo := repository.NewGenerationRecordRepository(pool)

	// Event publication is opt-in: no broker host, no publisher.
	var publisher *events.Publisher
	if cfg.RabbitMQ.Host != "" {
		publisher, err = events.NewPublisher(&cfg.RabbitMQ)
		if err != nil {
			logger.Log.Warn("Failed to connect to RabbitMQ, generation events will not be published",
				zap.Error(err),
			)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:  cfg.Anthropic.APIKey,
		Model:   cfg.Anthropic.Model,
		BaseURL: cfg.Anthropic.BaseURL,
		Timeout: cfg.Anthropic.Timeout,
	})

	extractor := transcript.New(transcript.Config{})

	deps := service.Deps{
		Extractor:    extractor,
		Analyzer:     analyzer.New(llmClient),
		Generator:    generator.New(llmClient),
		Intelligence: intelligence.New(recordRepo),
		Users:        userRepo,
		Records:      recordRepo,
	}
	if publisher != nil {
		deps.Publisher = publisher
	}

	generationService := service.NewGenerationService(deps, cfg.Quota.MonthlyLimit, cfg.Auth.RequireLogin)

	generationHandler := handler.NewGenerationHandler(generationService)
	authHandler := handler.NewAuthHandler(userRepo, cfg.Auth)
	healthHandler := handler.NewHealthHandler(pool, publisher)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Session(cfg.Auth.JWTSecret))

	router.GET("/health", healthHandler.LivenessProbe)
	router.GET("/ready", healthHandler.ReadinessProbe)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.POST("/generate", generationHandler.HandleGenerate)
		api.GET("/generations", generationHandler.HandleHistory)
		api.GET("/usage", generationHandler.HandleUsage)
		api.POST("/auth/login", authHandler.HandleLogin)
		api.POST("/admin/users", authHandler.HandleCreateUser)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation holds the connection across two model calls
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("Server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("Server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Graceful shutdown failed", zap.Error(err))
			if err := server.Close(); err != nil {
				logger.Log.Error("Failed to close server", zap.Error(err))
			}
			os.Exit(1)
		}

		logger.Log.Info("Server stopped gracefully")
	}
}
