package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"smartstock/internal/auth"
	"smartstock/internal/shared/config"
	"smartstock/internal/shared/database"
	"smartstock/internal/shared/middleware"
	"smartstock/internal/shared/token"
	"smartstock/internal/users"
	"smartstock/pkg/logger"
)

var Version = "dev"

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load("user-service")
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg, &users.User{})
	if err != nil {
		appLogger.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Logout revocations are written here and checked at the gateway, so
	// both ends share the same Redis.
	tokens := token.NewService(cfg.JWT, token.NewRedisRevocationStore(db.GetRedisClient()))

	repo := auth.NewRepository(db.GetPostgreSQL())
	service := auth.NewService(repo, tokens)
	controller := auth.NewController(service)

	engine := gin.New()
	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery())

	// Only the gateway is a legitimate caller. Browsers never hit this
	// service directly.
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.GatewayURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", healthHandler(cfg))
	auth.NewRouter(controller).SetupRoutes(engine.Group(""))

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("User service running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("version", Version),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down user service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("User service exited gracefully")
}

func healthHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"service":   cfg.ServiceName,
			"version":   Version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
