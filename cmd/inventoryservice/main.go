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

	"smartstock/internal/events"
	"smartstock/internal/inventory"
	"smartstock/internal/shared/config"
	"smartstock/internal/shared/database"
	"smartstock/internal/shared/middleware"
	"smartstock/pkg/cache"
	"smartstock/pkg/logger"
)

var Version = "dev"

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load("inventory-service")
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg, &inventory.Product{}, &inventory.StockMovement{})
	if err != nil {
		appLogger.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	cacheService := cache.NewService(db.GetRedisClient())

	repo := inventory.NewRepository(db.GetPostgreSQL())
	service := inventory.NewService(repo, cacheService)
	controller := inventory.NewController(service)

	// The consumer is advisory: it drops stale caches and logs low-stock
	// conditions. Losing Kafka degrades nothing on the request path.
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	consumer, err := events.NewKafkaConsumer(cfg.Kafka, inventory.NewOrderEventHandler(repo, cacheService))
	if err != nil {
		appLogger.Error("Failed to create Kafka consumer", slog.Any("error", err))
		appLogger.Info("Continuing without order event consumer")
	} else {
		go func() {
			if err := consumer.Start(consumerCtx); err != nil {
				appLogger.Error("Failed to start order event consumer", slog.Any("error", err))
			}
		}()
		defer func() {
			if err := consumer.Stop(); err != nil {
				appLogger.Error("Error stopping order event consumer", slog.Any("error", err))
			}
		}()
		appLogger.Info("Order event consumer started",
			slog.String("topic", cfg.Kafka.OrderEventTopic),
			slog.String("group", cfg.Kafka.ConsumerGroup),
		)
	}

	engine := gin.New()
	engine.Use(middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.GatewayURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", healthHandler(cfg))
	inventory.NewRouter(controller).SetupRoutes(engine.Group(""))

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Inventory service running",
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
	appLogger.Info("Shutting down inventory service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Inventory service exited gracefully")
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
