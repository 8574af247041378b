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
	"smartstock/internal/orders"
	"smartstock/internal/shared/config"
	"smartstock/internal/shared/database"
	"smartstock/internal/shared/middleware"
	"smartstock/pkg/logger"
)

var Version = "dev"

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		appLogger.Info("No .env file found, using system environment variables")
	}

	cfg := config.Load("order-service")
	gin.SetMode(cfg.GinMode)

	// Product tables are migrated here too: order placement locks and
	// decrements product rows inside its own transaction.
	db, err := database.InitDB(cfg,
		&orders.Order{},
		&orders.OrderItem{},
		&inventory.Product{},
		&inventory.StockMovement{},
	)
	if err != nil {
		appLogger.Error("failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Event publishing is best effort. Without a broker the service still
	// takes orders, it just stops announcing them.
	var producer events.Producer
	if p, err := events.NewKafkaProducer(cfg.Kafka); err != nil {
		appLogger.Error("Failed to create Kafka producer", slog.Any("error", err))
		appLogger.Info("Continuing without order event publishing")
	} else {
		producer = p
		defer producer.Close()
		appLogger.Info("Order event producer connected",
			slog.String("topic", cfg.Kafka.OrderEventTopic),
		)
	}

	repo := orders.NewRepository(db.GetPostgreSQL())
	service := orders.NewService(repo, producer)
	controller := orders.NewController(service)

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
	orders.NewRouter(controller).SetupRoutes(engine.Group(""))

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Order service running",
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
	appLogger.Info("Shutting down order service...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Order service exited gracefully")
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
