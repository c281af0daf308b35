package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/notifications"
	"storefront-api/internal/products"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
)

const readHeaderTimeout = 5 * time.Second

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	cfg, err := config.LoadNotifications()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	queue := cfg.Queue
	if queue == "" {
		queue = products.EventsQueue
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		return 1
	}
	defer conn.Close()

	metrics := notifications.NewMetrics(prometheus.DefaultRegisterer)
	consumer, err := notifications.NewConsumer(conn, queue, cfg.Prefetch, logger, metrics)
	if err != nil {
		logger.Error("init consumer", "error", err)
		return 1
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opsServer := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           opsRouter(consumer),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "error", err)
		}
	}()

	consumeErr := make(chan error, 1)
	go func() {
		logger.Info("notifications service started",
			"queue", queue,
			"prefetch", cfg.Prefetch,
			"metrics_addr", cfg.MetricsAddr,
		)
		consumeErr <- consumer.Listen(ctx)
	}()

	code := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		code = drain(consumeErr, cfg.ShutdownTimeout, logger)
	case err := <-consumeErr:
		if err != nil {
			logger.Error("consumer failed", "error", err)
			code = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err)
	}

	logger.Info("notifications service stopped")
	return code
}

// drain waits for the in-flight delivery to finish after Listen observes cancellation.
func drain(consumeErr <-chan error, timeout time.Duration, logger *slog.Logger) int {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case err := <-consumeErr:
		if err != nil {
			logger.Error("consumer stop failed", "error", err)
			return 1
		}
	case <-deadline.C:
		logger.Warn("consumer shutdown timeout reached")
	}
	return 0
}

func opsRouter(consumer *notifications.Consumer) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		if !consumer.Healthy() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}
