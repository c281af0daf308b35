package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-api/docs"
	"storefront-api/internal/config"
	httpapi "storefront-api/internal/http"
	"storefront-api/internal/products"
	"storefront-api/internal/products/messaging"
	"storefront-api/internal/products/repository"
	"storefront-api/internal/products/service"
	"storefront-api/internal/ratelimit"
	"storefront-api/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	metricProductsCreated = "products_created_total"
	metricProductsUpdated = "products_updated_total"
	metricProductsDeleted = "products_deleted_total"
	metricUsersCreated    = "users_created_total"
	migrateSourcePrefix   = "file://"
	postgresDriverName    = "postgres"
	releaseEnv            = "production"
)

// @title        Storefront API
// @version      1.0.0
// @description  Users and products CRUD behind a rate-limited, validated request pipeline.
// @host         localhost:3000
// @BasePath     /
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	os.Exit(run(logger))
}

func run(logger *slog.Logger) int {
	startedAt := time.Now()

	cfg, err := config.LoadAPI()
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("open product storage", "driver", cfg.StorageDriver, "error", err)
		return 1
	}
	defer closeRepo()

	publisher, closePublisher, err := openPublisher(cfg, logger)
	if err != nil {
		logger.Error("init publisher", "error", err)
		return 1
	}
	defer closePublisher()

	limiter, closeLimiter := openLimiter(ctx, cfg)
	defer closeLimiter()

	counters := service.Counters{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricProductsCreated,
			Help: "Total number of products created",
		}),
		Updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricProductsUpdated,
			Help: "Total number of products updated",
		}),
		Deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricProductsDeleted,
			Help: "Total number of products deleted",
		}),
	}
	usersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricUsersCreated,
		Help: "Total number of users created",
	})
	prometheus.MustRegister(counters.Created, counters.Updated, counters.Deleted, usersCreated)
	metrics := httpapi.NewMetrics(prometheus.DefaultRegisterer)

	productSvc := service.New(repo, publisher, logger, counters)
	userSvc := users.NewService(users.NewStore(), usersCreated, users.WithAgeZeroIsMissing(cfg.UserAgeZeroIsMissing))
	handler := httpapi.NewHandler(userSvc, productSvc)
	pipeline := httpapi.NewPipeline(limiter, logger, metrics,
		httpapi.WithKeyFunc(httpapi.HeaderKeyFunc(cfg.RateLimitKeyHeader)),
	)

	docs.SwaggerInfo.Version = cfg.AppVersion
	if cfg.APIPrefix != "" {
		docs.SwaggerInfo.BasePath = cfg.APIPrefix
	}

	if cfg.AppEnv == releaseEnv {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(httpapi.RequestIDMiddleware())
	router.Use(httpapi.AccessLogMiddleware(logger))
	router.Use(httpapi.MetricsMiddleware(metrics))
	router.Use(httpapi.RecoveryMiddleware())
	router.Use(httpapi.SecurityHeadersMiddleware())
	router.Use(httpapi.CORSMiddleware(cfg.CORSOrigins, cfg.RateLimitKeyHeader))
	httpapi.RegisterRoutes(router, handler, pipeline, productSvc, httpapi.RouterOptions{
		Prefix:      cfg.APIPrefix,
		Version:     cfg.AppVersion,
		StartedAt:   startedAt,
		DocsEnabled: cfg.SwaggerEnabled,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront api started",
			"addr", cfg.HTTPAddr,
			"app", cfg.AppName,
			"env", cfg.AppEnv,
			"storage", cfg.StorageDriver,
			"rate_limit_backend", cfg.RateLimitBackend,
			"swagger_enabled", cfg.SwaggerEnabled,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	logger.Info("storefront api stopped")
	return 0
}

func openRepository(ctx context.Context, cfg config.API, logger *slog.Logger) (service.Repository, func(), error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}

		db, err := sql.Open(postgresDriverName, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
		db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

		pingCtx, cancel := context.WithTimeout(ctx, cfg.DBPingTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}
		return repository.NewPostgres(db), func() { _ = db.Close() }, nil

	case config.StorageMongo:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.DBPingTimeout)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().
			ApplyURI(cfg.MongoURI).
			SetMaxPoolSize(uint64(cfg.DBMaxOpenConns)))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		repo := repository.NewMongo(client, cfg.MongoDatabase)
		if err := repo.Health(); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ping mongo: %w", err)
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil

	default:
		logger.Warn("using in-memory product storage; data is lost on restart")
		return repository.NewMemory(), func() {}, nil
	}
}

func openPublisher(cfg config.API, logger *slog.Logger) (service.Publisher, func(), error) {
	if cfg.RabbitMQURL == "" {
		logger.Info("RABBITMQ_URL not set, product events disabled")
		return messaging.NopPublisher{}, func() {}, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	publisher, err := messaging.NewRabbitPublisher(conn, products.EventsQueue)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return publisher, func() {
		_ = publisher.Close()
		_ = conn.Close()
	}, nil
}

func openLimiter(ctx context.Context, cfg config.API) (ratelimit.Limiter, func()) {
	if cfg.RateLimitBackend == config.RateLimitRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return ratelimit.NewRedis(rdb, cfg.RateLimitWindow, cfg.RateLimitMax), func() { _ = rdb.Close() }
	}

	limiter := ratelimit.NewFixedWindow(cfg.RateLimitWindow, cfg.RateLimitMax)
	limiter.StartJanitor(ctx)
	return limiter, func() {}
}

func runMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
