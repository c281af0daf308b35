package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

const (
	defaultHTTPAddr        = ":3000"
	defaultAppName         = "storefront-api"
	defaultAppVersion      = "1.0.0"
	defaultAppEnv          = "development"
	defaultStorageDriver   = StoragePostgres
	defaultMigrationsPath  = "migrations/products"
	defaultMongoDatabase   = "storefront"
	defaultShutdownTimeout = 10 * time.Second

	defaultRateLimitBackend = RateLimitMemory
	defaultRateLimitWindow  = 60 * time.Second
	defaultRateLimitMax     = 10

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultCORSOrigin        = "http://localhost:3000"
)

type API struct {
	HTTPAddr   string
	APIPrefix  string
	AppName    string
	AppVersion string
	AppEnv     string

	// CORSOrigins lists the browser origins allowed to call the API with credentials.
	CORSOrigins    []string
	SwaggerEnabled bool

	StorageDriver  string
	DatabaseURL    string
	MigrationsPath string
	MongoURI       string
	MongoDatabase  string
	RabbitMQURL    string

	RateLimitBackend   string
	RateLimitWindow    time.Duration
	RateLimitMax       int
	RateLimitKeyHeader string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int

	// UserAgeZeroIsMissing restores the legacy check that treated age 0 as absent.
	UserAgeZeroIsMissing bool

	ShutdownTimeout   time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration
	ReadHeaderTimeout time.Duration
}

func LoadAPI() (API, error) {
	cfg := API{
		HTTPAddr:           getEnv("HTTP_ADDR", defaultHTTPAddr),
		APIPrefix:          strings.TrimRight(getEnv("API_PREFIX", ""), "/"),
		AppName:            getEnv("APP_NAME", defaultAppName),
		AppVersion:         getEnv("APP_VERSION", defaultAppVersion),
		AppEnv:             getEnv("APP_ENV", defaultAppEnv),
		CORSOrigins:        getEnvList("CORS_ORIGIN", defaultCORSOrigin),
		StorageDriver:      strings.ToLower(getEnv("STORAGE_DRIVER", defaultStorageDriver)),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		MongoURI:           getEnv("MONGO_URI", ""),
		MongoDatabase:      getEnv("MONGO_DATABASE", defaultMongoDatabase),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RateLimitBackend:   strings.ToLower(getEnv("RATE_LIMIT_BACKEND", defaultRateLimitBackend)),
		RateLimitKeyHeader: getEnv("RATE_LIMIT_KEY_HEADER", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		ShutdownTimeout:    defaultShutdownTimeout,
		DBMaxOpenConns:     defaultDBMaxOpenConns,
		DBMaxIdleConns:     defaultDBMaxIdleConns,
		DBConnMaxLifetime:  defaultDBConnMaxLifetime,
		DBPingTimeout:      defaultDBPingTimeout,
		ReadHeaderTimeout:  defaultReadHeaderTimeout,
	}

	var err error
	if cfg.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", defaultRateLimitWindow); err != nil {
		return API{}, err
	}
	if cfg.RateLimitMax, err = getEnvInt("RATE_LIMIT_MAX", defaultRateLimitMax); err != nil {
		return API{}, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return API{}, err
	}
	if cfg.UserAgeZeroIsMissing, err = getEnvBool("USER_AGE_ZERO_IS_MISSING", false); err != nil {
		return API{}, err
	}
	if cfg.SwaggerEnabled, err = getEnvBool("SWAGGER_ENABLED", false); err != nil {
		return API{}, err
	}
	for _, origin := range cfg.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return API{}, fmt.Errorf("CORS_ORIGIN must list http(s) origins or *")
		}
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return API{}, fmt.Errorf("DATABASE_URL is required")
		}
	case StorageMongo:
		if cfg.MongoURI == "" {
			return API{}, fmt.Errorf("MONGO_URI is required")
		}
	case StorageMemory:
	default:
		return API{}, fmt.Errorf("STORAGE_DRIVER must be one of postgres, mongo, memory")
	}

	switch cfg.RateLimitBackend {
	case RateLimitRedis:
		if cfg.RedisAddr == "" {
			return API{}, fmt.Errorf("REDIS_ADDR is required")
		}
	case RateLimitMemory:
	default:
		return API{}, fmt.Errorf("RATE_LIMIT_BACKEND must be one of memory, redis")
	}

	if cfg.RateLimitWindow <= 0 {
		return API{}, fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	if cfg.RateLimitMax <= 0 {
		return API{}, fmt.Errorf("RATE_LIMIT_MAX must be > 0")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return value, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration", key)
	}
	return value, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", key)
	}
	return value, nil
}
