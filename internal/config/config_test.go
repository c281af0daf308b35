package config

import (
	"os"
	"slices"
	"testing"
	"time"
)

func TestLoadAPI(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres without DATABASE_URL",
			env:     map[string]string{},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "mongo without MONGO_URI",
			env:     map[string]string{"STORAGE_DRIVER": "mongo"},
			wantErr: "MONGO_URI is required",
		},
		{
			name:    "unknown storage driver",
			env:     map[string]string{"STORAGE_DRIVER": "sqlite"},
			wantErr: "STORAGE_DRIVER must be one of postgres, mongo, memory",
		},
		{
			name:    "redis backend without REDIS_ADDR",
			env:     map[string]string{"STORAGE_DRIVER": "memory", "RATE_LIMIT_BACKEND": "redis"},
			wantErr: "REDIS_ADDR is required",
		},
		{
			name:    "malformed window",
			env:     map[string]string{"STORAGE_DRIVER": "memory", "RATE_LIMIT_WINDOW": "soon"},
			wantErr: "RATE_LIMIT_WINDOW must be a duration",
		},
		{
			name:    "non-positive max",
			env:     map[string]string{"STORAGE_DRIVER": "memory", "RATE_LIMIT_MAX": "0"},
			wantErr: "RATE_LIMIT_MAX must be > 0",
		},
		{
			name:    "origin without scheme",
			env:     map[string]string{"STORAGE_DRIVER": "memory", "CORS_ORIGIN": "localhost:3000"},
			wantErr: "CORS_ORIGIN must list http(s) origins or *",
		},
		{
			name:    "malformed swagger toggle",
			env:     map[string]string{"STORAGE_DRIVER": "memory", "SWAGGER_ENABLED": "sometimes"},
			wantErr: "SWAGGER_ENABLED must be a boolean",
		},
		{
			name: "postgres with defaults",
			env:  map[string]string{"DATABASE_URL": "postgres://localhost/db"},
		},
		{
			name: "mongo with custom address",
			env: map[string]string{
				"STORAGE_DRIVER": "mongo",
				"MONGO_URI":      "mongodb://localhost:27017",
				"HTTP_ADDR":      ":9090",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadAPI()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("want error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.DatabaseURL != tt.env["DATABASE_URL"] {
				t.Fatalf("want DatabaseURL %q, got %q", tt.env["DATABASE_URL"], cfg.DatabaseURL)
			}
			if addr, ok := tt.env["HTTP_ADDR"]; ok && cfg.HTTPAddr != addr {
				t.Fatalf("want HTTPAddr %q, got %q", addr, cfg.HTTPAddr)
			}
			if _, ok := tt.env["HTTP_ADDR"]; !ok && cfg.HTTPAddr != defaultHTTPAddr {
				t.Fatalf("want default HTTPAddr %q, got %q", defaultHTTPAddr, cfg.HTTPAddr)
			}
			if cfg.RateLimitWindow != defaultRateLimitWindow {
				t.Fatalf("want RateLimitWindow %v, got %v", defaultRateLimitWindow, cfg.RateLimitWindow)
			}
			if cfg.RateLimitMax != defaultRateLimitMax {
				t.Fatalf("want RateLimitMax %d, got %d", defaultRateLimitMax, cfg.RateLimitMax)
			}
			if cfg.RateLimitBackend != RateLimitMemory {
				t.Fatalf("want RateLimitBackend %q, got %q", RateLimitMemory, cfg.RateLimitBackend)
			}
			if cfg.UserAgeZeroIsMissing {
				t.Fatal("want UserAgeZeroIsMissing off by default")
			}
			if cfg.SwaggerEnabled {
				t.Fatal("want SwaggerEnabled off by default")
			}
			if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != defaultCORSOrigin {
				t.Fatalf("want CORSOrigins [%s], got %v", defaultCORSOrigin, cfg.CORSOrigins)
			}
			if cfg.DBMaxOpenConns != defaultDBMaxOpenConns {
				t.Fatalf("want DBMaxOpenConns %d, got %d", defaultDBMaxOpenConns, cfg.DBMaxOpenConns)
			}
			if cfg.ShutdownTimeout != defaultShutdownTimeout {
				t.Fatalf("want ShutdownTimeout %v, got %v", defaultShutdownTimeout, cfg.ShutdownTimeout)
			}
		})
	}
}

func TestLoadAPI_Overrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_MAX", "3")
	t.Setenv("API_PREFIX", "/api/")
	t.Setenv("USER_AGE_ZERO_IS_MISSING", "true")
	t.Setenv("SWAGGER_ENABLED", "true")
	t.Setenv("CORS_ORIGIN", "https://shop.example, ,http://localhost:5173")

	cfg, err := LoadAPI()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Fatalf("want window 30s, got %v", cfg.RateLimitWindow)
	}
	if cfg.RateLimitMax != 3 {
		t.Fatalf("want max 3, got %d", cfg.RateLimitMax)
	}
	if cfg.APIPrefix != "/api" {
		t.Fatalf("want trimmed prefix /api, got %q", cfg.APIPrefix)
	}
	if !cfg.UserAgeZeroIsMissing {
		t.Fatal("want UserAgeZeroIsMissing enabled")
	}
	if !cfg.SwaggerEnabled {
		t.Fatal("want SwaggerEnabled enabled")
	}
	wantOrigins := []string{"https://shop.example", "http://localhost:5173"}
	if !slices.Equal(cfg.CORSOrigins, wantOrigins) {
		t.Fatalf("want CORSOrigins %v, got %v", wantOrigins, cfg.CORSOrigins)
	}
}

func TestLoadNotifications(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing RABBITMQ_URL",
			env:     map[string]string{},
			wantErr: "RABBITMQ_URL is required",
		},
		{
			name:    "malformed prefetch",
			env:     map[string]string{"RABBITMQ_URL": "amqp://localhost", "EVENTS_PREFETCH": "many"},
			wantErr: "EVENTS_PREFETCH must be an integer",
		},
		{
			name:    "non-positive prefetch",
			env:     map[string]string{"RABBITMQ_URL": "amqp://localhost", "EVENTS_PREFETCH": "0"},
			wantErr: "EVENTS_PREFETCH must be > 0",
		},
		{
			name: "valid config",
			env:  map[string]string{"RABBITMQ_URL": "amqp://localhost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadNotifications()
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if err.Error() != tt.wantErr {
					t.Fatalf("want error %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.RabbitMQURL != tt.env["RABBITMQ_URL"] {
				t.Fatalf("want RabbitMQURL %q, got %q", tt.env["RABBITMQ_URL"], cfg.RabbitMQURL)
			}
			if cfg.Prefetch != defaultEventsPrefetch {
				t.Fatalf("want Prefetch %d, got %d", defaultEventsPrefetch, cfg.Prefetch)
			}
			if cfg.MetricsAddr != defaultMetricsAddr {
				t.Fatalf("want MetricsAddr %q, got %q", defaultMetricsAddr, cfg.MetricsAddr)
			}
			if cfg.ShutdownTimeout != defaultShutdownTimeout {
				t.Fatalf("want ShutdownTimeout %v, got %v", defaultShutdownTimeout, cfg.ShutdownTimeout)
			}
		})
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "RABBITMQ_URL", "HTTP_ADDR", "MIGRATIONS_PATH", "API_PREFIX",
		"STORAGE_DRIVER", "MONGO_URI", "MONGO_DATABASE",
		"RATE_LIMIT_BACKEND", "RATE_LIMIT_WINDOW", "RATE_LIMIT_MAX", "RATE_LIMIT_KEY_HEADER",
		"REDIS_ADDR", "REDIS_DB", "USER_AGE_ZERO_IS_MISSING", "EVENTS_QUEUE",
		"EVENTS_PREFETCH", "METRICS_ADDR", "CORS_ORIGIN", "SWAGGER_ENABLED",
	} {
		if val, ok := os.LookupEnv(key); ok {
			t.Setenv(key, val)
		}
		os.Unsetenv(key)
	}
}
