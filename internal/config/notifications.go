package config

import (
	"fmt"
	"time"
)

const (
	defaultMetricsAddr    = ":9091"
	defaultEventsPrefetch = 10
)

type Notifications struct {
	RabbitMQURL string
	// Queue overrides the product events queue; empty keeps the publisher's default.
	Queue           string
	Prefetch        int
	MetricsAddr     string
	ShutdownTimeout time.Duration
}

func LoadNotifications() (Notifications, error) {
	cfg := Notifications{
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		Queue:           getEnv("EVENTS_QUEUE", ""),
		MetricsAddr:     getEnv("METRICS_ADDR", defaultMetricsAddr),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if cfg.RabbitMQURL == "" {
		return Notifications{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	var err error
	if cfg.Prefetch, err = getEnvInt("EVENTS_PREFETCH", defaultEventsPrefetch); err != nil {
		return Notifications{}, err
	}
	if cfg.Prefetch <= 0 {
		return Notifications{}, fmt.Errorf("EVENTS_PREFETCH must be > 0")
	}

	return cfg, nil
}
