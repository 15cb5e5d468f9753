package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN           string `env:"DATABASE_DSN,required=true"`
	RedisURL              string `env:"REDIS_URL,required=true"`
	RabbitMQURL           string `env:"RABBITMQ_URL,required=true"`
	APIPort               int    `env:"API_PORT,default=8080"`
	LogLevel              string `env:"LOG_LEVEL,default=info"`
	LifecycleIntervalMins int    `env:"LIFECYCLE_INTERVAL_MINUTES,default=1440"`
	EndingSoonWindowDays  int    `env:"ENDING_SOON_WINDOW_DAYS,default=7"`
	WebhookRatePerMin     int    `env:"WEBHOOK_RATE_PER_MIN,default=60"`
	DashboardCacheTTLSecs int    `env:"DASHBOARD_CACHE_TTL_SECONDS,default=60"`
}

func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) LifecycleInterval() time.Duration {
	return time.Duration(c.LifecycleIntervalMins) * time.Minute
}

func (c *Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTLSecs) * time.Second
}
