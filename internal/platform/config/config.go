// Package config loads application configuration from environment variables,
// optionally seeded from a .env file in local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// HTTP surfaces
	APIPort    int `env:"API_PORT" envDefault:"8080"`
	HealthPort int `env:"HEALTH_PORT" envDefault:"9090"`

	// Database pool
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"25"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"5"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// Preview pipeline
	YouTubeAPIKey       string        `env:"YOUTUBE_API_KEY"`
	FetchTimeout        time.Duration `env:"PREVIEW_FETCH_TIMEOUT" envDefault:"10s"`
	FetchMaxAttempts    int           `env:"PREVIEW_FETCH_MAX_ATTEMPTS" envDefault:"3"`
	FetchBackoffBase    time.Duration `env:"PREVIEW_FETCH_BACKOFF_BASE" envDefault:"1s"`
	FetchRPS            float64       `env:"PREVIEW_FETCH_RPS" envDefault:"2"`
	PreviewWorkers      int           `env:"PREVIEW_WORKERS" envDefault:"4"`
	PreviewQueueSize    int           `env:"PREVIEW_QUEUE_SIZE" envDefault:"256"`
	PreviewBackfill     bool          `env:"PREVIEW_BACKFILL" envDefault:"true"`
	PreviewBackfillMax  int           `env:"PREVIEW_BACKFILL_MAX" envDefault:"100"`
	PreviewMaxBodyBytes int64         `env:"PREVIEW_MAX_BODY_BYTES" envDefault:"5242880"`

	// Digest scheduling (hours in UTC)
	DigestDailyHour     int           `env:"DIGEST_DAILY_HOUR" envDefault:"8"`
	DigestWeeklyDay     time.Weekday  `env:"DIGEST_WEEKLY_DAY" envDefault:"1"`
	DigestWeeklyHour    int           `env:"DIGEST_WEEKLY_HOUR" envDefault:"8"`
	DigestTickInterval  time.Duration `env:"DIGEST_TICK_INTERVAL" envDefault:"1m"`
	DigestLinksPerChan  int           `env:"DIGEST_LINKS_PER_CHANNEL" envDefault:"5"`
	DigestSendWorkers   int           `env:"DIGEST_SEND_WORKERS" envDefault:"4"`

	// Email provider
	EmailAPIBaseURL  string        `env:"EMAIL_API_BASE_URL" envDefault:"https://api.sendgrid.com"`
	EmailAPIKey      string        `env:"EMAIL_API_KEY"`
	EmailFromAddress string        `env:"EMAIL_FROM_ADDRESS" envDefault:"digest@linkstash.app"`
	EmailFromName    string        `env:"EMAIL_FROM_NAME" envDefault:"Linkstash"`
	EmailTimeout     time.Duration `env:"EMAIL_TIMEOUT" envDefault:"15s"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
