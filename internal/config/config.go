package config

import (
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port           int    `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"` // development | production
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	WorkerPoolSize int    `mapstructure:"WORKER_POOL_SIZE"`

	// Database
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"` // sqlite | postgres
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	// Redis. Empty disables the Redis cache and the alert queue.
	RedisURL string `mapstructure:"REDIS_URL"`

	// Hierarchy cache
	CacheSize       int `mapstructure:"CACHE_SIZE"`
	CacheTTLSeconds int `mapstructure:"CACHE_TTL_SECONDS"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	AlertEmailTo string `mapstructure:"ALERT_EMAIL_TO"`

	TracingEnabled bool `mapstructure:"TRACING_ENABLED"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", 8000)
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("WORKER_POOL_SIZE", 2)
	viper.SetDefault("DATABASE_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_URL", "file:bake_tracker.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CACHE_SIZE", 256)
	viper.SetDefault("CACHE_TTL_SECONDS", 300)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("TRACING_ENABLED", false)

	// Optional .env file for local development; a missing file is fine.
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
