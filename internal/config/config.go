package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig
	Feed     FeedConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Port string
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	Driver string // postgres, sqlite or memory
	DSN    string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret        string
	SessionTTL       time.Duration
	BcryptMinCost    bool
	PasswordResetTTL time.Duration
}

// RabbitMQConfig holds the broker used for outgoing mail. An empty URL disables it.
type RabbitMQConfig struct {
	URL string
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level string
}

// FeedConfig configures feed pagination on the home page.
type FeedConfig struct {
	PerPage int
}

// Defaults registers default values on v.
func Defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "microblog.db")
	v.SetDefault("JWT_SECRET", "dev-secret")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("BCRYPT_MIN_COST", false)
	v.SetDefault("PASSWORD_RESET_TTL", "2h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FEED_PER_PAGE", 5)
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	Defaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Port: v.GetString("APP_PORT"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: AuthConfig{
			JWTSecret:        v.GetString("JWT_SECRET"),
			SessionTTL:       v.GetDuration("SESSION_TTL"),
			BcryptMinCost:    v.GetBool("BCRYPT_MIN_COST"),
			PasswordResetTTL: v.GetDuration("PASSWORD_RESET_TTL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Feed: FeedConfig{
			PerPage: v.GetInt("FEED_PER_PAGE"),
		},
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.Auth.PasswordResetTTL <= 0 {
		return nil, fmt.Errorf("PASSWORD_RESET_TTL must be positive")
	}
	if cfg.Feed.PerPage <= 0 {
		cfg.Feed.PerPage = 5
	}
	return cfg, nil
}
