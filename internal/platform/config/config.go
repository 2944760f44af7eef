package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"3002"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" default:"10s"`
	HeartbeatTimeout  time.Duration `env:"HEARTBEAT_TIMEOUT" default:"30s"`

	SendBufferSize          int `env:"SEND_BUFFER_SIZE" default:"16"`
	MaxWebSocketConnections int `env:"MAX_WEBSOCKET_CONNECTIONS" default:"10000"`

	UpgradeRatePerSecond float64 `env:"UPGRADE_RATE_PER_SECOND" default:"5"`
	UpgradeRateBurst     int     `env:"UPGRADE_RATE_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.HeartbeatInterval <= 0 {
		return errors.New("HEARTBEAT_INTERVAL must be positive")
	}
	if cfg.HeartbeatTimeout <= cfg.HeartbeatInterval {
		return fmt.Errorf("HEARTBEAT_TIMEOUT (%v) must exceed HEARTBEAT_INTERVAL (%v)",
			cfg.HeartbeatTimeout, cfg.HeartbeatInterval)
	}
	if cfg.SendBufferSize < 1 {
		return errors.New("SEND_BUFFER_SIZE must be at least 1")
	}
	if cfg.MaxWebSocketConnections < 1 {
		return errors.New("MAX_WEBSOCKET_CONNECTIONS must be at least 1")
	}
	return nil
}
