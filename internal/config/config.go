package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	DatabasePath    string        `env:"DATABASE_PATH" envDefault:"pitch_perfect.db"`
	MigrationsURL   string        `env:"MIGRATIONS_URL" envDefault:"file://migrations"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	SessionSecret   string        `env:"SESSION_SECRET"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	AMQP AMQPConfig
	Auth AuthConfig

	// OTelEndpoint enables tracing when set.
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

type AMQPConfig struct {
	URL      string `env:"AMQP_URL"`
	Exchange string `env:"AMQP_EXCHANGE" envDefault:"pitchperfect.events"`
}

func (c AMQPConfig) Enabled() bool { return c.URL != "" }

type AuthConfig struct {
	DiscordKey         string `env:"DISCORD_KEY"`
	DiscordSecret      string `env:"DISCORD_SECRET"`
	DiscordCallbackURL string `env:"DISCORD_CALLBACK_URL"`
	GoogleKey          string `env:"GOOGLE_KEY"`
	GoogleSecret       string `env:"GOOGLE_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
		slog.Info("No .env file found, using environment variables")
	}
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
