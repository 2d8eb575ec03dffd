// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Poll     PollConfig
}

type AppConfig struct {
	Port         string `env:"APP_PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	RestaurantID string `env:"RESTAURANT_ID" envDefault:"1"`
	// APIURL is the server address used by the kitchen and customer clients.
	APIURL string `env:"API_URL" envDefault:"http://localhost:8080"`
}

// PostgresConfig describes the durable backend. An empty Host runs the
// server in demo mode on the in-memory store alone.
type PostgresConfig struct {
	Host            string        `env:"DB_HOST"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD"`
	DBName          string        `env:"DB_NAME" envDefault:"quickorder"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	ConnectTimeout  time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"3s"`
	// RetryInterval spaces connection attempts while the database is
	// unreachable, until migrations have been applied.
	RetryInterval   time.Duration `env:"DB_RETRY_INTERVAL" envDefault:"10s"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH" envDefault:"migrations"`
}

// Enabled reports whether a durable backend is configured.
func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

type PollConfig struct {
	KitchenInterval time.Duration `env:"KITCHEN_POLL_INTERVAL" envDefault:"5s"`
	StatusInterval  time.Duration `env:"STATUS_POLL_INTERVAL" envDefault:"3s"`
}

// Load reads path into the process environment when it exists, then parses
// the environment. Variables already set take precedence over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment: %w", err)
	}
	if cfg.Poll.KitchenInterval <= 0 || cfg.Poll.StatusInterval <= 0 || cfg.Postgres.RetryInterval <= 0 {
		return nil, errors.New("config: poll intervals must be positive")
	}
	if cfg.App.RestaurantID == "" {
		return nil, errors.New("config: RESTAURANT_ID must not be empty")
	}
	return cfg, nil
}
