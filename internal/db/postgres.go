// Package db opens the Postgres pool and applies schema migrations.
package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/config"
	"github.com/vasiliy-maslov/quickorder/internal/poll"
)

type Postgres struct {
	Pool    *pgxpool.Pool
	timeout time.Duration
}

// New builds the pool. Connections are opened lazily, so an unreachable
// server is not an error here; see Ping.
func New(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("db", cfg.DBName).Msg("PostgreSQL pool created")
	return &Postgres{Pool: pool, timeout: cfg.ConnectTimeout}, nil
}

// Ping checks that the server accepts connections, within the configured
// connect timeout. It does not look at the schema.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	p.Pool.Close()
	log.Info().Msg("Database connection closed")
}

// Migrate applies every pending migration from cfg.MigrationsPath.
func Migrate(cfg config.PostgresConfig) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, MigrationDSN(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize migration instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source_error", srcErr).AnErr("db_error", dbErr).Msg("failed to close migrator")
		}
	}()

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Str("path", cfg.MigrationsPath).Msg("Schema is up to date")
	case err != nil:
		return fmt.Errorf("failed to apply migrations from %s: %w", cfg.MigrationsPath, err)
	default:
		version, _, _ := m.Version()
		log.Info().Uint("version", version).Msg("Schema migrated")
	}
	return nil
}

// MigrationDSN renders cfg as a pgx5:// URL for golang-migrate.
func MigrationDSN(cfg config.PostgresConfig) string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.DBName,
		RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
	}
	return u.String()
}

// MigrateWhenReady pings every interval until the server answers, then
// calls apply once and returns its error. Until then the store behind the
// pool keeps failing over to the in-memory store. It returns ctx's error
// if ctx ends first.
func MigrateWhenReady(ctx context.Context, interval time.Duration, ping func(context.Context) error, apply func() error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		applied bool
		result  error
	)
	poll.Every(ctx, interval, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, ping(ctx)
	}, func(_ struct{}, err error) {
		if err != nil {
			log.Debug().Err(err).Msg("Database still unreachable")
			return
		}
		applied = true
		result = apply()
		cancel()
	})

	if !applied {
		return ctx.Err()
	}
	return result
}
