// Package postgres is the durable backend.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/storage"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool *pgxpool.Pool
	// db wraps the same pool for aggregate reads scanned into structs.
	db *sqlx.DB
}

var _ storage.Backend = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		db:   sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
	}
}

// Close releases the database/sql wrapper. The pool is owned by the caller.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping runs a cheap query against a real table, so a reachable server with
// a missing schema still counts as unhealthy.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `SELECT 1 FROM restaurant_tables LIMIT 1`); err != nil {
		return fmt.Errorf("repository: health check: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, rolling back on error or panic.
func (s *Store) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Msg("repository: panic recovered in transaction, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()
	return fn(tx)
}

// mapError converts driver errors into the storage taxonomy. Constraint
// violations are bad input and must reach the caller unmasked.
func mapError(action string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("repository: %s: %w", action, storage.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.NotNullViolation:
			return &storage.ValidationError{Field: pgErr.ColumnName, Reason: "is required"}
		case pgerrcode.CheckViolation:
			return &storage.ValidationError{Field: pgErr.ConstraintName, Reason: "violates " + pgErr.ConstraintName}
		case pgerrcode.ForeignKeyViolation:
			return &storage.ValidationError{Field: pgErr.ConstraintName, Reason: "references a missing entity"}
		case pgerrcode.UniqueViolation:
			return &storage.ValidationError{Field: pgErr.ConstraintName, Reason: "already exists"}
		}
	}
	return fmt.Errorf("repository: %s: %w", action, err)
}

// parseID reports whether id can exist in this backend. Fallback ids such
// as "mock-order-<ts>" never can.
func parseID(id string) (uuid.UUID, bool) {
	u, err := uuid.FromString(id)
	if err != nil {
		return uuid.Nil, false
	}
	return u, true
}

func notFound(kind, id string) error {
	return fmt.Errorf("repository: %s %s: %w", kind, id, storage.ErrNotFound)
}

func newID() (uuid.UUID, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to generate id: %w", err)
	}
	return id, nil
}
