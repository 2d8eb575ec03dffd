package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
)

const tableColumns = `id::text, number, restaurant_id, status, created_at`

func (s *Store) ListTables(ctx context.Context, restaurantID string) ([]model.Table, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tableColumns+`
		FROM restaurant_tables
		WHERE ($1 = '' OR restaurant_id = $1)
		ORDER BY number`, restaurantID)
	if err != nil {
		return nil, mapError("failed to query tables", err)
	}
	defer rows.Close()

	tables := make([]model.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan table: %w", err)
		}
		tables = append(tables, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating tables: %w", err)
	}
	return tables, nil
}

func (s *Store) GetTable(ctx context.Context, id string) (*model.Table, error) {
	if _, ok := parseID(id); !ok {
		return nil, notFound("table", id)
	}
	return getTable(ctx, s.pool, id)
}

func (s *Store) ResolveTable(ctx context.Context, restaurantID string, number int) (*model.Table, error) {
	return resolveTable(ctx, s.pool, restaurantID, number)
}

func (s *Store) UpdateTableStatus(ctx context.Context, id string, status model.TableStatus) (*model.Table, error) {
	if _, ok := parseID(id); !ok {
		return nil, notFound("table", id)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE restaurant_tables SET status = $2
		WHERE id = $1
		RETURNING `+tableColumns, id, string(status))
	t, err := scanTable(row)
	if err != nil {
		return nil, mapError("failed to update status of table "+id, err)
	}
	return t, nil
}

func getTable(ctx context.Context, q querier, id string) (*model.Table, error) {
	row := q.QueryRow(ctx, `SELECT `+tableColumns+` FROM restaurant_tables WHERE id = $1`, id)
	t, err := scanTable(row)
	if err != nil {
		return nil, mapError("failed to select table "+id, err)
	}
	return t, nil
}

// resolveTable inserts the table as occupied unless (restaurant, number)
// already exists. Concurrent resolvers converge on the same row.
func resolveTable(ctx context.Context, q querier, restaurantID string, number int) (*model.Table, error) {
	if number < 0 {
		return nil, storage.Invalid("tableNumber", "must not be negative")
	}
	id, err := newID()
	if err != nil {
		return nil, err
	}

	row := q.QueryRow(ctx, `
		INSERT INTO restaurant_tables (id, restaurant_id, number, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (restaurant_id, number) DO NOTHING
		RETURNING `+tableColumns, id, restaurantID, number, string(model.TableOccupied))
	t, err := scanTable(row)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError(fmt.Sprintf("failed to insert table %d", number), err)
	}

	row = q.QueryRow(ctx, `
		SELECT `+tableColumns+`
		FROM restaurant_tables
		WHERE restaurant_id = $1 AND number = $2`, restaurantID, number)
	t, err = scanTable(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to select table %d", number), err)
	}
	return t, nil
}

func scanTable(row pgx.Row) (*model.Table, error) {
	var (
		t      model.Table
		status string
	)
	if err := row.Scan(&t.ID, &t.Number, &t.RestaurantID, &status, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Status = model.TableStatus(status)
	return &t, nil
}
