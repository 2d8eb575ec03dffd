package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
)

const orderColumns = `
	o.id::text, o.order_number, o.table_id::text, t.number, o.total_amount,
	o.status, o.payment_method, o.created_at, o.updated_at`

func (s *Store) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	var statuses []string
	for _, st := range filter.Statuses {
		statuses = append(statuses, string(st))
	}
	direction := "DESC"
	if filter.Sort == model.OldestFirst {
		direction = "ASC"
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN restaurant_tables t ON t.id = o.table_id
		WHERE ($1::text[] IS NULL OR o.status = ANY($1))
		ORDER BY o.created_at ` + direction

	rows, err := s.pool.Query(ctx, query, statuses)
	if err != nil {
		return nil, mapError("failed to query orders", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	index := make(map[string]int)
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := s.itemsFor(ctx, s.pool, ids)
	if err != nil {
		return nil, err
	}
	for orderID, list := range items {
		orders[index[orderID]].Items = list
	}
	return orders, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if _, ok := parseID(id); !ok {
		return nil, notFound("order", id)
	}
	return s.getOrder(ctx, s.pool, id)
}

func (s *Store) getOrder(ctx context.Context, q querier, id string) (*model.Order, error) {
	row := q.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN restaurant_tables t ON t.id = o.table_id
		WHERE o.id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, mapError("failed to select order "+id, err)
	}

	items, err := s.itemsFor(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	if o.Items == nil {
		o.Items = []model.OrderItem{}
	}
	return o, nil
}

// CreateOrder resolves the table and inserts the order with its items in a
// single transaction.
func (s *Store) CreateOrder(ctx context.Context, in model.NewOrder) (order *model.Order, err error) {
	orderID, err := newID()
	if err != nil {
		return nil, err
	}

	err = s.withTx(ctx, func(tx pgx.Tx) error {
		table, err := s.tableForOrder(ctx, tx, in)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		_, err = tx.Exec(ctx, `
			INSERT INTO orders (id, order_number, table_id, total_amount, status, payment_method, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			orderID, in.OrderNumber, table.ID, in.TotalAmount, string(in.Status), string(in.PaymentMethod), now, now,
		)
		if err != nil {
			return mapError("failed to insert order", err)
		}

		for pos, item := range in.Items {
			itemID, err := newID()
			if err != nil {
				return err
			}
			options, err := encodeOptions(item.Options)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, position, product_id, name, price, quantity, options, instruction)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				itemID, orderID, pos, item.ProductID, item.Name, item.Price, item.Quantity, options, item.Instruction,
			)
			if err != nil {
				return mapError(fmt.Sprintf("failed to insert item %d of order %s", pos, orderID), err)
			}
		}

		order, err = s.getOrder(ctx, tx, orderID.String())
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Store) tableForOrder(ctx context.Context, q querier, in model.NewOrder) (*model.Table, error) {
	if in.TableID != "" {
		if _, ok := parseID(in.TableID); !ok {
			return nil, storage.Invalid("tableId", "unknown table "+in.TableID)
		}
		t, err := getTable(ctx, q, in.TableID)
		if storage.IsNotFound(err) {
			return nil, storage.Invalid("tableId", "unknown table "+in.TableID)
		}
		return t, err
	}
	if in.TableNumber == nil {
		return nil, storage.Invalid("tableId", "missing table info")
	}
	return resolveTable(ctx, q, in.RestaurantID, *in.TableNumber)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if _, ok := parseID(id); !ok {
		return nil, notFound("order", id)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC(),
	)
	if err != nil {
		return nil, mapError("failed to update status of order "+id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound("order", id)
	}
	return s.getOrder(ctx, s.pool, id)
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	if _, ok := parseID(id); !ok {
		return notFound("order", id)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return mapError("failed to delete order "+id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound("order", id)
	}
	return nil
}

// itemsFor loads the items of the given orders keyed by order id, in the
// order they were submitted.
func (s *Store) itemsFor(ctx context.Context, q querier, orderIDs []string) (map[string][]model.OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT order_id::text, product_id, name, price, quantity, options, instruction
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			item    model.OrderItem
			options []byte
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Price, &item.Quantity, &options, &item.Instruction); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if item.Options, err = decodeOptions(options); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}
	return out, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o             model.Order
		status        string
		paymentMethod string
	)
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.TableID,
		&o.TableNumber,
		&o.TotalAmount,
		&status,
		&paymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	o.PaymentMethod = model.PaymentMethod(paymentMethod)
	return &o, nil
}

func encodeOptions(opts []model.Option) ([]byte, error) {
	if opts == nil {
		opts = []model.Option{}
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to encode options: %w", err)
	}
	return b, nil
}

func decodeOptions(b []byte) ([]model.Option, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var opts []model.Option
	if err := json.Unmarshal(b, &opts); err != nil {
		return nil, fmt.Errorf("repository: failed to decode options: %w", err)
	}
	if len(opts) == 0 {
		return nil, nil
	}
	return opts, nil
}
