// Package order owns order submission, numbering and status changes.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/quickorder/internal/model"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
)

// ErrCannotAdvance is returned when an order is already at the end of the
// kitchen ladder or in a status outside it.
var ErrCannotAdvance = errors.New("order cannot advance")

// Store is the part of the persistence gateway the service needs.
type Store interface {
	ListOrders(ctx context.Context, filter model.OrderFilter) (gateway.Result[[]model.Order], error)
	GetOrder(ctx context.Context, id string) (gateway.Result[*model.Order], error)
	CreateOrder(ctx context.Context, in model.NewOrder) (gateway.Result[*model.Order], error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (gateway.Result[*model.Order], error)
	DeleteOrder(ctx context.Context, id string) (gateway.Result[struct{}], error)
}

// CreateInput is an order submission. TotalAmount is the client's own
// figure; zero means the client did not send one. An empty PaymentMethod
// means cash.
type CreateInput struct {
	TableID       string
	RestaurantID  string
	TableNumber   *int
	Items         []model.OrderItem
	TotalAmount   int64
	PaymentMethod model.PaymentMethod
}

type Service interface {
	CreateOrder(ctx context.Context, in CreateInput) (gateway.Result[*model.Order], error)
	GetOrder(ctx context.Context, id string) (gateway.Result[*model.Order], error)
	// ListOrders returns orders newest first, optionally narrowed to statuses.
	ListOrders(ctx context.Context, statuses []model.OrderStatus) (gateway.Result[[]model.Order], error)
	// ListActive returns the kitchen queue, oldest first.
	ListActive(ctx context.Context) (gateway.Result[[]model.Order], error)
	// SetStatus writes any known status without consulting the ladder.
	SetStatus(ctx context.Context, id string, status model.OrderStatus) (gateway.Result[*model.Order], error)
	// Advance moves the order one step along the ladder.
	Advance(ctx context.Context, id string) (gateway.Result[*model.Order], error)
	// DeleteOrders removes every id found in either backend and returns
	// the ids that were deleted.
	DeleteOrders(ctx context.Context, ids []string) (gateway.Result[[]string], error)
	ResetCounter()
}

type service struct {
	store        Store
	counter      *Counter
	restaurantID string
}

func NewService(store Store, counter *Counter, restaurantID string) Service {
	return &service{
		store:        store,
		counter:      counter,
		restaurantID: restaurantID,
	}
}

func (s *service) CreateOrder(ctx context.Context, in CreateInput) (gateway.Result[*model.Order], error) {
	var none gateway.Result[*model.Order]

	if len(in.Items) == 0 {
		log.Warn().Msg("service: attempt to create order with no items")
		return none, storage.Invalid("items", "order must contain at least one item")
	}
	for i, item := range in.Items {
		if item.Quantity < 1 {
			return none, storage.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be at least 1")
		}
		if item.Price < 0 {
			return none, storage.Invalid(fmt.Sprintf("items[%d].price", i), "cannot be negative")
		}
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = model.PaymentCash
	}
	if !in.PaymentMethod.Valid() {
		return none, storage.Invalid("paymentMethod", "unknown payment method "+string(in.PaymentMethod))
	}
	if in.TableID == "" && in.TableNumber == nil {
		return none, storage.Invalid("tableId", "missing table info")
	}

	total := model.ItemsTotal(in.Items)
	if in.TotalAmount != 0 && in.TotalAmount != total {
		log.Warn().Int64("client_total", in.TotalAmount).Int64("total", total).Msg("service: order total mismatch")
		return none, storage.Invalid("totalAmount", fmt.Sprintf("expected %d, got %d", total, in.TotalAmount))
	}

	restaurantID := in.RestaurantID
	if restaurantID == "" {
		restaurantID = s.restaurantID
	}

	number, epoch := s.counter.Next()
	res, err := s.store.CreateOrder(ctx, model.NewOrder{
		TableID:       in.TableID,
		RestaurantID:  restaurantID,
		TableNumber:   in.TableNumber,
		OrderNumber:   number,
		Items:         in.Items,
		TotalAmount:   total,
		Status:        InitialStatus(in.PaymentMethod),
		PaymentMethod: in.PaymentMethod,
	})
	if err != nil {
		s.counter.Release(number, epoch)
		log.Error().Err(err).Int("order_number", number).Msg("service: failed to create order")
		return none, fmt.Errorf("service: failed to create order: %w", err)
	}

	log.Info().
		Str("order_id", res.Value.ID).
		Int("order_number", res.Value.OrderNumber).
		Str("table", res.Value.TableLabel()).
		Stringer("status", res.Value.Status).
		Str("backend", string(res.Source)).
		Msg("service: order created")
	return res, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (gateway.Result[*model.Order], error) {
	res, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			log.Warn().Str("order_id", id).Msg("service: order not found by id")
		}
		return res, fmt.Errorf("service: failed to fetch order %s: %w", id, err)
	}
	return res, nil
}

func (s *service) ListOrders(ctx context.Context, statuses []model.OrderStatus) (gateway.Result[[]model.Order], error) {
	for _, st := range statuses {
		if !st.Valid() {
			return gateway.Result[[]model.Order]{}, storage.Invalid("status", "unknown status "+string(st))
		}
	}
	res, err := s.store.ListOrders(ctx, model.OrderFilter{Statuses: statuses, Sort: model.NewestFirst})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return res, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return res, nil
}

func (s *service) ListActive(ctx context.Context) (gateway.Result[[]model.Order], error) {
	res, err := s.store.ListOrders(ctx, model.OrderFilter{Statuses: model.ActiveStatuses, Sort: model.OldestFirst})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list active orders")
		return res, fmt.Errorf("service: failed to list active orders: %w", err)
	}
	return res, nil
}

func (s *service) SetStatus(ctx context.Context, id string, status model.OrderStatus) (gateway.Result[*model.Order], error) {
	res, err := s.store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if storage.IsNotFound(err) {
			log.Warn().Str("order_id", id).Stringer("new_status", status).Msg("service: order not found, cannot update status")
		} else {
			log.Error().Err(err).Str("order_id", id).Stringer("new_status", status).Msg("service: failed to update order status")
		}
		return res, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Str("order_id", id).Stringer("new_status", status).Str("backend", string(res.Source)).Msg("service: order status updated")
	return res, nil
}

func (s *service) Advance(ctx context.Context, id string) (gateway.Result[*model.Order], error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			log.Warn().Str("order_id", id).Msg("service: order not found, cannot advance")
		}
		return current, fmt.Errorf("service: failed to get order for advance: %w", err)
	}

	next, ok := Next(current.Value.Status)
	if !ok {
		log.Warn().Str("order_id", id).Stringer("status", current.Value.Status).Msg("service: order status has no successor")
		return current, fmt.Errorf("service: order %s in status %s: %w", id, current.Value.Status, ErrCannotAdvance)
	}

	res, err := s.store.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		log.Error().Err(err).Str("order_id", id).Stringer("new_status", next).Msg("service: failed to advance order")
		return res, fmt.Errorf("service: failed to advance order: %w", err)
	}

	log.Info().
		Str("order_id", id).
		Stringer("old_status", current.Value.Status).
		Stringer("new_status", next).
		Str("backend", string(res.Source)).
		Msg("service: order advanced")
	return res, nil
}

func (s *service) DeleteOrders(ctx context.Context, ids []string) (gateway.Result[[]string], error) {
	out := gateway.Result[[]string]{Value: []string{}, Source: gateway.SourceDurable}
	if len(ids) == 0 {
		return out, storage.Invalid("id", "is required")
	}

	for _, id := range ids {
		if id == "" {
			return out, storage.Invalid("id", "is required")
		}
		res, err := s.store.DeleteOrder(ctx, id)
		if storage.IsNotFound(err) {
			log.Warn().Str("order_id", id).Msg("service: order to delete not found")
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("order_id", id).Msg("service: failed to delete order")
			return out, fmt.Errorf("service: failed to delete order %s: %w", id, err)
		}
		if res.Source == gateway.SourceFallback {
			out.Source = gateway.SourceFallback
		}
		out.Value = append(out.Value, id)
	}

	if len(out.Value) == 0 {
		return out, fmt.Errorf("service: none of %d orders found: %w", len(ids), storage.ErrNotFound)
	}
	log.Info().Strs("order_ids", out.Value).Msg("service: orders deleted")
	return out, nil
}

func (s *service) ResetCounter() {
	s.counter.Reset()
	log.Info().Msg("service: order counter reset")
}
