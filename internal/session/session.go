// Package session is the customer's local state: where they sit, what is in
// their cart and which orders they have placed. There is no server-side
// customer identity; this history is the only link to past orders.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vasiliy-maslov/quickorder/internal/cart"
	"github.com/vasiliy-maslov/quickorder/internal/client"
	"github.com/vasiliy-maslov/quickorder/internal/model"
)

var ErrEmptyCart = errors.New("cart is empty")

type API interface {
	CreateOrder(ctx context.Context, in client.NewOrder) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
}

type Session struct {
	RestaurantID string
	TableNumber  int
	History      []string
	Cart         *cart.Cart
}

func New(c *cart.Cart) *Session {
	if c == nil {
		c = cart.New()
	}
	return &Session{Cart: c}
}

// Scan points the session at the table from a QR code. A Pick & Go scan
// starts an unrelated session: history and cart are cleared.
func (s *Session) Scan(restaurantID string, tableNumber int) {
	s.RestaurantID = restaurantID
	s.TableNumber = tableNumber
	if tableNumber == model.PickupTableNumber {
		s.History = nil
		s.Cart.Clear()
		log.Debug().Str("restaurant_id", restaurantID).Msg("session: pick-up scan, history and cart cleared")
	}
}

func (s *Session) Record(orderID string) {
	s.History = append(s.History, orderID)
}

// Checkout submits the whole cart. On success the order joins the history
// and the cart is emptied; on failure nothing local changes.
func (s *Session) Checkout(ctx context.Context, api API, method model.PaymentMethod) (*model.Order, error) {
	if s.Cart.Empty() {
		return nil, ErrEmptyCart
	}

	table := s.TableNumber
	o, err := api.CreateOrder(ctx, client.NewOrder{
		RestaurantID:  s.RestaurantID,
		TableNumber:   &table,
		Items:         s.Cart.Items(),
		TotalAmount:   s.Cart.Total(),
		PaymentMethod: method,
	})
	if err != nil {
		return nil, fmt.Errorf("session: checkout: %w", err)
	}

	s.Record(o.ID)
	s.Cart.Clear()
	log.Info().Str("order_id", o.ID).Int("order_number", o.OrderNumber).Msg("session: order placed")
	return o, nil
}

// Orders fetches every order in the history, newest first. Orders the
// server no longer knows are skipped.
func (s *Session) Orders(ctx context.Context, api API) ([]model.Order, error) {
	found := make([]*model.Order, len(s.History))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range s.History {
		i, id := i, id
		g.Go(func() error {
			o, err := api.GetOrder(gctx, id)
			if errors.Is(err, client.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("session: fetch order %s: %w", id, err)
			}
			found[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Order, 0, len(found))
	for i := len(found) - 1; i >= 0; i-- {
		if found[i] != nil {
			out = append(out, *found[i])
		}
	}
	return out, nil
}

type state struct {
	RestaurantID string            `json:"restaurantId"`
	TableNumber  int               `json:"tableNumber"`
	History      []string          `json:"history"`
	Cart         []model.OrderItem `json:"cart"`
}

// Save writes the session to path, creating its directory.
func (s *Session) Save(path string) error {
	raw, err := json.MarshalIndent(state{
		RestaurantID: s.RestaurantID,
		TableNumber:  s.TableNumber,
		History:      s.History,
		Cart:         s.Cart.Items(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", path, err)
	}
	return nil
}

// Load restores a session saved at path into a fresh cart built with opts.
// A missing file yields an empty session.
func Load(path string, opts ...cart.Option) (*Session, error) {
	s := New(cart.New(opts...))

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}

	var st state
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", path, err)
	}
	s.RestaurantID = st.RestaurantID
	s.TableNumber = st.TableNumber
	s.History = st.History
	for _, item := range st.Cart {
		s.Cart.Add(item)
	}
	return s, nil
}
